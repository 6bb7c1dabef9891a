// Package storage persists the runtime state of device elements on a
// non-volatile medium.
//
// A Manager owns one medium. At setup the application registers every
// stateful element together with the fixed number of bytes it persists, then
// calls Init and LoadStateStorage. At runtime WriteStateStorage (or the
// cooperative scheduler driven by Iterate) saves the state again.
//
// # Element-State Section
//
// All registered elements share one section of type
// format.SectionElementState. Each element owns a contiguous sub-range of the
// section payload whose offset is the sum of the sizes registered before it:
//
//	payload: | relay (1) | counter (8) | setpoint (4) |
//	offset:    0           1             9             13
//
// Elements access their sub-range only from their hooks, through the cursor
// primitives of StateIO. A hook must consume exactly the number of bytes it
// registered.
//
// # Write Minimization
//
// The manager keeps the last known payload in memory. WriteStateStorage runs
// every save hook, compares the result with the bytes on the medium and
// writes only the runs that differ plus the checksum pair, followed by a
// single commit. When nothing differs no write and no commit happen.
//
// # Versioning Hazard
//
// The payload carries no per-element framing. Changing the size of an
// element, adding or removing one, or changing the registration order
// invalidates the stored image: LoadStateStorage then restores nothing and
// the next WriteStateStorage rewrites the section with the new layout. Only
// a changed total size is detected; a reordering that keeps the total is
// indistinguishable from valid data. Use LayoutFingerprint to detect such
// changes across firmware versions.
package storage
