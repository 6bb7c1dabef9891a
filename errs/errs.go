// Package errs defines the sentinel errors shared by nvstate packages.
//
// Callers should match them with errors.Is; most are wrapped with additional
// context (offsets, element names) before being returned.
package errs

import "errors"

// Layout errors.
var (
	ErrInvalidPreambleSize        = errors.New("invalid preamble size")
	ErrInvalidSectionPreambleSize = errors.New("invalid section preamble size")
	ErrInvalidTag                 = errors.New("invalid preamble tag")
	ErrUnsupportedVersion         = errors.New("unsupported storage format version")
	ErrSectionOutOfBounds         = errors.New("section exceeds medium capacity")
	ErrSectionTooLarge            = errors.New("section payload exceeds maximum size")
	ErrSectionNotLast             = errors.New("section is not the last one on the medium")
)

// Medium errors.
var (
	ErrNoMedium         = errors.New("no storage medium attached")
	ErrOutOfRange       = errors.New("medium access out of range")
	ErrShortRead        = errors.New("short read from medium")
	ErrShortWrite       = errors.New("short write to medium")
	ErrMediumClosed     = errors.New("medium is closed")
	ErrInvalidMediumCfg = errors.New("invalid medium configuration")
)

// Manager and registry errors.
var (
	ErrNotInitialized    = errors.New("storage not initialized")
	ErrRegistrySealed    = errors.New("state registry is sealed")
	ErrInvalidElement    = errors.New("invalid state element")
	ErrInvalidStateSize  = errors.New("invalid state size")
	ErrDuplicateElement  = errors.New("element already registered")
	ErrIDCollision       = errors.New("element identifier collision")
	ErrNoActiveHook      = errors.New("state access outside of a state hook")
	ErrStateOverflow     = errors.New("state access beyond declared size")
	ErrHookSizeMismatch  = errors.New("state hook byte count differs from declared size")
	ErrInvalidSavePeriod = errors.New("invalid state save period")
)

// Snapshot errors.
var (
	ErrInvalidSnapshot     = errors.New("invalid snapshot")
	ErrSnapshotDigest      = errors.New("snapshot digest mismatch")
	ErrUnsupportedCodec    = errors.New("unsupported compression type")
	ErrSnapshotTooLarge    = errors.New("snapshot image too large")
	ErrInvalidSnapshotMeta = errors.New("invalid snapshot metadata")
)

// Configuration errors.
var (
	ErrInvalidProfile = errors.New("invalid profile")
)
