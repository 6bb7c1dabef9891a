package storage

import (
	"fmt"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/internal/collision"
	"github.com/arloliu/nvstate/internal/hash"
	"github.com/arloliu/nvstate/section"
)

// Record describes one element's sub-range of the element-state payload.
type Record struct {
	// Name identifies the element; unique within a registry.
	Name string
	// ID is the xxHash64 of Name.
	ID uint64
	// Size is the number of payload bytes owned by the element.
	Size int
	// Offset is the start of the element's sub-range within the payload.
	Offset int
	// Element receives the load and save hooks.
	Element Element
}

// End returns the payload offset just past the record.
func (r Record) End() int {
	return r.Offset + r.Size
}

// Registry is the ordered list of element records.
//
// Offsets are assigned at registration as the running sum of sizes and never
// change afterwards. Once sealed the registry rejects new records.
type Registry struct {
	records []Record
	tracker *collision.Tracker
	total   int
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tracker: collision.NewTracker()}
}

// Add appends a record for el owning size bytes.
//
// Returns:
//   - Record: The new record with its computed offset
//   - error: ErrRegistrySealed, ErrInvalidElement, ErrInvalidStateSize,
//     ErrSectionTooLarge, ErrDuplicateElement or ErrIDCollision
func (r *Registry) Add(name string, size int, el Element) (Record, error) {
	if r.sealed {
		return Record{}, fmt.Errorf("register %q: %w", name, errs.ErrRegistrySealed)
	}
	if el == nil {
		return Record{}, fmt.Errorf("register %q: nil element: %w", name, errs.ErrInvalidElement)
	}
	if size <= 0 {
		return Record{}, fmt.Errorf("register %q with %d bytes: %w", name, size, errs.ErrInvalidStateSize)
	}
	if r.total+size > section.MaxPayloadSize {
		return Record{}, fmt.Errorf("register %q: payload would grow to %d bytes: %w",
			name, r.total+size, errs.ErrSectionTooLarge)
	}

	id := hash.ID(name)
	if err := r.tracker.Track(name, id); err != nil {
		return Record{}, fmt.Errorf("register %q: %w", name, err)
	}

	rec := Record{Name: name, ID: id, Size: size, Offset: r.total, Element: el}
	r.records = append(r.records, rec)
	r.total += size

	return rec, nil
}

// Seal freezes the registry.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the registry is frozen.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Total returns the payload size covering all records.
func (r *Registry) Total() int {
	return r.total
}

// Records returns a copy of the records in registration order.
func (r *Registry) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Lookup returns the record registered under name.
func (r *Registry) Lookup(name string) (Record, bool) {
	for _, rec := range r.records {
		if rec.Name == name {
			return rec, true
		}
	}

	return Record{}, false
}

// Fingerprint hashes the ordered (ID, size) pairs of all records.
func (r *Registry) Fingerprint() uint64 {
	l := hash.NewLayout()
	for _, rec := range r.records {
		l.Add(rec.ID, rec.Size)
	}

	return l.Sum64()
}
