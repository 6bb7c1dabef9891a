package collision

import (
	"fmt"

	"github.com/arloliu/nvstate/errs"
)

// Tracker tracks element names and their identifiers during registration.
// It maintains a map of hash-to-name mappings and the ordered list of names
// in registration order.
type Tracker struct {
	names     map[uint64]string // Hash → name mapping for collision detection
	namesList []string          // Registration order
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// Track records an element name with its hash.
// Returns error if:
// - The name is empty (ErrInvalidElement)
// - The same name is tracked twice (ErrDuplicateElement)
// - A different name already produced the same hash (ErrIDCollision)
//
// Identifiers appear in layout fingerprints and diagnostics, so unlike a
// lookup table a collision cannot be tolerated here.
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", errs.ErrInvalidElement)
	}

	if existing, exists := t.names[hash]; exists {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateElement, name)
		}

		return fmt.Errorf("%w: %q and %q share id %#016x", errs.ErrIDCollision, existing, name, hash)
	}

	t.names[hash] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// Name returns the name tracked under hash.
func (t *Tracker) Name(hash uint64) (string, bool) {
	name, ok := t.names[hash]
	return name, ok
}

// Names returns the tracked names in registration order.
func (t *Tracker) Names() []string {
	return t.namesList
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.namesList)
}

// Reset clears all tracked names.
func (t *Tracker) Reset() {
	clear(t.names)
	t.namesList = t.namesList[:0]
}
