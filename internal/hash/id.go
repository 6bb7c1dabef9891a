package hash

import (
	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/nvstate/endian"
)

// ID computes the xxHash64 identifier of an element name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Digest computes the xxHash64 of a raw medium image.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Layout accumulates a fingerprint over an ordered sequence of
// (identifier, size) pairs. Two registries produce the same fingerprint only
// when they declare the same elements with the same sizes in the same order.
type Layout struct {
	d   *xxhash.Digest
	buf []byte
}

// NewLayout creates an empty layout fingerprint.
func NewLayout() *Layout {
	return &Layout{d: xxhash.New(), buf: make([]byte, 0, 12)}
}

// Add appends one element to the fingerprint.
func (l *Layout) Add(id uint64, size int) {
	engine := endian.Media()
	l.buf = engine.AppendUint64(l.buf[:0], id)
	l.buf = engine.AppendUint32(l.buf, uint32(size)) //nolint:gosec // sizes are bounded by the section limit
	_, _ = l.d.Write(l.buf)
}

// Sum64 returns the fingerprint of everything added so far.
func (l *Layout) Sum64() uint64 {
	return l.d.Sum64()
}
