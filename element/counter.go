package element

import (
	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/storage"
)

// Counter is a persistent monotonically increasing counter.
type Counter struct {
	value uint64
	n     notifier
}

var (
	_ storage.Element    = (*Counter)(nil)
	_ storage.StateSizer = (*Counter)(nil)
)

// NewCounter creates a counter starting at zero.
func NewCounter(opts ...Option) *Counter {
	return &Counter{n: newNotifier(opts)}
}

// Add increments the counter by delta.
func (c *Counter) Add(delta uint64) {
	if delta == 0 {
		return
	}
	c.value += delta
	c.n.changed()
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() uint64 {
	return c.value
}

// Set replaces the count, for restoring a value from external tooling.
func (c *Counter) Set(v uint64) {
	if c.value == v {
		return
	}
	c.value = v
	c.n.changed()
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	c.value = 0
	c.n.changed()
}

// StateSize implements storage.StateSizer.
func (c *Counter) StateSize() int {
	return 8
}

// OnLoadState implements storage.Element.
func (c *Counter) OnLoadState(io storage.StateIO) {
	var b [8]byte
	if io.ReadState(b[:]) == nil {
		c.value = endian.Media().Uint64(b[:])
	}
}

// OnSaveState implements storage.Element.
func (c *Counter) OnSaveState(io storage.StateIO) {
	var b [8]byte
	endian.Media().PutUint64(b[:], c.value)
	_ = io.WriteState(b[:])
}
