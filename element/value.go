package element

import (
	"encoding/binary"

	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/storage"
)

// Number lists the fixed-size types a Value can hold.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Value is a persistent fixed-size number encoded little-endian.
type Value[T Number] struct {
	v T
	n notifier
}

// NewValue creates a value holding initial.
func NewValue[T Number](initial T, opts ...Option) *Value[T] {
	return &Value[T]{v: initial, n: newNotifier(opts)}
}

// Get returns the current value.
func (x *Value[T]) Get() T {
	return x.v
}

// Set changes the value.
func (x *Value[T]) Set(v T) {
	if x.v == v {
		return
	}
	x.v = v
	x.n.changed()
}

// StateSize implements storage.StateSizer.
func (x *Value[T]) StateSize() int {
	return binary.Size(x.v)
}

// OnLoadState implements storage.Element.
func (x *Value[T]) OnLoadState(io storage.StateIO) {
	buf := make([]byte, x.StateSize())
	if io.ReadState(buf) != nil {
		return
	}

	var v T
	if _, err := binary.Decode(buf, endian.Media(), &v); err == nil {
		x.v = v
	}
}

// OnSaveState implements storage.Element.
func (x *Value[T]) OnSaveState(io storage.StateIO) {
	buf := make([]byte, x.StateSize())
	_, _ = binary.Encode(buf, endian.Media(), x.v)
	_ = io.WriteState(buf)
}
