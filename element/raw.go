package element

import (
	"bytes"
	"fmt"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/storage"
)

// Raw is a persistent fixed-size byte buffer, such as calibration data.
type Raw struct {
	data []byte
	n    notifier
}

var (
	_ storage.Element    = (*Raw)(nil)
	_ storage.StateSizer = (*Raw)(nil)
)

// NewRaw creates a zeroed buffer of size bytes.
func NewRaw(size int, opts ...Option) *Raw {
	return &Raw{data: make([]byte, size), n: newNotifier(opts)}
}

// Bytes returns a copy of the buffer.
func (r *Raw) Bytes() []byte {
	return append([]byte(nil), r.data...)
}

// Set replaces the buffer contents; b must have the buffer's size.
func (r *Raw) Set(b []byte) error {
	if len(b) != len(r.data) {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidStateSize, len(b), len(r.data))
	}
	if bytes.Equal(r.data, b) {
		return nil
	}
	copy(r.data, b)
	r.n.changed()

	return nil
}

// StateSize implements storage.StateSizer.
func (r *Raw) StateSize() int {
	return len(r.data)
}

// OnLoadState implements storage.Element.
func (r *Raw) OnLoadState(io storage.StateIO) {
	buf := make([]byte, len(r.data))
	if io.ReadState(buf) == nil {
		copy(r.data, buf)
	}
}

// OnSaveState implements storage.Element.
func (r *Raw) OnSaveState(io storage.StateIO) {
	_ = io.WriteState(r.data)
}
