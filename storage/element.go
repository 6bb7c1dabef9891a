package storage

// StateIO is the cursor handed to element hooks.
//
// Each call consumes the next len(buf) bytes of the element's sub-range.
type StateIO interface {
	// ReadState copies the next len(buf) bytes of the element's state into buf.
	ReadState(buf []byte) error
	// WriteState stores buf as the next len(buf) bytes of the element's state.
	WriteState(buf []byte) error
}

// Element is a runtime component with persistent state.
//
// OnLoadState is invoked after a valid image was read from the medium and
// OnSaveState before every write. Both must consume exactly the size the
// element registered with.
type Element interface {
	OnLoadState(io StateIO)
	OnSaveState(io StateIO)
}

// StateSizer is implemented by elements that know their persisted size.
// RegisterElement uses it instead of probing OnSaveState.
type StateSizer interface {
	StateSize() int
}

// HookFuncs adapts a pair of functions into an Element.
type HookFuncs struct {
	Load func(io StateIO)
	Save func(io StateIO)
}

var _ Element = HookFuncs{}

// OnLoadState implements Element.
func (h HookFuncs) OnLoadState(io StateIO) {
	if h.Load != nil {
		h.Load(io)
	}
}

// OnSaveState implements Element.
func (h HookFuncs) OnSaveState(io StateIO) {
	if h.Save != nil {
		h.Save(io)
	}
}

// sizeProbe counts the bytes a save hook produces without storing them.
type sizeProbe struct {
	n int
}

func (p *sizeProbe) ReadState(buf []byte) error {
	p.n += len(buf)
	return nil
}

func (p *sizeProbe) WriteState(buf []byte) error {
	p.n += len(buf)
	return nil
}

// SizeOf returns the number of bytes el writes in OnSaveState.
func SizeOf(el Element) int {
	if s, ok := el.(StateSizer); ok {
		return s.StateSize()
	}

	p := &sizeProbe{}
	el.OnSaveState(p)

	return p.n
}
