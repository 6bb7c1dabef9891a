package storage

import (
	"fmt"

	"github.com/arloliu/nvstate/errs"
)

// ReadState copies the next len(buf) bytes of the current element's state
// into buf. It is valid only inside an element hook.
func (m *Manager) ReadState(buf []byte) error {
	start, err := m.advance(len(buf))
	if err != nil {
		return err
	}
	copy(buf, m.image[start:start+len(buf)])

	return nil
}

// WriteState stores buf as the next len(buf) bytes of the current element's
// state. It is valid only inside an element hook.
func (m *Manager) WriteState(buf []byte) error {
	start, err := m.advance(len(buf))
	if err != nil {
		return err
	}
	copy(m.image[start:], buf)

	return nil
}

// advance moves the hook cursor by n bytes and returns the previous
// position. An overrun is sticky for the rest of the hook.
func (m *Manager) advance(n int) (int, error) {
	if m.hook == nil {
		return 0, errs.ErrNoActiveHook
	}
	if m.hookErr != nil {
		return 0, m.hookErr
	}

	if m.cursor+n > m.hook.End() {
		m.hookErr = fmt.Errorf("%w: %d bytes at offset %d of %d", errs.ErrStateOverflow,
			n, m.cursor-m.hook.Offset, m.hook.Size)

		return 0, m.hookErr
	}

	start := m.cursor
	m.cursor += n

	return start, nil
}

// runHooks invokes the given hook of every element in registration order.
func (m *Manager) runHooks(kind hookKind) error {
	for _, rec := range m.registry.records {
		m.hook = &rec
		m.cursor = rec.Offset
		m.hookErr = nil

		if kind == loadHook {
			rec.Element.OnLoadState(m)
		} else {
			rec.Element.OnSaveState(m)
		}

		if err := m.endHook(kind); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) endHook(kind hookKind) error {
	rec := m.hook
	consumed := m.cursor - rec.Offset
	err := m.hookErr
	m.hook, m.hookErr = nil, nil

	if err != nil {
		return fmt.Errorf("%s hook of %q: %w", kind, rec.Name, err)
	}
	if consumed != rec.Size {
		return fmt.Errorf("%s hook of %q consumed %d of %d bytes: %w",
			kind, rec.Name, consumed, rec.Size, errs.ErrHookSizeMismatch)
	}

	return nil
}
