package element

import (
	"github.com/arloliu/nvstate/storage"
)

// RestoreMode selects the state a Switch takes after power-on.
type RestoreMode uint8

const (
	// RestoreLast restores the persisted state.
	RestoreLast RestoreMode = iota
	// RestoreOff always starts off; the persisted state is ignored.
	RestoreOff
	// RestoreOn always starts on.
	RestoreOn
)

func (m RestoreMode) String() string {
	switch m {
	case RestoreLast:
		return "last"
	case RestoreOff:
		return "off"
	case RestoreOn:
		return "on"
	default:
		return "unknown"
	}
}

// Switch is a persistent on/off state, such as a relay.
//
// The state is stored as one byte: 0 for off, 1 for on. Any other value
// read from the medium is ignored.
type Switch struct {
	on   bool
	mode RestoreMode
	n    notifier
}

var (
	_ storage.Element    = (*Switch)(nil)
	_ storage.StateSizer = (*Switch)(nil)
)

// NewSwitch creates a switch with the given restore mode. The initial state
// is on only for RestoreOn.
func NewSwitch(mode RestoreMode, opts ...Option) *Switch {
	return &Switch{on: mode == RestoreOn, mode: mode, n: newNotifier(opts)}
}

// Set changes the state.
func (s *Switch) Set(on bool) {
	if s.on == on {
		return
	}
	s.on = on
	s.n.changed()
}

// Toggle inverts the state.
func (s *Switch) Toggle() {
	s.Set(!s.on)
}

// On reports the current state.
func (s *Switch) On() bool {
	return s.on
}

// Mode returns the restore mode.
func (s *Switch) Mode() RestoreMode {
	return s.mode
}

// StateSize implements storage.StateSizer.
func (s *Switch) StateSize() int {
	return 1
}

// OnLoadState implements storage.Element.
func (s *Switch) OnLoadState(io storage.StateIO) {
	var b [1]byte
	if io.ReadState(b[:]) != nil || s.mode != RestoreLast {
		return
	}

	switch b[0] {
	case 0:
		s.on = false
	case 1:
		s.on = true
	}
}

// OnSaveState implements storage.Element.
func (s *Switch) OnSaveState(io storage.StateIO) {
	var b [1]byte
	if s.on {
		b[0] = 1
	}
	_ = io.WriteState(b[:])
}
