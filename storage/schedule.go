package storage

import (
	"fmt"
	"time"

	"github.com/arloliu/nvstate/errs"
)

// SetStateSavePeriod sets the interval between periodic saves. Zero
// disables periodic saving; non-zero values below MinStateSavePeriod are
// raised to it.
func (m *Manager) SetStateSavePeriod(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalidSavePeriod, d)
	}
	if d > 0 && d < MinStateSavePeriod {
		d = MinStateSavePeriod
	}
	m.period = d

	return nil
}

// StateSavePeriod returns the periodic save interval.
func (m *Manager) StateSavePeriod() time.Duration {
	return m.period
}

// ScheduleSave requests a save delay from now. An earlier pending request
// is kept.
func (m *Manager) ScheduleSave(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	due := m.clock.Now().Add(delay)
	if m.dueAt.IsZero() || due.Before(m.dueAt) {
		m.dueAt = due
	}
}

// SaveStateAllowed reports whether a scheduled save came due or the save
// period elapsed since the last save.
func (m *Manager) SaveStateAllowed() bool {
	now := m.clock.Now()
	if !m.dueAt.IsZero() && !now.Before(m.dueAt) {
		return true
	}

	return m.period > 0 && now.Sub(m.lastSave) >= m.period
}

// Iterate saves the element state when SaveStateAllowed. It is meant to be
// called on every pass of the device main loop.
func (m *Manager) Iterate() error {
	if !m.ready || !m.SaveStateAllowed() {
		return nil
	}

	m.lastSave = m.clock.Now()
	m.dueAt = time.Time{}

	return m.WriteStateStorage()
}
