package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/internal/options"
	"github.com/arloliu/nvstate/metrics"
)

const (
	// DefaultStateSavePeriod is the interval between periodic saves driven
	// by Iterate.
	DefaultStateSavePeriod = 5 * time.Second
	// MinStateSavePeriod is the shortest accepted non-zero save period.
	MinStateSavePeriod = time.Second
)

// ManagerOption configures a Manager.
type ManagerOption = options.Option[*Manager]

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) ManagerOption {
	return options.NoError(func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	})
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) ManagerOption {
	return options.NoError(func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	})
}

// WithClock sets the clock driving the save scheduler.
func WithClock(c clockwork.Clock) ManagerOption {
	return options.NoError(func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	})
}

// WithStateSavePeriod sets the periodic save interval. Zero disables
// periodic saves; ScheduleSave still works.
func WithStateSavePeriod(d time.Duration) ManagerOption {
	return options.New(func(m *Manager) error {
		return m.SetStateSavePeriod(d)
	})
}

// WithCapacity overrides the medium capacity used for bounds checks.
// By default the capacity comes from medium.Sizer.
func WithCapacity(n int) ManagerOption {
	return options.New(func(m *Manager) error {
		if n < 0 {
			return fmt.Errorf("%w: capacity %d", errs.ErrInvalidMediumCfg, n)
		}
		m.capacity = int64(n)

		return nil
	})
}
