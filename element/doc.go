// Package element provides ready-made stateful elements for storage.Manager.
//
//   - Counter: uint64 impulse counter (energy meters, pulse inputs)
//   - Switch: relay state with a power-on restore policy
//   - Value: any fixed-size number (setpoints, calibration offsets)
//   - Raw: fixed-size byte buffer
//
// Elements that change at runtime can request a deferred save through a
// Saver, usually the storage.Manager itself:
//
//	relay := element.NewSwitch(element.RestoreLast, element.WithSaver(mgr, 2*time.Second))
//	if _, err := mgr.RegisterElement("relay", relay); err != nil {
//		return err
//	}
package element

import (
	"time"

	"github.com/arloliu/nvstate/internal/options"
)

// Saver schedules a state save, see storage.Manager.ScheduleSave.
type Saver interface {
	ScheduleSave(delay time.Duration)
}

type notifier struct {
	saver Saver
	delay time.Duration
}

func (n *notifier) changed() {
	if n.saver != nil {
		n.saver.ScheduleSave(n.delay)
	}
}

// Option configures an element.
type Option = options.Option[*notifier]

// WithSaver makes the element schedule a save delay after every change.
func WithSaver(s Saver, delay time.Duration) Option {
	return options.NoError(func(n *notifier) {
		n.saver = s
		n.delay = delay
	})
}

func newNotifier(opts []Option) notifier {
	var n notifier
	_ = options.Apply(&n, opts...)

	return n
}
