package nvstate

import (
	"context"
	"fmt"

	"github.com/arloliu/nvstate/config"
	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/storage"
)

// Device is a medium, a manager and the elements of a profile, initialized
// and loaded.
type Device struct {
	Manager *storage.Manager
	Medium  medium.Medium

	elements map[string]storage.Element
	names    []string
	closeFn  func() error
}

// Open opens the profile's medium, registers its elements in order, runs
// Init and loads the stored state. A profile save period of zero keeps the
// manager default; opts are applied after the profile settings.
func Open(ctx context.Context, p *config.Profile, opts ...storage.ManagerOption) (*Device, error) {
	med, closeFn, err := OpenMedium(ctx, p.Medium)
	if err != nil {
		return nil, err
	}

	mgrOpts := make([]storage.ManagerOption, 0, len(opts)+1)
	if p.Storage.SavePeriod > 0 {
		mgrOpts = append(mgrOpts, storage.WithStateSavePeriod(p.Storage.SavePeriod))
	}
	mgrOpts = append(mgrOpts, opts...)

	mgr, err := storage.NewManager(med, mgrOpts...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	d := &Device{
		Manager:  mgr,
		Medium:   med,
		elements: make(map[string]storage.Element, len(p.Elements)),
		closeFn:  closeFn,
	}

	for _, ec := range p.Elements {
		el, err := NewElement(ec)
		if err != nil {
			_ = closeFn()
			return nil, err
		}
		if _, err := mgr.RegisterElement(ec.Name, el); err != nil {
			_ = closeFn()
			return nil, err
		}
		d.elements[ec.Name] = el
		d.names = append(d.names, ec.Name)
	}

	if !mgr.Init() {
		_ = closeFn()
		return nil, fmt.Errorf("open device: %w", errs.ErrNotInitialized)
	}
	if err := mgr.LoadStateStorage(); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("load device state: %w", err)
	}

	return d, nil
}

// Element returns the element registered under name.
func (d *Device) Element(name string) (storage.Element, bool) {
	el, ok := d.elements[name]
	return el, ok
}

// Names returns the element names in registration order.
func (d *Device) Names() []string {
	return append([]string(nil), d.names...)
}

// Save writes the element state to the medium.
func (d *Device) Save() error {
	return d.Manager.WriteStateStorage()
}

// Close releases the medium without saving.
func (d *Device) Close() error {
	if d.closeFn == nil {
		return nil
	}
	fn := d.closeFn
	d.closeFn = nil

	return fn()
}
