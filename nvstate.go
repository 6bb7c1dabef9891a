// Package nvstate persists the runtime state of embedded device elements on
// byte-addressable non-volatile media.
//
// The storage.Manager does the work: it validates and formats the medium,
// assigns every registered element a fixed sub-range of one checksummed
// element-state section, restores elements at boot and writes back only the
// bytes that changed. This package wires a manager, a medium and a set of
// elements from a config.Profile, the way nvstatectl and host-side
// simulators use them.
//
// # Basic Usage
//
// Wiring a manager by hand:
//
//	mem, _ := medium.OpenFile("dev01.img", 4096)
//	mgr, _ := storage.NewManager(mem, storage.WithLogger(logger))
//
//	relay := element.NewSwitch(element.RestoreLast, element.WithSaver(mgr, 2*time.Second))
//	impulses := element.NewCounter()
//	mgr.RegisterElement("relay", relay)
//	mgr.RegisterElement("impulses", impulses)
//
//	if !mgr.Init() {
//	    // no usable medium, run with defaults
//	}
//	_ = mgr.LoadStateStorage()
//
//	for {
//	    // device main loop
//	    _ = mgr.Iterate()
//	}
//
// Wiring from a profile:
//
//	p, _ := config.Load("dev01.yaml")
//	dev, _ := nvstate.Open(ctx, p)
//	defer dev.Close()
//
// # Package Structure
//
//   - section: on-media layout
//   - crc: CRC-16/MODBUS integrity codec
//   - medium: medium contract and memory, file and SQLite media
//   - storage: manager, registry and element hook contract
//   - element: ready-made elements
//   - snapshot, compress: image export and import
//   - metrics: wear and integrity counters
package nvstate

import (
	"context"
	"fmt"

	"github.com/arloliu/nvstate/config"
	"github.com/arloliu/nvstate/element"
	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/internal/hash"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/storage"
)

// ElementID returns the 64-bit identifier of an element name, as reported in
// storage.Record.ID.
func ElementID(name string) uint64 {
	return hash.ID(name)
}

// OpenMedium opens the medium described by cfg.
//
// Returns:
//   - medium.Medium: The opened medium
//   - func() error: Releases the medium
//   - error: ErrInvalidMediumCfg or open errors
func OpenMedium(ctx context.Context, cfg config.MediumConfig) (medium.Medium, func() error, error) {
	switch cfg.Kind {
	case config.MediumMemory:
		if cfg.Size <= 0 {
			return nil, nil, fmt.Errorf("%w: memory medium of %d bytes", errs.ErrInvalidMediumCfg, cfg.Size)
		}

		return medium.NewMemory(int(cfg.Size), medium.WithFill(cfg.Fill)), func() error { return nil }, nil

	case config.MediumFile:
		f, err := medium.OpenFile(cfg.Path, cfg.Size, medium.WithFileFill(cfg.Fill))
		if err != nil {
			return nil, nil, err
		}

		return f, f.Close, nil

	case config.MediumSQLite:
		opts := []medium.SQLiteOption{medium.WithSQLiteFill(cfg.Fill)}
		if cfg.PageSize > 0 {
			opts = append(opts, medium.WithPageSize(cfg.PageSize))
		}

		s, err := medium.OpenSQLite(ctx, cfg.Path, cfg.Size, opts...)
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown medium kind %q", errs.ErrInvalidMediumCfg, cfg.Kind)
	}
}

// NewElement builds the element described by cfg.
func NewElement(cfg config.ElementConfig, opts ...element.Option) (storage.Element, error) {
	switch cfg.Kind {
	case config.ElementCounter:
		return element.NewCounter(opts...), nil
	case config.ElementSwitch:
		mode, err := parseRestore(cfg.Restore)
		if err != nil {
			return nil, err
		}

		return element.NewSwitch(mode, opts...), nil
	case config.ElementBytes:
		if cfg.Size <= 0 {
			return nil, fmt.Errorf("%w: bytes element %q of %d bytes", errs.ErrInvalidStateSize, cfg.Name, cfg.Size)
		}

		return element.NewRaw(cfg.Size, opts...), nil
	case config.ElementValue:
		return newValue(cfg, opts)
	default:
		return nil, fmt.Errorf("%w: unknown element kind %q", errs.ErrInvalidElement, cfg.Kind)
	}
}

func parseRestore(s string) (element.RestoreMode, error) {
	switch s {
	case "", "last":
		return element.RestoreLast, nil
	case "off":
		return element.RestoreOff, nil
	case "on":
		return element.RestoreOn, nil
	default:
		return 0, fmt.Errorf("%w: unknown restore mode %q", errs.ErrInvalidElement, s)
	}
}

func newValue(cfg config.ElementConfig, opts []element.Option) (storage.Element, error) {
	switch cfg.Type {
	case "int8":
		return element.NewValue[int8](0, opts...), nil
	case "uint8":
		return element.NewValue[uint8](0, opts...), nil
	case "int16":
		return element.NewValue[int16](0, opts...), nil
	case "uint16":
		return element.NewValue[uint16](0, opts...), nil
	case "int32":
		return element.NewValue[int32](0, opts...), nil
	case "uint32":
		return element.NewValue[uint32](0, opts...), nil
	case "int64":
		return element.NewValue[int64](0, opts...), nil
	case "uint64":
		return element.NewValue[uint64](0, opts...), nil
	case "float32":
		return element.NewValue[float32](0, opts...), nil
	case "float64":
		return element.NewValue[float64](0, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown value type %q", errs.ErrInvalidElement, cfg.Type)
	}
}
