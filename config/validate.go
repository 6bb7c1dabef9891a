package config

import (
	"fmt"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
)

var valueTypes = map[string]int{
	"int8": 1, "uint8": 1,
	"int16": 2, "uint16": 2,
	"int32": 4, "uint32": 4, "float32": 4,
	"int64": 8, "uint64": 8, "float64": 8,
}

// ValueTypeSize returns the byte size of a value element type.
func ValueTypeSize(typ string) (int, bool) {
	n, ok := valueTypes[typ]
	return n, ok
}

// Validate checks the profile for consistency.
func (p *Profile) Validate() error {
	switch p.Medium.Kind {
	case MediumFile, MediumSQLite:
		if p.Medium.Path == "" {
			return fmt.Errorf("%w: medium.path is required for %s media", errs.ErrInvalidProfile, p.Medium.Kind)
		}
	case MediumMemory:
	default:
		return fmt.Errorf("%w: unknown medium kind %q", errs.ErrInvalidProfile, p.Medium.Kind)
	}

	if p.Medium.Size < 0 {
		return fmt.Errorf("%w: medium.size %d", errs.ErrInvalidProfile, p.Medium.Size)
	}
	if p.Medium.PageSize < 0 {
		return fmt.Errorf("%w: medium.page_size %d", errs.ErrInvalidProfile, p.Medium.PageSize)
	}
	if p.Storage.SavePeriod < 0 {
		return fmt.Errorf("%w: storage.save_period %s", errs.ErrInvalidProfile, p.Storage.SavePeriod)
	}
	if _, ok := format.ParseCompression(p.Snapshot.Compression); !ok {
		return fmt.Errorf("%w: unknown snapshot compression %q", errs.ErrInvalidProfile, p.Snapshot.Compression)
	}

	seen := make(map[string]struct{}, len(p.Elements))
	for i, el := range p.Elements {
		if el.Name == "" {
			return fmt.Errorf("%w: elements[%d] has no name", errs.ErrInvalidProfile, i)
		}
		if _, dup := seen[el.Name]; dup {
			return fmt.Errorf("%w: duplicate element %q", errs.ErrInvalidProfile, el.Name)
		}
		seen[el.Name] = struct{}{}

		if err := el.validate(); err != nil {
			return fmt.Errorf("%w: element %q: %v", errs.ErrInvalidProfile, el.Name, err)
		}
	}

	return nil
}

func (e ElementConfig) validate() error {
	switch e.Kind {
	case ElementCounter:
	case ElementSwitch:
		switch e.Restore {
		case "last", "off", "on":
		default:
			return fmt.Errorf("unknown restore mode %q", e.Restore)
		}
	case ElementValue:
		if _, ok := ValueTypeSize(e.Type); !ok {
			return fmt.Errorf("unknown value type %q", e.Type)
		}
	case ElementBytes:
		if e.Size <= 0 {
			return fmt.Errorf("bytes element needs a positive size, got %d", e.Size)
		}
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}

	return nil
}
