package section

import (
	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/errs"
)

// Preamble is the fixed-size header at the start of the medium.
type Preamble struct {
	// Tag must be exactly "SUPLA" for an initialized medium.
	Tag [TagSize]byte // byte offset 0-4
	// Version is the on-media format version.
	Version uint8 // byte offset 5
	// SectionsCount is the number of section preambles that follow.
	SectionsCount uint16 // byte offset 6-7
}

// NewPreamble creates a preamble with the current tag and version.
func NewPreamble(sectionsCount uint16) Preamble {
	p := Preamble{
		Version:       Version,
		SectionsCount: sectionsCount,
	}
	copy(p.Tag[:], Tag)

	return p
}

// Parse parses the preamble from a byte slice.
//
// Parse only decodes the fields; use IsValid to decide whether the medium
// carries an initialized image.
//
// Returns:
//   - error: ErrInvalidPreambleSize if data is not exactly PreambleSize bytes
func (p *Preamble) Parse(data []byte) error {
	if len(data) != PreambleSize {
		return errs.ErrInvalidPreambleSize
	}

	copy(p.Tag[:], data[:TagSize])
	p.Version = data[versionOffset]
	p.SectionsCount = endian.Media().Uint16(data[sectionsCountOffset:PreambleSize])

	return nil
}

// Bytes serializes the preamble into a new PreambleSize byte slice.
func (p Preamble) Bytes() []byte {
	b := make([]byte, 0, PreambleSize)
	b = append(b, p.Tag[:]...)
	b = append(b, p.Version)

	return endian.Media().AppendUint16(b, p.SectionsCount)
}

// IsValid reports whether the tag and version exactly match the current format.
// The tag comparison is byte-exact: "SuPLa" is not a valid tag.
func (p Preamble) IsValid() bool {
	return p.Validate() == nil
}

// Validate returns the reason a preamble is not usable, or nil.
func (p Preamble) Validate() error {
	if string(p.Tag[:]) != Tag {
		return errs.ErrInvalidTag
	}
	if p.Version != Version {
		return errs.ErrUnsupportedVersion
	}

	return nil
}

// ParsePreamble parses a Preamble from the first PreambleSize bytes of data.
//
// Returns:
//   - Preamble: Parsed preamble (not validated)
//   - error: ErrInvalidPreambleSize if data is too short
func ParsePreamble(data []byte) (Preamble, error) {
	if len(data) < PreambleSize {
		return Preamble{}, errs.ErrInvalidPreambleSize
	}

	p := Preamble{}
	if err := p.Parse(data[:PreambleSize]); err != nil {
		return Preamble{}, err
	}

	return p, nil
}
