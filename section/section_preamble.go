package section

import (
	"github.com/arloliu/nvstate/crc"
	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
)

// SectionPreamble describes one section: its kind, payload length and the
// two redundant payload checksums.
//
// CRC1 and CRC2 are written with the same value. A torn write tends to leave
// them different, so they are stored and compared as two independent fields.
type SectionPreamble struct {
	Type format.SectionType // byte offset 0
	Size uint16             // byte offset 1-2
	CRC1 uint16             // byte offset 3-4
	CRC2 uint16             // byte offset 5-6
}

// NewSectionPreamble creates a section preamble for payload with both
// checksums set to the checksum of payload.
//
// Returns:
//   - SectionPreamble: The new section preamble
//   - error: ErrSectionTooLarge if payload exceeds MaxPayloadSize
func NewSectionPreamble(typ format.SectionType, payload []byte) (SectionPreamble, error) {
	if len(payload) > MaxPayloadSize {
		return SectionPreamble{}, errs.ErrSectionTooLarge
	}

	sum := crc.Checksum(payload)

	return SectionPreamble{
		Type: typ,
		Size: uint16(len(payload)), //nolint:gosec // bounded above
		CRC1: sum,
		CRC2: sum,
	}, nil
}

// Parse parses the section preamble from a byte slice.
//
// Returns:
//   - error: ErrInvalidSectionPreambleSize if data is not exactly SectionPreambleSize bytes
func (s *SectionPreamble) Parse(data []byte) error {
	if len(data) != SectionPreambleSize {
		return errs.ErrInvalidSectionPreambleSize
	}

	engine := endian.Media()
	s.Type = format.SectionType(data[0])
	s.Size = engine.Uint16(data[1:3])
	s.CRC1 = engine.Uint16(data[3:5])
	s.CRC2 = engine.Uint16(data[5:7])

	return nil
}

// Bytes serializes the section preamble into a new SectionPreambleSize byte slice.
func (s SectionPreamble) Bytes() []byte {
	b := make([]byte, 0, SectionPreambleSize)
	b = append(b, byte(s.Type))

	engine := endian.Media()
	b = engine.AppendUint16(b, s.Size)
	b = engine.AppendUint16(b, s.CRC1)

	return engine.AppendUint16(b, s.CRC2)
}

// CRCBytes serializes only the checksum pair, as stored at CRCOffset.
func (s SectionPreamble) CRCBytes() []byte {
	engine := endian.Media()
	b := make([]byte, 0, CRCPairSize)
	b = engine.AppendUint16(b, s.CRC1)

	return engine.AppendUint16(b, s.CRC2)
}

// CRCConsistent reports whether the two stored checksums agree with each other.
func (s SectionPreamble) CRCConsistent() bool {
	return s.CRC1 == s.CRC2
}

// Matches reports whether payload is a complete, valid payload for this
// section: both stored checksums equal the checksum recomputed over payload
// and the payload length equals Size.
func (s SectionPreamble) Matches(payload []byte) bool {
	if len(payload) != int(s.Size) || !s.CRCConsistent() {
		return false
	}

	return crc.Checksum(payload) == s.CRC1
}

// ParseSectionPreamble parses a SectionPreamble from the first
// SectionPreambleSize bytes of data.
func ParseSectionPreamble(data []byte) (SectionPreamble, error) {
	if len(data) < SectionPreambleSize {
		return SectionPreamble{}, errs.ErrInvalidSectionPreambleSize
	}

	s := SectionPreamble{}
	if err := s.Parse(data[:SectionPreambleSize]); err != nil {
		return SectionPreamble{}, err
	}

	return s, nil
}
