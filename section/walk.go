package section

import (
	"fmt"
	"io"

	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
)

// Entry is a section preamble together with its location on the medium.
type Entry struct {
	// Offset is the medium offset of the section preamble.
	Offset int64
	// Header is the decoded section preamble.
	Header SectionPreamble
}

// PayloadOffset returns the medium offset of the first payload byte.
func (e Entry) PayloadOffset() int64 {
	return e.Offset + SectionPreambleSize
}

// CRCOffset returns the medium offset of the stored checksum pair.
func (e Entry) CRCOffset() int64 {
	return e.Offset + CRCOffset
}

// End returns the medium offset just past the section payload.
func (e Entry) End() int64 {
	return e.PayloadOffset() + int64(e.Header.Size)
}

// Walk decodes the chain of section preambles declared by p.
//
// Sections are laid out back-to-back starting at FirstSectionOffset, each
// preamble immediately followed by its payload. When capacity is positive, a
// section extending past it stops the walk with ErrSectionOutOfBounds.
//
// Parameters:
//   - r: Medium to read from
//   - p: Valid preamble read from the same medium
//   - capacity: Medium size in bytes, or 0 if unknown
//
// Returns:
//   - []Entry: Decoded sections in medium order
//   - error: Read errors or ErrSectionOutOfBounds
func Walk(r io.ReaderAt, p Preamble, capacity int64) ([]Entry, error) {
	entries := make([]Entry, 0, p.SectionsCount)
	buf := make([]byte, SectionPreambleSize)
	off := int64(FirstSectionOffset)

	for i := range int(p.SectionsCount) {
		if capacity > 0 && off+SectionPreambleSize > capacity {
			return entries, fmt.Errorf("section %d preamble at offset %d: %w", i, off, errs.ErrSectionOutOfBounds)
		}

		if _, err := r.ReadAt(buf, off); err != nil {
			return entries, fmt.Errorf("read section %d preamble at offset %d: %w", i, off, err)
		}

		var h SectionPreamble
		if err := h.Parse(buf); err != nil {
			return entries, err
		}

		e := Entry{Offset: off, Header: h}
		if capacity > 0 && e.End() > capacity {
			return entries, fmt.Errorf("section %d (%s, %d bytes) at offset %d: %w",
				i, h.Type, h.Size, off, errs.ErrSectionOutOfBounds)
		}

		entries = append(entries, e)
		off = e.End()
	}

	return entries, nil
}

// Find returns the first entry of the given type.
func Find(entries []Entry, typ format.SectionType) (Entry, bool) {
	for _, e := range entries {
		if e.Header.Type == typ {
			return e, true
		}
	}

	return Entry{}, false
}

// EndOffset returns the medium offset just past the last entry, which is
// where a new section would be appended.
func EndOffset(entries []Entry) int64 {
	if len(entries) == 0 {
		return FirstSectionOffset
	}

	return entries[len(entries)-1].End()
}
