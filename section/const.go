package section

import "math"

// Preamble identification.
const (
	Tag     = "SUPLA" // Tag is the magic identifier at medium offset 0, stored without terminator.
	TagSize = len(Tag)
	Version = 1 // Version is the current on-media format version.
)

// offset and record sizes on the medium
const (
	PreambleSize        = 8                 // fixed preamble size in bytes
	SectionPreambleSize = 7                 // fixed per-section preamble size in bytes
	FirstSectionOffset  = PreambleSize      // byte offset where the first section preamble starts
	MaxPayloadSize      = math.MaxUint16    // maximum payload size of a single section
	MaxSections         = math.MaxUint16    // maximum value of Preamble.SectionsCount
	CRCOffset           = 3                 // byte offset of crc1 inside a section preamble
	CRCPairSize         = 4                 // crc1 + crc2
	versionOffset       = TagSize           // byte offset of the version inside the preamble
	sectionsCountOffset = versionOffset + 1 // byte offset of the sections count inside the preamble
)
