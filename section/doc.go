// Package section defines the on-media binary layout of nvstate.
//
// The layout is bit-exact: images written by deployed devices must stay
// readable, so field order, widths and byte order never change within a
// format version. All records are packed (no padding) and little-endian.
//
// # Medium Structure
//
//	┌─────────────────────────────────────────────┐
//	│ Preamble (8 bytes, offset 0)                │
//	├─────────────────────────────────────────────┤
//	│ SectionPreamble #0 (7 bytes)                │
//	│ Payload #0 (SectionPreamble#0.Size bytes)   │
//	├─────────────────────────────────────────────┤
//	│ SectionPreamble #1 (7 bytes)                │
//	│ Payload #1                                  │
//	├─────────────────────────────────────────────┤
//	│ ... SectionsCount sections, back-to-back    │
//	└─────────────────────────────────────────────┘
//
// # Preamble Format
//
//	Bytes  | Field         | Type     | Description
//	-------|---------------|----------|-------------------------------
//	0-4    | Tag           | [5]byte  | ASCII "SUPLA", no terminator
//	5      | Version       | uint8    | Format version (1)
//	6-7    | SectionsCount | uint16   | Number of sections that follow
//
// A medium is initialized only when the tag matches byte for byte and the
// version equals Version. Erased memory, "SuPLa" or a newer version are all
// treated as uninitialized.
//
// # Section Preamble Format
//
//	Bytes  | Field | Type   | Description
//	-------|-------|--------|----------------------------------
//	0      | Type  | uint8  | format.SectionType
//	1-2    | Size  | uint16 | Payload length in bytes
//	3-4    | CRC1  | uint16 | CRC-16/MODBUS of the payload
//	5-6    | CRC2  | uint16 | Copy of CRC1
//
// A section is valid only when CRC1 == CRC2 and both equal the checksum
// recomputed over the payload currently on the medium.
//
// Example (one element-state section holding int32 123456):
//
//	53 55 50 4C 41 01 01 00   "SUPLA", v1, 1 section
//	03 04 00 B4 42 B4 42      ElementState, 4 bytes, crc 17076 twice
//	40 E2 01 00               payload
package section
