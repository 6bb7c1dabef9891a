// Package snapshot exports and imports whole medium images.
//
// A snapshot captures every byte of a medium so that a device's persisted
// state can be archived, inspected on a host, or restored onto another
// medium. The file format is:
//
//	Bytes    | Field        | Description
//	---------|--------------|------------------------------------------
//	0-3      | Magic        | ASCII "NVSS"
//	4        | Version      | Snapshot format version (1)
//	5-8      | MetaLength   | uint32 little-endian length of Meta
//	9-...    | Meta         | CBOR-encoded Meta, integer keys
//	...      | Payload      | Image compressed with Meta.Compression
//
// Meta records the uncompressed image size and its xxHash64 digest; Read
// rejects a snapshot whose decompressed image does not match both.
package snapshot
