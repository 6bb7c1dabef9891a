// Package endian provides the byte order used by the nvstate on-media format.
//
// Every multi-byte field on the medium (section counts, payload sizes, CRCs)
// is stored little-endian regardless of the host. Element state payloads are
// opaque to the storage layer, but elements that encode integers should use
// the same engine so that images stay portable between hosts:
//
//	engine := endian.Media()
//	buf := engine.AppendUint32(nil, counter)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Media returns the engine used for every field of the on-media layout.
func Media() EndianEngine {
	return binary.LittleEndian
}

// Native returns the host byte order.
func Native() binary.ByteOrder {
	// 0x0100 is stored as 00 01 on little-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeMedia reports whether the host byte order matches the media order,
// i.e. whether raw in-memory integers can be copied to the medium unchanged.
func IsNativeMedia() bool {
	return Native() == binary.LittleEndian
}
