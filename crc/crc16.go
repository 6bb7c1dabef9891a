// Package crc implements the integrity codec for section payloads.
//
// The checksum is CRC-16/MODBUS: reflected polynomial 0x8005 (0xA001), initial
// value 0xFFFF, no final xor. Images written by existing devices depend on this
// exact algorithm; the four bytes 40 E2 01 00 (int32 123456, little-endian)
// must checksum to 17076.
package crc

import "github.com/sigurn/crc16"

var table = crc16.MakeTable(crc16.CRC16_MODBUS)

// Checksum computes the section checksum over data.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, table)
}
