// Package logfields holds the canonical slog attribute keys used across nvstate.
package logfields

import "log/slog"

const (
	KeyElement  = "element"
	KeyOffset   = "offset"
	KeySize     = "size"
	KeySection  = "section"
	KeyReason   = "reason"
	KeyCRC      = "crc"
	KeyBytes    = "bytes"
	KeyLayout   = "layout"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

func Element(name string) slog.Attr   { return slog.String(KeyElement, name) }
func Offset(off int64) slog.Attr      { return slog.Int64(KeyOffset, off) }
func Size(n int) slog.Attr            { return slog.Int(KeySize, n) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func CRC(c uint16) slog.Attr          { return slog.Int(KeyCRC, int(c)) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Layout(fp uint64) slog.Attr      { return slog.String(KeyLayout, fmtHex(fp)) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

func fmtHex(v uint64) string {
	const digits = "0123456789abcdef"
	var b [18]byte
	b[0], b[1] = '0', 'x'
	for i := 17; i >= 2; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}

	return string(b[:])
}
