package element

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/arloliu/nvstate/errs"
)

var (
	_ encoding.TextMarshaler   = (*Counter)(nil)
	_ encoding.TextUnmarshaler = (*Counter)(nil)
	_ encoding.TextMarshaler   = (*Switch)(nil)
	_ encoding.TextUnmarshaler = (*Switch)(nil)
	_ encoding.TextMarshaler   = (*Raw)(nil)
	_ encoding.TextUnmarshaler = (*Raw)(nil)
	_ encoding.TextMarshaler   = (*Value[int32])(nil)
	_ encoding.TextUnmarshaler = (*Value[int32])(nil)
)

// MarshalText formats the count in decimal.
func (c *Counter) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, c.value, 10), nil
}

// UnmarshalText sets the count from a decimal number, or adds to it when the
// number is prefixed with "+".
func (c *Counter) UnmarshalText(text []byte) error {
	s := string(text)
	if delta, ok := strings.CutPrefix(s, "+"); ok {
		n, err := strconv.ParseUint(delta, 10, 64)
		if err != nil {
			return fmt.Errorf("counter increment %q: %w", s, err)
		}
		c.Add(n)

		return nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("counter value %q: %w", s, err)
	}
	c.Set(n)

	return nil
}

// MarshalText returns "on" or "off".
func (s *Switch) MarshalText() ([]byte, error) {
	if s.on {
		return []byte("on"), nil
	}

	return []byte("off"), nil
}

// UnmarshalText accepts "on", "off" or "toggle".
func (s *Switch) UnmarshalText(text []byte) error {
	switch string(text) {
	case "on":
		s.Set(true)
	case "off":
		s.Set(false)
	case "toggle":
		s.Toggle()
	default:
		return fmt.Errorf("switch state %q: want on, off or toggle", text)
	}

	return nil
}

// MarshalText formats the buffer in hex.
func (r *Raw) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(r.data)), nil
}

// UnmarshalText sets the buffer from hex.
func (r *Raw) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidStateSize, err)
	}

	return r.Set(b)
}

// MarshalText formats the number.
func (x *Value[T]) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(x.v)), nil
}

// UnmarshalText parses a number of the value's type.
func (x *Value[T]) UnmarshalText(text []byte) error {
	var v T
	s := string(text)
	bits := binary.Size(v) * 8

	switch reflect.ValueOf(v).Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return err
		}
		v = T(f)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return err
		}
		v = T(i)
	default:
		u, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return err
		}
		v = T(u)
	}
	x.Set(v)

	return nil
}
