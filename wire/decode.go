// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// Unmarshaler is implemented by types that decode themselves, notably
// tagged unions: the implementation reads a variant index with
// Variant and then the variant's fields.
type Unmarshaler interface {
	UnmarshalWire(d *Decoder) error
}

// Unmarshal decodes data into v, which must be a non-nil pointer to a
// value of the expected shape.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(data).Decode(v)
}

// Decoder reads wire-encoded values from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a Decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder { return &Decoder{data: data} }

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.off }

// Rest consumes and returns every remaining byte. The slice aliases
// the Decoder's backing data.
func (d *Decoder) Rest() []byte {
	p := d.data[d.off:]
	d.off = len(d.data)
	return p
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	p := d.data[d.off : d.off+n]
	d.off += n
	return p, nil
}

// Byte reads one raw byte.
func (d *Decoder) Byte() (byte, error) {
	p, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// Bool reads a bool byte, rejecting anything other than 0 or 1.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: byte 0x%02x", ErrInvalidBoolEncoding, b)
	}
}

// Uvarint reads an unsigned LEB128 integer.
func (d *Decoder) Uvarint() (uint64, error) {
	v, n := uvarint(d.data[d.off:])
	if n == 0 {
		return 0, ErrUnexpectedEOF
	}
	if n < 0 {
		return 0, ErrNumberOutOfRange
	}
	d.off += n
	return v, nil
}

// Varint reads a signed LEB128 integer.
func (d *Decoder) Varint() (int64, error) {
	v, n := varint(d.data[d.off:])
	if n == 0 {
		return 0, ErrUnexpectedEOF
	}
	if n < 0 {
		return 0, ErrNumberOutOfRange
	}
	d.off += n
	return v, nil
}

// Float32 reads a little-endian IEEE-754 single.
func (d *Decoder) Float32() (float32, error) {
	p, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
}

// Float64 reads a little-endian IEEE-754 double.
func (d *Decoder) Float64() (float64, error) {
	p, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

// String reads a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	p, err := d.lengthPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidUTF8Encoding
	}
	return string(p), nil
}

// Bytes reads a length-prefixed byte buffer. The returned slice is a
// copy and remains valid after the Decoder's backing data is reused.
func (d *Decoder) Bytes() ([]byte, error) {
	p, err := d.lengthPrefixed()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

func (d *Decoder) lengthPrefixed() ([]byte, error) {
	n, err := d.Uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.Remaining()) {
		return nil, ErrUnexpectedEOF
	}
	return d.take(int(n))
}

// Option reads the optional-value tag byte.
func (d *Decoder) Option() (bool, error) {
	b, err := d.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: tag 0x%02x", ErrInvalidTagEncoding, b)
	}
}

// Variant reads a tagged union's variant index.
func (d *Decoder) Variant() (uint32, error) {
	v, err := d.Uvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrNumberOutOfRange
	}
	return uint32(v), nil
}

// Decode reads a value of v's shape. v must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("wire: decode target must be a non-nil pointer, got %T", v)
	}
	return d.decodeValue(rv.Elem())
}

func (d *Decoder) decodeValue(rv reflect.Value) error {
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalWire(d)
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		v, err := d.Bool()
		if err != nil {
			return err
		}
		rv.SetBool(v)
	case reflect.Int8:
		b, err := d.Byte()
		if err != nil {
			return err
		}
		rv.SetInt(int64(int8(b)))
	case reflect.Uint8:
		b, err := d.Byte()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(b))
	case reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		v, err := d.Varint()
		if err != nil {
			return err
		}
		if rv.OverflowInt(v) {
			return ErrNumberOutOfRange
		}
		rv.SetInt(v)
	case reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		v, err := d.Uvarint()
		if err != nil {
			return err
		}
		if rv.OverflowUint(v) {
			return ErrNumberOutOfRange
		}
		rv.SetUint(v)
	case reflect.Float32:
		v, err := d.Float32()
		if err != nil {
			return err
		}
		rv.SetFloat(float64(v))
	case reflect.Float64:
		v, err := d.Float64()
		if err != nil {
			return err
		}
		rv.SetFloat(v)
	case reflect.String:
		v, err := d.String()
		if err != nil {
			return err
		}
		rv.SetString(v)
	case reflect.Slice:
		return d.decodeSlice(rv)
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := d.decodeValue(rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		return d.decodeMap(rv)
	case reflect.Pointer:
		present, err := d.Option()
		if err != nil {
			return err
		}
		if !present {
			rv.SetZero()
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := d.decodeValue(elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := d.decodeValue(rv.Field(i)); err != nil {
				return fmt.Errorf("wire: field %s.%s: %w", t.Name(), t.Field(i).Name, err)
			}
		}
	case reflect.Interface:
		return ErrDecodeAnyNotSupported
	default:
		return fmt.Errorf("wire: unsupported type %s", rv.Type())
	}
	return nil
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		p, err := d.Bytes()
		if err != nil {
			return err
		}
		rv.SetBytes(p)
		return nil
	}
	count, err := d.Uvarint()
	if err != nil {
		return err
	}
	// Every element occupies at least one byte, so a count beyond the
	// remaining data is corrupt; reject it before allocating.
	if count > uint64(d.Remaining()) {
		return ErrUnexpectedEOF
	}
	out := reflect.MakeSlice(rv.Type(), int(count), int(count))
	for i := 0; i < int(count); i++ {
		if err := d.decodeValue(out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (d *Decoder) decodeMap(rv reflect.Value) error {
	count, err := d.Uvarint()
	if err != nil {
		return err
	}
	if count > uint64(d.Remaining()) {
		return ErrUnexpectedEOF
	}
	out := reflect.MakeMapWithSize(rv.Type(), int(count))
	keyType := rv.Type().Key()
	valType := rv.Type().Elem()
	for i := 0; i < int(count); i++ {
		key := reflect.New(keyType).Elem()
		if err := d.decodeValue(key); err != nil {
			return err
		}
		val := reflect.New(valType).Elem()
		if err := d.decodeValue(val); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	rv.Set(out)
	return nil
}
