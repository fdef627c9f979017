// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Marshaler is implemented by types that encode themselves, notably
// tagged unions: the implementation writes a variant index with
// PutVariant followed by the variant's fields.
type Marshaler interface {
	MarshalWire(e *Encoder) error
}

// Marshal encodes v to its wire representation. Encoding is
// deterministic: equal values always produce identical bytes.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Encoder accumulates the wire encoding of one message.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// PutBool writes a bool as a single 0 or 1 byte.
func (e *Encoder) PutBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// PutByte writes one raw byte.
func (e *Encoder) PutByte(v byte) { e.buf = append(e.buf, v) }

// PutUvarint writes an unsigned LEB128 integer.
func (e *Encoder) PutUvarint(v uint64) { e.buf = AppendUvarint(e.buf, v) }

// PutVarint writes a signed LEB128 integer.
func (e *Encoder) PutVarint(v int64) { e.buf = AppendVarint(e.buf, v) }

// PutFloat32 writes a little-endian IEEE-754 single.
func (e *Encoder) PutFloat32(v float32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v))
}

// PutFloat64 writes a little-endian IEEE-754 double.
func (e *Encoder) PutFloat64(v float64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// PutString writes a length-prefixed UTF-8 string.
func (e *Encoder) PutString(v string) {
	e.buf = AppendUvarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// PutBytes writes a length-prefixed byte buffer.
func (e *Encoder) PutBytes(v []byte) {
	e.buf = AppendUvarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// PutOption writes the optional-value tag byte: 1 when the value
// follows, 0 when it is absent.
func (e *Encoder) PutOption(present bool) { e.PutBool(present) }

// PutVariant writes a tagged union's variant index.
func (e *Encoder) PutVariant(index uint32) { e.PutUvarint(uint64(index)) }

// Encode appends the wire encoding of v.
func (e *Encoder) Encode(v any) error {
	return e.encodeValue(reflect.ValueOf(v))
}

func (e *Encoder) encodeValue(rv reflect.Value) error {
	if !rv.IsValid() {
		return fmt.Errorf("wire: cannot encode untyped nil")
	}

	// Pointers are optionals and must be inspected before the
	// Marshaler check so that a nil *T never has a method invoked on
	// it.
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			e.PutOption(false)
			return nil
		}
		e.PutOption(true)
		return e.encodeValue(rv.Elem())
	}

	if m, ok := rv.Interface().(Marshaler); ok {
		return m.MarshalWire(e)
	}

	switch rv.Kind() {
	case reflect.Bool:
		e.PutBool(rv.Bool())
	case reflect.Int8:
		e.PutByte(byte(rv.Int()))
	case reflect.Uint8:
		e.PutByte(byte(rv.Uint()))
	case reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		e.PutVarint(rv.Int())
	case reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		e.PutUvarint(rv.Uint())
	case reflect.Float32:
		e.PutFloat32(float32(rv.Float()))
	case reflect.Float64:
		e.PutFloat64(rv.Float())
	case reflect.String:
		e.PutString(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.PutBytes(rv.Bytes())
			return nil
		}
		e.PutUvarint(uint64(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeValue(rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Array:
		// Fixed-size: the length is part of the shape, no prefix.
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeValue(rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := e.encodeValue(rv.Field(i)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("wire: unsupported type %s", rv.Type())
	}
	return nil
}

// encodeMap writes entries sorted by encoded key bytes. Go map
// iteration order is random; sorting keeps Marshal deterministic.
func (e *Encoder) encodeMap(rv reflect.Value) error {
	type entry struct {
		key, value []byte
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ke := NewEncoder()
		if err := ke.encodeValue(iter.Key()); err != nil {
			return err
		}
		ve := NewEncoder()
		if err := ve.encodeValue(iter.Value()); err != nil {
			return err
		}
		entries = append(entries, entry{key: ke.Bytes(), value: ve.Bytes()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	e.PutUvarint(uint64(len(entries)))
	for _, ent := range entries {
		e.buf = append(e.buf, ent.key...)
		e.buf = append(e.buf, ent.value...)
	}
	return nil
}
