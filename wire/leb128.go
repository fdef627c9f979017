// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package wire

// AppendUvarint appends the unsigned LEB128 encoding of v to buf.
func AppendUvarint(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}

// AppendVarint appends the sign-extended signed LEB128 encoding of v
// to buf.
func AppendVarint(buf []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// UvarintLen returns the number of bytes AppendUvarint would write
// for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// uvarint decodes an unsigned LEB128 value from data, returning the
// value and the number of bytes consumed. A zero byte count means
// the data ended mid-value; a negative count means the value
// overflows 64 bits.
func uvarint(data []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range data {
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, -1
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// varint decodes a sign-extended signed LEB128 value from data with
// the same return convention as uvarint.
func varint(data []byte) (int64, int) {
	var v int64
	var shift uint
	for i, b := range data {
		if shift >= 64 {
			return 0, -1
		}
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, i + 1
		}
	}
	return 0, 0
}
