// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the positional binary encoding used for
// every message exchanged with a glasspane mux server.
//
// The format is deliberately not self-describing: it carries no type
// information and no field names, so both sides must agree on the
// exact shape of every message. In exchange it is compact enough for
// an interactive link and bit-for-bit deterministic: the same value
// always encodes to the same bytes.
//
// Encoding rules:
//
//   - bool: one byte, 0 or 1. Any other byte fails decoding.
//   - int8/uint8: one raw byte.
//   - wider integers: LEB128. Unsigned types use unsigned LEB128,
//     signed types use the sign-extended signed variant.
//   - float32/float64: fixed-width little-endian IEEE-754.
//   - string: unsigned-LEB128 byte length, then UTF-8 bytes. Invalid
//     UTF-8 fails decoding.
//   - []byte: unsigned-LEB128 length, then raw bytes.
//   - pointer (optional): one tag byte, 0 absent or 1 present
//     followed by the value. Any other tag fails decoding.
//   - slice: unsigned-LEB128 element count, then elements in order.
//   - array: elements in order with no count (the count is part of
//     the shape).
//   - map: unsigned-LEB128 entry count, then key/value pairs sorted
//     by encoded key bytes so that encoding is deterministic.
//   - struct: exported fields in declaration order, positionally.
//   - tagged union: types implement Marshaler/Unmarshaler and write
//     an unsigned-LEB128 variant index followed by the variant's
//     fields in declaration order.
//
// Decoding into an untyped any is rejected with
// ErrDecodeAnyNotSupported: without a shape there is nothing to
// decode into. Codec errors are fatal to the message being decoded;
// there is no resynchronization below the frame layer.
package wire
