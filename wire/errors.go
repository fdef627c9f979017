// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "errors"

// Decoding errors. All of them abort the message being decoded; the
// codec never attempts recovery or resynchronization.
var (
	// ErrNumberOutOfRange reports a decoded integer whose magnitude
	// exceeds the target field's width.
	ErrNumberOutOfRange = errors.New("wire: number out of range for target type")

	// ErrInvalidBoolEncoding reports a bool byte other than 0 or 1.
	ErrInvalidBoolEncoding = errors.New("wire: invalid bool encoding")

	// ErrInvalidTagEncoding reports an optional-value tag byte other
	// than 0 or 1.
	ErrInvalidTagEncoding = errors.New("wire: invalid option tag encoding")

	// ErrInvalidUTF8Encoding reports string bytes that are not valid
	// UTF-8.
	ErrInvalidUTF8Encoding = errors.New("wire: invalid utf-8 in string")

	// ErrDecodeAnyNotSupported reports an attempt to decode into an
	// untyped any. The format carries no type information, so the
	// target shape must be known statically.
	ErrDecodeAnyNotSupported = errors.New("wire: decoding into any is not supported")

	// ErrUnexpectedEOF reports a message that ended in the middle of
	// a value.
	ErrUnexpectedEOF = errors.New("wire: unexpected end of data")
)
