// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the message catalog spoken between a
// glasspane client and a mux daemon, and the framing that carries
// those messages over a reliable byte stream.
//
// Each frame is:
//
//	length   unsigned LEB128; counts the serial, ident, and payload
//	         bytes. Bit 63 marks a zstd-compressed payload.
//	serial   unsigned LEB128 correlation id; 0 marks an unsolicited
//	         push from the daemon.
//	ident    unsigned LEB128 message type number.
//	payload  the message body in the wire codec.
//
// Payloads above a small threshold are compressed when compression
// actually shrinks them. A frame whose ident is unknown decodes to
// *Invalid rather than an error, so the two ends can disagree about
// the newest message types without breaking the stream.
package protocol
