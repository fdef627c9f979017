// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/glasspane/glasspane/wire"
)

const (
	// compressThreshold is the payload size above which compression
	// is attempted. Tiny payloads never win.
	compressThreshold = 32

	// compressedMask flags a compressed payload in the frame length.
	compressedMask = uint64(1) << 63

	// maxFrameLen bounds the allocation a hostile or corrupt length
	// prefix can demand.
	maxFrameLen = 1 << 28
)

// ErrFrameTooLarge reports a frame length beyond maxFrameLen.
var ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum length")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxFrameLen))
	if err != nil {
		panic(err)
	}
}

// Pdu is one decoded frame: a correlation serial and the message it
// carried. Serial 0 marks an unsolicited push.
type Pdu struct {
	Serial  uint64
	Message Message
}

// WritePdu frames and writes one message. The payload is compressed
// when it is large enough and compression shrinks it.
func WritePdu(w io.Writer, serial uint64, msg Message) error {
	payload, err := wire.Marshal(msg)
	if err != nil {
		return fmt.Errorf("protocol: encode %T: %w", msg, err)
	}

	compressed := false
	if len(payload) > compressThreshold {
		if c := zstdEncoder.EncodeAll(payload, nil); len(c) < len(payload) {
			payload = c
			compressed = true
		}
	}

	ident := uint64(msg.Ident())
	length := uint64(wire.UvarintLen(serial)+wire.UvarintLen(ident)) + uint64(len(payload))
	if length > maxFrameLen {
		return ErrFrameTooLarge
	}
	tagged := length
	if compressed {
		tagged |= compressedMask
	}

	frame := wire.AppendUvarint(nil, tagged)
	frame = wire.AppendUvarint(frame, serial)
	frame = wire.AppendUvarint(frame, ident)
	frame = append(frame, payload...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("protocol: write frame: %w", err)
	}
	return nil
}

// ReadPdu reads and decodes exactly one frame. A frame with an
// unknown ident decodes to *Invalid, not an error; the stream stays
// usable. Errors from the underlying reader are returned as is so
// callers can distinguish io.EOF.
func ReadPdu(r io.Reader) (Pdu, error) {
	tagged, err := readUvarint(r)
	if err != nil {
		return Pdu{}, err
	}
	compressed := tagged&compressedMask != 0
	length := tagged &^ compressedMask
	if length > maxFrameLen {
		return Pdu{}, ErrFrameTooLarge
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Pdu{}, err
	}

	d := wire.NewDecoder(buf)
	serial, err := d.Uvarint()
	if err != nil {
		return Pdu{}, fmt.Errorf("protocol: frame serial: %w", err)
	}
	ident, err := d.Uvarint()
	if err != nil {
		return Pdu{}, fmt.Errorf("protocol: frame ident: %w", err)
	}
	payload := d.Rest()
	if compressed {
		payload, err = zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return Pdu{}, fmt.Errorf("protocol: decompress frame: %w", err)
		}
	}

	msg := newMessage(Ident(ident))
	if msg == nil {
		return Pdu{Serial: serial, Message: &Invalid{RawIdent: Ident(ident), Payload: payload}}, nil
	}
	if err := wire.Unmarshal(payload, msg); err != nil {
		return Pdu{}, fmt.Errorf("protocol: decode %T: %w", msg, err)
	}
	return Pdu{Serial: serial, Message: msg}, nil
}

// readUvarint reads an unsigned LEB128 value byte by byte from r.
func readUvarint(r io.Reader) (uint64, error) {
	var (
		v     uint64
		shift uint
		one   [1]byte
	)
	for {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			if err == io.EOF && shift != 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		b := one[0]
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, wire.ErrNumberOutOfRange
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
