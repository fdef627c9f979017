// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery publishes and resolves daemon socket
// advertisements.
//
// A running daemon drops a small CBOR record next to its socket
// naming the socket path, its pid, and timestamps. Clients resolve
// the record instead of hard-coding a socket path, and treat a record
// that has not been refreshed recently as evidence of a dead daemon
// rather than connecting to a stale socket.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ErrStaleRecord reports an advertisement older than the caller's
// staleness bound.
var ErrStaleRecord = errors.New("discovery: advertisement record is stale")

// Record is one daemon advertisement.
type Record struct {
	SocketPath string    `cbor:"socket_path"`
	PID        int       `cbor:"pid"`
	Version    string    `cbor:"version"`
	StartedAt  time.Time `cbor:"started_at"`
	UpdatedAt  time.Time `cbor:"updated_at"`
}

var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(err)
	}
}

// Publish writes the record atomically so a concurrent resolver never
// sees a torn file.
func Publish(path string, rec Record) error {
	data, err := encMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("discovery: encode record: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("discovery: write record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("discovery: publish record: %w", err)
	}
	return nil
}

// Resolve reads an advertisement and rejects it when its last
// refresh is older than maxAge. maxAge zero skips the staleness
// check.
func Resolve(path string, maxAge time.Duration, now time.Time) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("discovery: read record: %w", err)
	}
	var rec Record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("discovery: decode record %s: %w", filepath.Base(path), err)
	}
	if maxAge > 0 && now.Sub(rec.UpdatedAt) > maxAge {
		return rec, fmt.Errorf("%w: last updated %s", ErrStaleRecord, rec.UpdatedAt.Format(time.RFC3339))
	}
	return rec, nil
}
