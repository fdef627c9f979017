// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPublishResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.record")
	now := time.Now().UTC().Truncate(time.Second)
	rec := Record{
		SocketPath: "/run/glasspane/daemon.sock",
		PID:        4242,
		Version:    "1.0.0",
		StartedAt:  now.Add(-time.Hour),
		UpdatedAt:  now,
	}
	if err := Publish(path, rec); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := Resolve(path, time.Minute, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.SocketPath != rec.SocketPath || got.PID != rec.PID || got.Version != rec.Version {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
	if !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Fatalf("updated at %v, want %v", got.UpdatedAt, rec.UpdatedAt)
	}
}

func TestResolveStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.record")
	now := time.Now().UTC()
	rec := Record{SocketPath: "/tmp/x.sock", UpdatedAt: now.Add(-10 * time.Minute)}
	if err := Publish(path, rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := Resolve(path, time.Minute, now); !errors.Is(err, ErrStaleRecord) {
		t.Fatalf("got %v, want ErrStaleRecord", err)
	}
	// Zero maxAge disables the check.
	if _, err := Resolve(path, 0, now); err != nil {
		t.Fatalf("resolve without staleness bound: %v", err)
	}
}

func TestResolveMissing(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "absent"), time.Minute, time.Now()); err == nil {
		t.Fatal("resolve of missing record succeeded")
	}
}

func TestPublishOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.record")
	now := time.Now().UTC()
	if err := Publish(path, Record{PID: 1, UpdatedAt: now}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := Publish(path, Record{PID: 2, UpdatedAt: now}); err != nil {
		t.Fatalf("republish: %v", err)
	}
	got, err := Resolve(path, 0, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.PID != 2 {
		t.Fatalf("pid = %d, want 2", got.PID)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}
