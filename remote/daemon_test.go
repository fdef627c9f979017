// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
	"github.com/glasspane/glasspane/session"
)

// fakeDaemon is the server half of a piped connection, handing every
// decoded frame to the test's handler.
type fakeDaemon struct {
	t    *testing.T
	conn net.Conn
}

func (d *fakeDaemon) reply(serial uint64, msg protocol.Message) {
	if err := protocol.WritePdu(d.conn, serial, msg); err != nil {
		d.t.Errorf("daemon write: %v", err)
	}
}

func (d *fakeDaemon) push(msg protocol.Message) { d.reply(0, msg) }

// ackAll replies UnitResponse to everything, which suits tests that
// only care about the client side.
func ackAll(d *fakeDaemon, pdu protocol.Pdu) {
	d.reply(pdu.Serial, &protocol.UnitResponse{})
}

func startSession(t *testing.T, clk clock.Clock, handle func(d *fakeDaemon, pdu protocol.Pdu)) (*session.Client, *fakeDaemon) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	d := &fakeDaemon{t: t, conn: serverConn}
	go func() {
		for {
			pdu, err := protocol.ReadPdu(serverConn)
			if err != nil {
				return
			}
			handle(d, pdu)
		}
	}()
	c, err := session.New(session.Config{
		Conn:   clientConn,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clk,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
		serverConn.Close()
	})
	return c, d
}

func newTestMirror(t *testing.T, clk clock.Clock, cfg MirrorConfig, handle func(d *fakeDaemon, pdu protocol.Pdu)) *Mirror {
	t.Helper()
	c, _ := startSession(t, clk, handle)
	cfg.Client = c
	cfg.Clock = clk
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := NewMirror(cfg)
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	return m
}

// baseDelta is a minimal authoritative update establishing geometry
// and a cursor at the top left.
func baseDelta(rows, cols uint32) *protocol.GetPaneRenderChangesResponse {
	return &protocol.GetPaneRenderChangesResponse{
		PaneID: 1,
		Cursor: pane.CursorPosition{Visible: true},
		Dimensions: pane.RenderableDimensions{
			Cols:         cols,
			ViewportRows: rows,
		},
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never held: %s", what)
}
