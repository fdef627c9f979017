// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/lib/testutil"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
)

func attachTestPane(t *testing.T, clk clock.Clock, handle func(d *fakeDaemon, pdu protocol.Pdu)) (*Pane, *fakeDaemon) {
	t.Helper()
	c, daemon := startSession(t, clk, handle)
	p, err := Attach(PaneConfig{
		Client: c,
		PaneID: 1,
		TabID:  2,
		Clock:  clk,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	return p, daemon
}

func pingAwareAck(d *fakeDaemon, pdu protocol.Pdu) {
	if _, ok := pdu.Message.(*protocol.Ping); ok {
		d.reply(pdu.Serial, &protocol.Pong{})
		return
	}
	ackAll(d, pdu)
}

func TestEndToEndPredictedHi(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))

	type sentKey struct {
		serial protocol.InputSerial
		key    pane.KeyCode
	}
	keys := make(chan sentKey, 2)
	p, d := attachTestPane(t, clk, func(d *fakeDaemon, pdu protocol.Pdu) {
		if msg, ok := pdu.Message.(*protocol.SendKeyDown); ok {
			keys <- sentKey{serial: msg.Serial, key: msg.Key}
		}
		pingAwareAck(d, pdu)
	})
	m := p.Mirror()
	m.ApplyDelta(baseDelta(24, 80))

	ctx := context.Background()
	if err := p.KeyDown(ctx, pane.CharKey('h'), 0); err != nil {
		t.Fatalf("keydown h: %v", err)
	}
	if err := p.KeyDown(ctx, pane.CharKey('i'), 0); err != nil {
		t.Fatalf("keydown i: %v", err)
	}

	// The wire carries the minted serials with the keys.
	k1 := testutil.RequireReceive(t, keys, 5*time.Second, "waiting for first key")
	k2 := testutil.RequireReceive(t, keys, 5*time.Second, "waiting for second key")
	if k1.serial != 1 || k1.key.Char != 'h' || k2.serial != 2 || k2.key.Char != 'i' {
		t.Fatalf("sent keys: %+v %+v", k1, k2)
	}

	// Before any reply the mirror shows "hi" as prediction.
	if line, _ := m.Line(0); line.Text() != "hi" {
		t.Fatalf("predicted = %q, want \"hi\"", line.Text())
	}
	if m.State() != StatePredicting {
		t.Fatalf("state = %s, want predicting", m.State())
	}

	// The daemon pushes the authoritative delta with watermark 2 and
	// content "hi": same appearance, but now confirmed and fresh.
	delta := baseDelta(24, 80)
	delta.Serial = serialPtr(2)
	delta.Cursor = pane.CursorPosition{X: 2, Visible: true}
	delta.BonusLines = []protocol.LineEntry{{Row: 0, Line: pane.LineFromText("hi")}}
	d.push(delta)

	eventually(t, func() bool {
		return m.PredictionCount() == 0 && m.State() == StateFresh
	}, "mirror converged")
	line, authoritative := m.Line(0)
	if line.Text() != "hi" || !authoritative {
		t.Fatalf("after confirmation: %q authoritative=%v", line.Text(), authoritative)
	}
}

func TestMouseBatching(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))

	var mu sync.Mutex
	var batches [][]pane.MouseEvent
	firstHeld := make(chan struct{})
	release := make(chan struct{})
	p, _ := attachTestPane(t, clk, func(d *fakeDaemon, pdu protocol.Pdu) {
		if msg, ok := pdu.Message.(*protocol.SendMouseEvent); ok {
			mu.Lock()
			n := len(batches)
			batches = append(batches, msg.Events)
			mu.Unlock()
			if n == 0 {
				close(firstHeld)
				<-release
			}
			d.reply(pdu.Serial, &protocol.UnitResponse{})
			return
		}
		pingAwareAck(d, pdu)
	})

	ctx := context.Background()
	ev := func(x uint32) pane.MouseEvent {
		return pane.MouseEvent{Kind: pane.MouseMove, X: x}
	}

	// First event dispatches immediately and is held by the daemon.
	if err := p.MouseEvent(ctx, ev(0)); err != nil {
		t.Fatalf("mouse 0: %v", err)
	}
	testutil.RequireClosed(t, firstHeld, 5*time.Second, "waiting for first event dispatch")

	// Five more while the first is in flight: they must queue.
	const queued = 5
	for i := 1; i <= queued; i++ {
		if err := p.MouseEvent(ctx, ev(uint32(i))); err != nil {
			t.Fatalf("mouse %d: %v", i, err)
		}
	}
	close(release)

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) >= 2
	}, "follow-up batch dispatched")

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 2 {
		t.Fatalf("%d batches, want exactly 2", len(batches))
	}
	if len(batches[0]) != 1 || batches[0][0].X != 0 {
		t.Fatalf("first batch: %+v", batches[0])
	}
	if len(batches[1]) != queued {
		t.Fatalf("follow-up batch has %d events, want %d", len(batches[1]), queued)
	}
	for i, got := range batches[1] {
		if got.X != uint32(i+1) {
			t.Fatalf("event %d out of order: %+v", i, got)
		}
	}
}

func TestResizeDebounce(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))
	var mu sync.Mutex
	resizes := 0
	p, _ := attachTestPane(t, clk, func(d *fakeDaemon, pdu protocol.Pdu) {
		if _, ok := pdu.Message.(*protocol.Resize); ok {
			mu.Lock()
			resizes++
			mu.Unlock()
		}
		pingAwareAck(d, pdu)
	})

	ctx := context.Background()
	size := pane.TerminalSize{Rows: 24, Cols: 80}
	for i := 0; i < 3; i++ {
		if err := p.Resize(ctx, size); err != nil {
			t.Fatalf("resize %d: %v", i, err)
		}
	}
	if err := p.Resize(ctx, pane.TerminalSize{Rows: 40, Cols: 120}); err != nil {
		t.Fatalf("resize: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if resizes != 2 {
		t.Fatalf("%d resize requests, want 2 (redundant calls debounced)", resizes)
	}
}

func TestResizeInvalidatesMirror(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))
	p, _ := attachTestPane(t, clk, pingAwareAck)
	m := p.Mirror()

	delta := baseDelta(24, 80)
	delta.BonusLines = []protocol.LineEntry{{Row: 0, Line: pane.LineFromText("old")}}
	m.ApplyDelta(delta)
	if m.State() != StateFresh {
		t.Fatalf("state = %s", m.State())
	}

	if err := p.Resize(context.Background(), pane.TerminalSize{Rows: 30, Cols: 90}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if m.State() != StateStale {
		t.Fatalf("state after resize = %s, want stale", m.State())
	}
	// Geometry is authoritative-only; the mirror must not have
	// guessed new dimensions.
	if dims := m.Dimensions(); dims.Cols != 80 {
		t.Fatalf("dimensions updated optimistically: %+v", dims)
	}
}

func TestDetachRejectsCalls(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))
	p, _ := attachTestPane(t, clk, pingAwareAck)

	p.Detach()
	if !p.Detached() {
		t.Fatal("not detached")
	}
	if err := p.Write(context.Background(), []byte("x")); !errors.Is(err, ErrDetached) {
		t.Fatalf("got %v, want ErrDetached", err)
	}
	if _, err := p.Search(context.Background(), pane.Pattern{Text: "x"}); !errors.Is(err, ErrDetached) {
		t.Fatalf("got %v, want ErrDetached", err)
	}
}

func TestPaneRemovedDetaches(t *testing.T) {
	clk := clock.Fake(time.Unix(1000, 0))
	p, d := attachTestPane(t, clk, pingAwareAck)

	d.push(&protocol.PaneRemoved{PaneID: 1})
	eventually(t, func() bool { return p.Detached() }, "pane detached by push")
}
