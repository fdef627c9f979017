// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"log/slog"
	"sync"

	"github.com/glasspane/glasspane/pane"
)

// mouseBatcher coalesces bursty mouse input. Events append to an
// ordered queue; at most one dispatch is in flight at a time, and
// each dispatch drains the whole queue into a single batch. A drag
// across the screen becomes a handful of requests instead of one per
// pixel, and outstanding work per pane stays O(1) no matter how fast
// input arrives.
type mouseBatcher struct {
	send   func(context.Context, []pane.MouseEvent) error
	logger *slog.Logger

	mu       sync.Mutex
	queue    []pane.MouseEvent
	inFlight bool
}

func newMouseBatcher(logger *slog.Logger, send func(context.Context, []pane.MouseEvent) error) *mouseBatcher {
	return &mouseBatcher{send: send, logger: logger}
}

// add queues one event and starts a dispatcher if none is running.
func (b *mouseBatcher) add(ctx context.Context, ev pane.MouseEvent) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	if b.inFlight {
		b.mu.Unlock()
		return
	}
	b.inFlight = true
	b.mu.Unlock()
	go b.drain(ctx)
}

func (b *mouseBatcher) drain(ctx context.Context) {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.inFlight = false
			b.mu.Unlock()
			return
		}
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		if err := b.send(ctx, batch); err != nil {
			b.logger.Debug("mouse batch dropped", "events", len(batch), "error", err)
		}
	}
}
