// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
	"github.com/glasspane/glasspane/session"
)

// ErrDetached reports an operation on a pane proxy that was detached,
// either explicitly or by a pane-removed push.
var ErrDetached = errors.New("remote: pane is detached")

// PaneConfig configures a remote pane proxy.
type PaneConfig struct {
	// Client is the session the pane lives on. Required.
	Client *session.Client

	PaneID pane.PaneID
	TabID  pane.TabID

	// Clock, Logger, and the mirror knobs follow MirrorConfig
	// semantics.
	Clock  clock.Clock
	Logger *slog.Logger
	Mirror MirrorConfig
}

// Pane proxies one remote pane over a session. It satisfies the pane
// capability surface; callers cannot tell it from a local pane except
// by latency.
type Pane struct {
	client  *session.Client
	logger  *slog.Logger
	paneID  pane.PaneID
	tabID   pane.TabID
	mirror  *Mirror
	batcher *mouseBatcher

	mu       sync.Mutex
	lastSize pane.TerminalSize
	haveSize bool
	detached bool
}

var _ pane.Pane = (*Pane)(nil)

// Attach builds the proxy and registers it for the pane's pushes.
// Call Detach when done; the session drops later pushes for the pane
// on the floor.
func Attach(cfg PaneConfig) (*Pane, error) {
	if cfg.Client == nil {
		return nil, errors.New("remote: PaneConfig.Client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mcfg := cfg.Mirror
	mcfg.Client = cfg.Client
	mcfg.PaneID = cfg.PaneID
	if mcfg.Clock == nil {
		mcfg.Clock = cfg.Clock
	}
	if mcfg.Logger == nil {
		mcfg.Logger = logger
	}
	mirror, err := NewMirror(mcfg)
	if err != nil {
		return nil, err
	}
	p := &Pane{
		client: cfg.Client,
		logger: logger,
		paneID: cfg.PaneID,
		tabID:  cfg.TabID,
		mirror: mirror,
	}
	p.batcher = newMouseBatcher(logger, func(ctx context.Context, events []pane.MouseEvent) error {
		p.mirror.NoteSend()
		return p.client.SendMouseEvents(ctx, p.paneID, events)
	})
	cfg.Client.Attach(cfg.PaneID, p.handlePush)
	return p, nil
}

// Detach unregisters the proxy. The mirror keeps its last contents
// for display with a disconnected indicator.
func (p *Pane) Detach() {
	p.mu.Lock()
	p.detached = true
	p.mu.Unlock()
	p.client.Detach(p.paneID)
}

// Detached reports whether the proxy no longer tracks the remote
// pane.
func (p *Pane) Detached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detached || p.mirror.Dead()
}

// Mirror exposes the pane's predictive screen mirror.
func (p *Pane) Mirror() *Mirror { return p.mirror }

// ID returns the remote pane id.
func (p *Pane) ID() pane.PaneID { return p.paneID }

func (p *Pane) handlePush(msg protocol.Message) {
	if _, ok := msg.(*protocol.PaneRemoved); ok {
		p.mu.Lock()
		p.detached = true
		p.mu.Unlock()
	}
	p.mirror.HandlePush(msg)
}

func (p *Pane) guard() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detached {
		return ErrDetached
	}
	return nil
}

// Write sends raw bytes to the pane's input. It returns once the
// daemon accepts the bytes; local echo does not wait for that.
func (p *Pane) Write(ctx context.Context, data []byte) error {
	if err := p.guard(); err != nil {
		return err
	}
	p.mirror.NoteSend()
	return p.client.WriteToPane(ctx, p.paneID, data)
}

// SendPaste sends text as a paste.
func (p *Pane) SendPaste(ctx context.Context, text string) error {
	if err := p.guard(); err != nil {
		return err
	}
	p.mirror.NoteSend()
	return p.client.SendPaste(ctx, p.paneID, text)
}

// Resize changes the pane's size. A call with the current size is
// dropped without touching the wire; otherwise the mirror is
// invalidated and the new geometry is taken only from the next
// authoritative update.
func (p *Pane) Resize(ctx context.Context, size pane.TerminalSize) error {
	if err := p.guard(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.haveSize && p.lastSize == size {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	p.mirror.Invalidate()
	if err := p.client.Resize(ctx, p.tabID, p.paneID, size); err != nil {
		return err
	}
	p.mu.Lock()
	p.lastSize = size
	p.haveSize = true
	p.mu.Unlock()
	return nil
}

// KeyDown delivers one key press. The mirror applies a predicted echo
// under the minted serial before the request goes out; the eventual
// authoritative update covering that serial retires the prediction.
func (p *Pane) KeyDown(ctx context.Context, key pane.KeyCode, mods pane.Modifiers) error {
	if err := p.guard(); err != nil {
		return err
	}
	serial := p.mirror.PredictKey(key, mods)
	return p.client.SendKeyDown(ctx, p.paneID, serial, key, mods)
}

// MouseEvent queues one mouse event for batched dispatch. It returns
// immediately; transmission failures are logged, not surfaced, since
// the event may already be riding a batch with others.
func (p *Pane) MouseEvent(ctx context.Context, ev pane.MouseEvent) error {
	if err := p.guard(); err != nil {
		return err
	}
	p.batcher.add(ctx, ev)
	return nil
}

// Search scans the pane's scrollback. No prediction; a search result
// cannot be usefully guessed.
func (p *Pane) Search(ctx context.Context, pattern pane.Pattern) ([]pane.SearchResult, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	return p.client.SearchScrollback(ctx, p.paneID, pattern)
}

// SetZoomed toggles whether the pane fills its tab. Zoom state is
// authoritative-only, so the mirror is invalidated rather than
// guessed at.
func (p *Pane) SetZoomed(ctx context.Context, zoomed bool) error {
	if err := p.guard(); err != nil {
		return err
	}
	p.mirror.Invalidate()
	return p.client.SetPaneZoomed(ctx, p.tabID, p.paneID, zoomed)
}

// Kill terminates the process in the pane.
func (p *Pane) Kill(ctx context.Context) error {
	if err := p.guard(); err != nil {
		return err
	}
	return p.client.KillPane(ctx, p.paneID)
}
