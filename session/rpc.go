// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"

	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
)

func (c *Client) callUnit(ctx context.Context, req protocol.Message) error {
	resp, err := c.Call(ctx, req)
	if err != nil {
		return err
	}
	if _, ok := resp.(*protocol.UnitResponse); !ok {
		return &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return nil
}

// Handshake verifies protocol compatibility. It must be the first
// call on a fresh connection; anything else against an incompatible
// daemon risks a misdecode instead of a clean error.
func (c *Client) Handshake(ctx context.Context) error {
	resp, err := c.Call(ctx, &protocol.GetCodecVersion{})
	if err != nil {
		return err
	}
	v, ok := resp.(*protocol.GetCodecVersionResponse)
	if !ok {
		return &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	if v.CodecVersion != protocol.Version {
		return &VersionMismatchError{
			Client: protocol.Version,
			Daemon: v.CodecVersion,
			Build:  v.VersionString,
		}
	}
	return nil
}

// Ping round-trips a liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Call(ctx, &protocol.Ping{})
	if err != nil {
		return err
	}
	if _, ok := resp.(*protocol.Pong); !ok {
		return &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return nil
}

// ListPanes enumerates the daemon's panes.
func (c *Client) ListPanes(ctx context.Context) ([]protocol.PaneEntry, error) {
	resp, err := c.Call(ctx, &protocol.ListPanes{})
	if err != nil {
		return nil, err
	}
	list, ok := resp.(*protocol.ListPanesResponse)
	if !ok {
		return nil, &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return list.Panes, nil
}

// WriteToPane sends raw bytes to a pane's input.
func (c *Client) WriteToPane(ctx context.Context, id pane.PaneID, data []byte) error {
	return c.callUnit(ctx, &protocol.WriteToPane{PaneID: id, Data: data})
}

// SendKeyDown delivers one key press tagged with its input serial.
func (c *Client) SendKeyDown(ctx context.Context, id pane.PaneID, serial protocol.InputSerial, key pane.KeyCode, mods pane.Modifiers) error {
	return c.callUnit(ctx, &protocol.SendKeyDown{
		PaneID:    id,
		Serial:    serial,
		Key:       key,
		Modifiers: mods,
	})
}

// SendMouseEvents delivers a batch of mouse events in order.
func (c *Client) SendMouseEvents(ctx context.Context, id pane.PaneID, events []pane.MouseEvent) error {
	return c.callUnit(ctx, &protocol.SendMouseEvent{PaneID: id, Events: events})
}

// SendPaste sends text as a paste.
func (c *Client) SendPaste(ctx context.Context, id pane.PaneID, text string) error {
	return c.callUnit(ctx, &protocol.SendPaste{PaneID: id, Text: text})
}

// Resize changes a pane's size.
func (c *Client) Resize(ctx context.Context, tab pane.TabID, id pane.PaneID, size pane.TerminalSize) error {
	return c.callUnit(ctx, &protocol.Resize{TabID: tab, PaneID: id, Size: size})
}

// SetPaneZoomed toggles whether a pane fills its tab.
func (c *Client) SetPaneZoomed(ctx context.Context, tab pane.TabID, id pane.PaneID, zoomed bool) error {
	return c.callUnit(ctx, &protocol.SetPaneZoomed{TabID: tab, PaneID: id, Zoomed: zoomed})
}

// SetClipboard writes a pane's clipboard selection. A nil text clears
// it.
func (c *Client) SetClipboard(ctx context.Context, id pane.PaneID, sel pane.ClipboardSelector, text *string) error {
	return c.callUnit(ctx, &protocol.SetClipboard{PaneID: id, Selector: sel, Text: text})
}

// KillPane terminates the process in a pane.
func (c *Client) KillPane(ctx context.Context, id pane.PaneID) error {
	return c.callUnit(ctx, &protocol.KillPane{PaneID: id})
}

// GetLines fetches row content for the given stable ranges.
func (c *Client) GetLines(ctx context.Context, id pane.PaneID, ranges []protocol.RowRange) ([]protocol.LineEntry, error) {
	resp, err := c.Call(ctx, &protocol.GetLines{PaneID: id, Ranges: ranges})
	if err != nil {
		return nil, err
	}
	lines, ok := resp.(*protocol.GetLinesResponse)
	if !ok {
		return nil, &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return lines.Lines, nil
}

// PollRenderChanges requests an immediate delta for a pane. The
// answer is either the delta itself, nil when the daemon responded
// with a bare liveness report for a still-living pane, or
// ErrPaneDead when the pane is gone.
func (c *Client) PollRenderChanges(ctx context.Context, id pane.PaneID) (*protocol.GetPaneRenderChangesResponse, error) {
	resp, err := c.Call(ctx, &protocol.GetPaneRenderChanges{PaneID: id})
	if err != nil {
		return nil, err
	}
	switch m := resp.(type) {
	case *protocol.GetPaneRenderChangesResponse:
		return m, nil
	case *protocol.LivenessResponse:
		if !m.IsAlive {
			return nil, &RemoteError{Reason: fmt.Sprintf("pane %d is dead", id)}
		}
		return nil, nil
	default:
		return nil, &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
}

// SearchScrollback searches a pane's scrollback.
func (c *Client) SearchScrollback(ctx context.Context, id pane.PaneID, pattern pane.Pattern) ([]pane.SearchResult, error) {
	resp, err := c.Call(ctx, &protocol.SearchScrollbackRequest{PaneID: id, Pattern: pattern})
	if err != nil {
		return nil, err
	}
	results, ok := resp.(*protocol.SearchScrollbackResponse)
	if !ok {
		return nil, &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return results.Results, nil
}

// GetImageCell fetches image data by content hash.
func (c *Client) GetImageCell(ctx context.Context, id pane.PaneID, row pane.StableRowIndex, col uint32, hash [32]byte) ([]byte, error) {
	resp, err := c.Call(ctx, &protocol.GetImageCell{
		PaneID:   id,
		Row:      row,
		Col:      col,
		DataHash: hash,
	})
	if err != nil {
		return nil, err
	}
	img, ok := resp.(*protocol.GetImageCellResponse)
	if !ok {
		return nil, &UnexpectedResponseError{Got: fmt.Sprintf("%T", resp)}
	}
	return img.Data, nil
}
