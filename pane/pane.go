// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

import "context"

// PaneID identifies a pane on its host. IDs are opaque, stable for
// the pane's lifetime, and never reused while a reference is
// outstanding.
type PaneID uint64

// TabID identifies a tab on its host.
type TabID uint64

// WindowID identifies a window on its host.
type WindowID uint64

// Pane is the capability surface of one terminal pane. Implementations
// include a locally hosted pane and a remote proxy; both satisfy the
// same contract.
//
// Write and the input methods block only until the action is accepted
// for transmission, not until the host has processed it.
type Pane interface {
	ID() PaneID

	// Write sends raw bytes to the pane's input.
	Write(ctx context.Context, data []byte) error

	// SendPaste sends text with bracketed-paste framing where the
	// application has enabled it.
	SendPaste(ctx context.Context, text string) error

	// Resize changes the pane's size. Redundant calls with the
	// current size are dropped.
	Resize(ctx context.Context, size TerminalSize) error

	// KeyDown delivers one key press.
	KeyDown(ctx context.Context, key KeyCode, mods Modifiers) error

	// MouseEvent delivers one mouse event. Events may be coalesced
	// into batches before reaching the host.
	MouseEvent(ctx context.Context, ev MouseEvent) error

	// Search scans the scrollback for pattern and returns the
	// matches, most recent first.
	Search(ctx context.Context, pattern Pattern) ([]SearchResult, error)

	// SetZoomed toggles whether the pane fills its tab.
	SetZoomed(ctx context.Context, zoomed bool) error

	// Kill terminates the process in the pane.
	Kill(ctx context.Context) error
}
