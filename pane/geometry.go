// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

// StableRowIndex addresses a row relative to the start of scrollback.
// Unlike a viewport row number it does not shift as output scrolls, so
// it can name the same content before and after a round trip.
type StableRowIndex int64

// TerminalSize is the full geometry of a pane as the host sees it.
type TerminalSize struct {
	Rows        uint32
	Cols        uint32
	PixelWidth  uint32
	PixelHeight uint32
}

// RenderableDimensions is the geometry a local mirror currently
// believes is correct. It changes only through a local resize or zoom
// action or an authoritative update, never from a partial row fetch.
type RenderableDimensions struct {
	Cols           uint32
	ViewportRows   uint32
	ScrollbackRows uint32

	// PhysicalTop is the stable index of the first row of the
	// visible screen.
	PhysicalTop StableRowIndex

	// ScrollbackTop is the stable index of the oldest retained row.
	ScrollbackTop StableRowIndex
}

// CursorShape enumerates how the host wants the cursor drawn.
type CursorShape uint8

const (
	CursorShapeDefault CursorShape = iota
	CursorShapeBlock
	CursorShapeUnderline
	CursorShapeBar
)

// CursorPosition locates the cursor within a pane.
type CursorPosition struct {
	X       uint32
	Y       StableRowIndex
	Shape   CursorShape
	Visible bool
}

// ClipboardSelector names which clipboard a SetClipboard push targets.
type ClipboardSelector uint8

const (
	ClipboardSelectorClipboard ClipboardSelector = iota
	ClipboardSelectorPrimary
)
