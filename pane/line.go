// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

// Underline enumerates the underline styles a cell can carry. A
// predicted cell is rendered with UnderlineDouble so speculative
// content is visually distinguishable until confirmed.
type Underline uint8

const (
	UnderlineNone Underline = iota
	UnderlineSingle
	UnderlineDouble
)

// ImageRef points at image data attached to a cell. The data itself
// travels separately, fetched by hash and cached, so a screen full of
// the same image costs one transfer.
type ImageRef struct {
	// Hash is the BLAKE3 digest of the image data.
	Hash [32]byte

	Width  uint32
	Height uint32
}

// CellAttributes is the subset of presentation state the mirror
// tracks per cell.
type CellAttributes struct {
	Underline Underline
	Reverse   bool
	Image     *ImageRef
}

// Cell is one grid position: a grapheme cluster plus attributes. Text
// is empty for the trailing half of a double-width cell.
type Cell struct {
	Text  string
	Attrs CellAttributes
}

// Line is one row of a pane's screen or scrollback.
type Line struct {
	Cells []Cell

	// Wrapped marks a line that continues onto the next row rather
	// than ending in a hard newline.
	Wrapped bool
}

// Equal reports whether two lines have identical content and
// attributes.
func (l Line) Equal(other Line) bool {
	if l.Wrapped != other.Wrapped || len(l.Cells) != len(other.Cells) {
		return false
	}
	for i := range l.Cells {
		a, b := l.Cells[i], other.Cells[i]
		if a.Text != b.Text ||
			a.Attrs.Underline != b.Attrs.Underline ||
			a.Attrs.Reverse != b.Attrs.Reverse {
			return false
		}
		ai, bi := a.Attrs.Image, b.Attrs.Image
		switch {
		case ai == nil && bi == nil:
		case ai == nil || bi == nil:
			return false
		case *ai != *bi:
			return false
		}
	}
	return true
}

// Text returns the line's visible text with attributes stripped.
func (l Line) Text() string {
	var n int
	for _, c := range l.Cells {
		n += len(c.Text)
	}
	out := make([]byte, 0, n)
	for _, c := range l.Cells {
		out = append(out, c.Text...)
	}
	return string(out)
}

// LineFromText builds a plain line, one cell per rune. Useful for
// tests and for predicted echo of simple input.
func LineFromText(s string) Line {
	var cells []Cell
	for _, r := range s {
		cells = append(cells, Cell{Text: string(r)})
	}
	return Line{Cells: cells}
}
