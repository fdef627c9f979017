// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

import (
	"fmt"

	"github.com/glasspane/glasspane/wire"
)

// PatternKind discriminates Pattern variants. Wire values, fixed
// order.
type PatternKind uint32

const (
	PatternCaseSensitive PatternKind = iota
	PatternCaseInsensitive
	PatternRegex
)

// Pattern is a scrollback search query. Regex patterns are compiled
// on the host; an invalid expression comes back as an application
// error, not a transport failure.
type Pattern struct {
	Kind PatternKind
	Text string
}

// MarshalWire encodes the pattern as a tagged union.
func (p Pattern) MarshalWire(e *wire.Encoder) error {
	switch p.Kind {
	case PatternCaseSensitive, PatternCaseInsensitive, PatternRegex:
	default:
		return fmt.Errorf("pane: unknown pattern kind %d", p.Kind)
	}
	e.PutVariant(uint32(p.Kind))
	e.PutString(p.Text)
	return nil
}

// UnmarshalWire decodes the tagged union written by MarshalWire.
func (p *Pattern) UnmarshalWire(d *wire.Decoder) error {
	kind, err := d.Variant()
	if err != nil {
		return err
	}
	switch PatternKind(kind) {
	case PatternCaseSensitive, PatternCaseInsensitive, PatternRegex:
	default:
		return fmt.Errorf("pane: unknown pattern kind %d", kind)
	}
	p.Kind = PatternKind(kind)
	p.Text, err = d.String()
	return err
}

// SearchResult is one scrollback match, addressed by stable row
// indices so it stays valid as new output scrolls the viewport.
type SearchResult struct {
	StartY StableRowIndex
	StartX uint32
	EndY   StableRowIndex
	EndX   uint32
}
