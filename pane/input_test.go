// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

import (
	"testing"

	"github.com/glasspane/glasspane/wire"
)

func TestKeyCodeRoundTrip(t *testing.T) {
	keys := []KeyCode{
		CharKey('h'),
		CharKey('é'),
		{Kind: KeyEnter},
		{Kind: KeyBackspace},
		{Kind: KeyUpArrow},
		{Kind: KeyFunction, Char: 5},
	}
	for _, k := range keys {
		data, err := wire.Marshal(k)
		if err != nil {
			t.Fatalf("marshal %+v: %v", k, err)
		}
		var out KeyCode
		if err := wire.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %+v: %v", k, err)
		}
		if out != k {
			t.Fatalf("got %+v, want %+v", out, k)
		}
	}
}

func TestKeyCodeBareVariantsCarryNoPayload(t *testing.T) {
	data, err := wire.Marshal(KeyCode{Kind: KeyEnter, Char: 'x'})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("bare variant encoded %d bytes: %x", len(data), data)
	}
	var out KeyCode
	if err := wire.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Char != 0 {
		t.Fatalf("payload leaked through bare variant: %+v", out)
	}
}

func TestMouseEventRoundTrip(t *testing.T) {
	events := []MouseEvent{
		{Kind: MouseMove, X: 10, Y: -3, Button: MouseButton{Kind: MouseButtonNone}},
		{Kind: MousePress, X: 0, Y: 0, Button: MouseButton{Kind: MouseButtonLeft}, Modifiers: ModCtrl | ModShift},
		{Kind: MouseRelease, X: 79, Y: 23, Button: MouseButton{Kind: MouseButtonWheelDown, Amount: 3}},
	}
	for _, ev := range events {
		data, err := wire.Marshal(ev)
		if err != nil {
			t.Fatalf("marshal %+v: %v", ev, err)
		}
		var out MouseEvent
		if err := wire.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %+v: %v", ev, err)
		}
		if out != ev {
			t.Fatalf("got %+v, want %+v", out, ev)
		}
	}
}

func TestPatternRoundTrip(t *testing.T) {
	for _, p := range []Pattern{
		{Kind: PatternCaseSensitive, Text: "needle"},
		{Kind: PatternCaseInsensitive, Text: "NeEdLe"},
		{Kind: PatternRegex, Text: `\bfoo\d+`},
	} {
		data, err := wire.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %+v: %v", p, err)
		}
		var out Pattern
		if err := wire.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %+v: %v", p, err)
		}
		if out != p {
			t.Fatalf("got %+v, want %+v", out, p)
		}
	}
}

func TestLineHelpers(t *testing.T) {
	l := LineFromText("hi")
	if got := l.Text(); got != "hi" {
		t.Fatalf("Text() = %q", got)
	}
	if !l.Equal(LineFromText("hi")) {
		t.Fatal("equal lines reported unequal")
	}
	if l.Equal(LineFromText("ho")) {
		t.Fatal("different lines reported equal")
	}

	pred := LineFromText("hi")
	pred.Cells[1].Attrs.Underline = UnderlineDouble
	if l.Equal(pred) {
		t.Fatal("attribute difference not detected")
	}

	img := LineFromText("x")
	img.Cells[0].Attrs.Image = &ImageRef{Width: 2, Height: 2}
	if l.Equal(img) || !img.Equal(img) {
		t.Fatal("image attribute comparison broken")
	}
}

func TestLineWireRoundTrip(t *testing.T) {
	in := Line{
		Cells: []Cell{
			{Text: "a"},
			{Text: "b", Attrs: CellAttributes{Underline: UnderlineDouble, Reverse: true}},
			{Text: "", Attrs: CellAttributes{Image: &ImageRef{Hash: [32]byte{1, 2, 3}, Width: 4, Height: 4}}},
		},
		Wrapped: true,
	}
	data, err := wire.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Line
	if err := wire.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(in) || out.Wrapped != in.Wrapped {
		t.Fatalf("got %+v, want %+v", out, in)
	}
	if out.Cells[2].Attrs.Image == nil || out.Cells[2].Attrs.Image.Hash != in.Cells[2].Attrs.Image.Hash {
		t.Fatalf("image ref lost: %+v", out.Cells[2])
	}
}
