// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package pane

import (
	"fmt"

	"github.com/glasspane/glasspane/wire"
)

// Modifiers is a bitset of modifier keys held during an input event.
type Modifiers uint16

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
)

// KeyKind discriminates KeyCode variants. The numeric values are part
// of the wire format and must not be reordered.
type KeyKind uint32

const (
	KeyChar KeyKind = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUpArrow
	KeyDownArrow
	KeyLeftArrow
	KeyRightArrow
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyFunction
)

// KeyCode is one key press. Char carries the rune for KeyChar and the
// function key number for KeyFunction; it is ignored otherwise.
type KeyCode struct {
	Kind KeyKind
	Char rune
}

// CharKey returns the KeyCode for a printable rune.
func CharKey(r rune) KeyCode { return KeyCode{Kind: KeyChar, Char: r} }

// MarshalWire encodes the key as a tagged union.
func (k KeyCode) MarshalWire(e *wire.Encoder) error {
	e.PutVariant(uint32(k.Kind))
	switch k.Kind {
	case KeyChar, KeyFunction:
		e.PutUvarint(uint64(k.Char))
	case KeyEnter, KeyEscape, KeyTab, KeyBackspace, KeyDelete,
		KeyUpArrow, KeyDownArrow, KeyLeftArrow, KeyRightArrow,
		KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
	default:
		return fmt.Errorf("pane: unknown key kind %d", k.Kind)
	}
	return nil
}

// UnmarshalWire decodes the tagged union written by MarshalWire.
func (k *KeyCode) UnmarshalWire(d *wire.Decoder) error {
	kind, err := d.Variant()
	if err != nil {
		return err
	}
	k.Kind = KeyKind(kind)
	k.Char = 0
	switch k.Kind {
	case KeyChar, KeyFunction:
		v, err := d.Uvarint()
		if err != nil {
			return err
		}
		k.Char = rune(v)
	case KeyEnter, KeyEscape, KeyTab, KeyBackspace, KeyDelete,
		KeyUpArrow, KeyDownArrow, KeyLeftArrow, KeyRightArrow,
		KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
	default:
		return fmt.Errorf("pane: unknown key kind %d", kind)
	}
	return nil
}

// EchoText returns the text a local terminal would echo for this key,
// or "" if the effect cannot be usefully guessed. Predictions are
// only applied for keys with a non-empty echo.
func (k KeyCode) EchoText() string {
	switch k.Kind {
	case KeyChar:
		return string(k.Char)
	case KeyEnter:
		return "\r\n"
	case KeyTab:
		return "\t"
	default:
		return ""
	}
}

// MouseEventKind discriminates mouse event flavors.
type MouseEventKind uint8

const (
	MouseMove MouseEventKind = iota
	MousePress
	MouseRelease
)

// MouseButtonKind discriminates MouseButton variants. Wire values,
// fixed order.
type MouseButtonKind uint32

const (
	MouseButtonNone MouseButtonKind = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
	MouseButtonWheelUp
	MouseButtonWheelDown
)

// MouseButton is the button involved in a mouse event. Amount carries
// the scroll delta for the wheel variants and is ignored otherwise.
type MouseButton struct {
	Kind   MouseButtonKind
	Amount uint32
}

// MarshalWire encodes the button as a tagged union.
func (b MouseButton) MarshalWire(e *wire.Encoder) error {
	e.PutVariant(uint32(b.Kind))
	switch b.Kind {
	case MouseButtonWheelUp, MouseButtonWheelDown:
		e.PutUvarint(uint64(b.Amount))
	case MouseButtonNone, MouseButtonLeft, MouseButtonMiddle, MouseButtonRight:
	default:
		return fmt.Errorf("pane: unknown mouse button kind %d", b.Kind)
	}
	return nil
}

// UnmarshalWire decodes the tagged union written by MarshalWire.
func (b *MouseButton) UnmarshalWire(d *wire.Decoder) error {
	kind, err := d.Variant()
	if err != nil {
		return err
	}
	b.Kind = MouseButtonKind(kind)
	b.Amount = 0
	switch b.Kind {
	case MouseButtonWheelUp, MouseButtonWheelDown:
		v, err := d.Uvarint()
		if err != nil {
			return err
		}
		if v > 1<<32-1 {
			return wire.ErrNumberOutOfRange
		}
		b.Amount = uint32(v)
	case MouseButtonNone, MouseButtonLeft, MouseButtonMiddle, MouseButtonRight:
	default:
		return fmt.Errorf("pane: unknown mouse button kind %d", kind)
	}
	return nil
}

// MouseEvent is one raw mouse event in pane cell coordinates. Y may
// be negative when the viewport is scrolled into history.
type MouseEvent struct {
	Kind      MouseEventKind
	X         uint32
	Y         int32
	Button    MouseButton
	Modifiers Modifiers
}
