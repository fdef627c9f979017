// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"github.com/glasspane/glasspane/pane"
)

// Version is the protocol compatibility number. Both ends exchange it
// via GetCodecVersion before anything else; a mismatch is fatal to
// the connection rather than a source of silent misdecodes.
const Version uint64 = 1

// Ident is a message type number. The values are part of the wire
// format; gaps are retired message types that must not be reused.
type Ident uint64

const (
	IdentErrorResponse                Ident = 0
	IdentPing                         Ident = 1
	IdentPong                         Ident = 2
	IdentListPanes                    Ident = 3
	IdentListPanesResponse            Ident = 4
	IdentWriteToPane                  Ident = 9
	IdentUnitResponse                 Ident = 10
	IdentSendKeyDown                  Ident = 11
	IdentSendMouseEvent               Ident = 12
	IdentSendPaste                    Ident = 13
	IdentResize                       Ident = 14
	IdentSetClipboard                 Ident = 20
	IdentGetLines                     Ident = 22
	IdentGetLinesResponse             Ident = 23
	IdentGetPaneRenderChanges         Ident = 24
	IdentGetPaneRenderChangesResponse Ident = 25
	IdentGetCodecVersion              Ident = 26
	IdentGetCodecVersionResponse      Ident = 27
	IdentLivenessResponse             Ident = 30
	IdentSearchScrollbackRequest      Ident = 31
	IdentSearchScrollbackResponse     Ident = 32
	IdentSetPaneZoomed                Ident = 33
	IdentKillPane                     Ident = 35
	IdentPaneRemoved                  Ident = 37
	IdentGetImageCell                 Ident = 46
	IdentGetImageCellResponse         Ident = 47
	IdentPaneFocused                  Ident = 53
)

// Message is one protocol message. The concrete type determines the
// ident; the payload is the struct's wire encoding.
type Message interface {
	Ident() Ident
}

// PaneScoped is implemented by messages addressed to a specific pane.
// Pushes are routed to their pane's subscriber through this.
type PaneScoped interface {
	Message
	Pane() pane.PaneID
}

// InputSerial orders a user's input events against the authoritative
// updates that eventually reflect them. Serials are per pane and
// strictly increasing; zero means "no input has been observed".
type InputSerial uint64

// ErrorResponse carries an application-level failure for a request.
type ErrorResponse struct {
	Reason string
}

// Ping checks connection liveness and measures round-trip time.
type Ping struct{}

// Pong answers a Ping.
type Pong struct{}

// ListPanes asks for every pane on the daemon.
type ListPanes struct{}

// PaneEntry describes one pane in a ListPanesResponse.
type PaneEntry struct {
	PaneID     pane.PaneID
	TabID      pane.TabID
	WindowID   pane.WindowID
	Title      string
	Size       pane.TerminalSize
	WorkingDir string
	IsZoomed   bool
}

// ListPanesResponse enumerates the daemon's panes.
type ListPanesResponse struct {
	Panes []PaneEntry
}

// WriteToPane sends raw bytes to a pane's input.
type WriteToPane struct {
	PaneID pane.PaneID
	Data   []byte
}

// UnitResponse acknowledges a request with no result data.
type UnitResponse struct{}

// SendKeyDown delivers one key press, tagged with the input serial
// that the eventual authoritative update will confirm.
type SendKeyDown struct {
	PaneID    pane.PaneID
	Serial    InputSerial
	Key       pane.KeyCode
	Modifiers pane.Modifiers
}

// SendMouseEvent delivers a batch of mouse events in arrival order.
// The client keeps at most one of these in flight per pane and drains
// its queue into the next one, so bursts coalesce.
type SendMouseEvent struct {
	PaneID pane.PaneID
	Events []pane.MouseEvent
}

// SendPaste sends text as a paste, bracketed where the application
// has enabled it.
type SendPaste struct {
	PaneID pane.PaneID
	Text   string
}

// Resize changes a pane's size.
type Resize struct {
	TabID  pane.TabID
	PaneID pane.PaneID
	Size   pane.TerminalSize
}

// SetClipboard is pushed when a pane's application sets the clipboard
// via an escape sequence. Text is nil to clear the selection.
type SetClipboard struct {
	PaneID   pane.PaneID
	Selector pane.ClipboardSelector
	Text     *string
}

// RowRange is a half-open range of stable row indices.
type RowRange struct {
	Start pane.StableRowIndex
	End   pane.StableRowIndex
}

// LineEntry pairs a stable row index with its content.
type LineEntry struct {
	Row  pane.StableRowIndex
	Line pane.Line
}

// GetLines fetches the content of the requested row ranges.
type GetLines struct {
	PaneID pane.PaneID
	Ranges []RowRange
}

// GetLinesResponse carries the fetched rows. Rows that no longer
// exist (scrolled out of retention) are simply absent.
type GetLinesResponse struct {
	PaneID pane.PaneID
	Lines  []LineEntry
}

// GetPaneRenderChanges subscribes the sender to render updates for a
// pane and requests an immediate delta.
type GetPaneRenderChanges struct {
	PaneID pane.PaneID
}

// GetPaneRenderChangesResponse is the authoritative screen delta,
// pushed whenever a pane's content changes. Serial is the highest
// input serial the daemon had applied when the delta was computed;
// nil when no input has ever been received for the pane.
type GetPaneRenderChangesResponse struct {
	PaneID       pane.PaneID
	Serial       *InputSerial
	Seqno        uint64
	MouseGrabbed bool
	Cursor       pane.CursorPosition
	Dimensions   pane.RenderableDimensions
	Title        string
	WorkingDir   string

	// DirtyLines are rows whose cached content is now wrong and
	// must be refetched before display.
	DirtyLines []RowRange

	// BonusLines are rows the daemon pushed along with the delta so
	// the client need not fetch them.
	BonusLines []LineEntry
}

// GetCodecVersion opens the version handshake.
type GetCodecVersion struct{}

// GetCodecVersionResponse answers with the daemon's protocol version
// and human-readable build string.
type GetCodecVersionResponse struct {
	CodecVersion  uint64
	VersionString string
}

// LivenessResponse answers GetPaneRenderChanges for a pane that can
// produce no delta, reporting whether the pane still exists.
type LivenessResponse struct {
	PaneID  pane.PaneID
	IsAlive bool
}

// SearchScrollbackRequest searches a pane's scrollback.
type SearchScrollbackRequest struct {
	PaneID  pane.PaneID
	Pattern pane.Pattern
}

// SearchScrollbackResponse carries the matches, most recent first.
type SearchScrollbackResponse struct {
	Results []pane.SearchResult
}

// SetPaneZoomed toggles whether a pane fills its tab.
type SetPaneZoomed struct {
	TabID  pane.TabID
	PaneID pane.PaneID
	Zoomed bool
}

// KillPane terminates the process in a pane.
type KillPane struct {
	PaneID pane.PaneID
}

// PaneRemoved is pushed when a pane ceases to exist.
type PaneRemoved struct {
	PaneID pane.PaneID
}

// GetImageCell fetches image data by content hash.
type GetImageCell struct {
	PaneID   pane.PaneID
	Row      pane.StableRowIndex
	Col      uint32
	DataHash [32]byte
}

// GetImageCellResponse carries the image bytes, empty when the hash
// is unknown to the daemon.
type GetImageCellResponse struct {
	DataHash [32]byte
	Data     []byte
}

// PaneFocused is pushed when a pane gains focus on the daemon side.
type PaneFocused struct {
	PaneID pane.PaneID
}

// Invalid stands in for a frame whose ident this build does not
// know. It is delivered, logged, and otherwise ignored.
type Invalid struct {
	RawIdent Ident
	Payload  []byte
}

func (*ErrorResponse) Ident() Ident                { return IdentErrorResponse }
func (*Ping) Ident() Ident                         { return IdentPing }
func (*Pong) Ident() Ident                         { return IdentPong }
func (*ListPanes) Ident() Ident                    { return IdentListPanes }
func (*ListPanesResponse) Ident() Ident            { return IdentListPanesResponse }
func (*WriteToPane) Ident() Ident                  { return IdentWriteToPane }
func (*UnitResponse) Ident() Ident                 { return IdentUnitResponse }
func (*SendKeyDown) Ident() Ident                  { return IdentSendKeyDown }
func (*SendMouseEvent) Ident() Ident               { return IdentSendMouseEvent }
func (*SendPaste) Ident() Ident                    { return IdentSendPaste }
func (*Resize) Ident() Ident                       { return IdentResize }
func (*SetClipboard) Ident() Ident                 { return IdentSetClipboard }
func (*GetLines) Ident() Ident                     { return IdentGetLines }
func (*GetLinesResponse) Ident() Ident             { return IdentGetLinesResponse }
func (*GetPaneRenderChanges) Ident() Ident         { return IdentGetPaneRenderChanges }
func (*GetPaneRenderChangesResponse) Ident() Ident { return IdentGetPaneRenderChangesResponse }
func (*GetCodecVersion) Ident() Ident              { return IdentGetCodecVersion }
func (*GetCodecVersionResponse) Ident() Ident      { return IdentGetCodecVersionResponse }
func (*LivenessResponse) Ident() Ident             { return IdentLivenessResponse }
func (*SearchScrollbackRequest) Ident() Ident      { return IdentSearchScrollbackRequest }
func (*SearchScrollbackResponse) Ident() Ident     { return IdentSearchScrollbackResponse }
func (*SetPaneZoomed) Ident() Ident                { return IdentSetPaneZoomed }
func (*KillPane) Ident() Ident                     { return IdentKillPane }
func (*PaneRemoved) Ident() Ident                  { return IdentPaneRemoved }
func (*GetImageCell) Ident() Ident                 { return IdentGetImageCell }
func (*GetImageCellResponse) Ident() Ident         { return IdentGetImageCellResponse }
func (*PaneFocused) Ident() Ident                  { return IdentPaneFocused }
func (m *Invalid) Ident() Ident                    { return m.RawIdent }

func (m *GetPaneRenderChangesResponse) Pane() pane.PaneID { return m.PaneID }
func (m *SetClipboard) Pane() pane.PaneID                 { return m.PaneID }
func (m *LivenessResponse) Pane() pane.PaneID             { return m.PaneID }
func (m *PaneRemoved) Pane() pane.PaneID                  { return m.PaneID }
func (m *PaneFocused) Pane() pane.PaneID                  { return m.PaneID }
func (m *GetLinesResponse) Pane() pane.PaneID             { return m.PaneID }

// newMessage returns a zero value for ident, or nil for idents this
// build does not know.
func newMessage(ident Ident) Message {
	switch ident {
	case IdentErrorResponse:
		return &ErrorResponse{}
	case IdentPing:
		return &Ping{}
	case IdentPong:
		return &Pong{}
	case IdentListPanes:
		return &ListPanes{}
	case IdentListPanesResponse:
		return &ListPanesResponse{}
	case IdentWriteToPane:
		return &WriteToPane{}
	case IdentUnitResponse:
		return &UnitResponse{}
	case IdentSendKeyDown:
		return &SendKeyDown{}
	case IdentSendMouseEvent:
		return &SendMouseEvent{}
	case IdentSendPaste:
		return &SendPaste{}
	case IdentResize:
		return &Resize{}
	case IdentSetClipboard:
		return &SetClipboard{}
	case IdentGetLines:
		return &GetLines{}
	case IdentGetLinesResponse:
		return &GetLinesResponse{}
	case IdentGetPaneRenderChanges:
		return &GetPaneRenderChanges{}
	case IdentGetPaneRenderChangesResponse:
		return &GetPaneRenderChangesResponse{}
	case IdentGetCodecVersion:
		return &GetCodecVersion{}
	case IdentGetCodecVersionResponse:
		return &GetCodecVersionResponse{}
	case IdentLivenessResponse:
		return &LivenessResponse{}
	case IdentSearchScrollbackRequest:
		return &SearchScrollbackRequest{}
	case IdentSearchScrollbackResponse:
		return &SearchScrollbackResponse{}
	case IdentSetPaneZoomed:
		return &SetPaneZoomed{}
	case IdentKillPane:
		return &KillPane{}
	case IdentPaneRemoved:
		return &PaneRemoved{}
	case IdentGetImageCell:
		return &GetImageCell{}
	case IdentGetImageCellResponse:
		return &GetImageCellResponse{}
	case IdentPaneFocused:
		return &PaneFocused{}
	default:
		return nil
	}
}

// IsUserInput reports whether a request represents direct user
// activity. The liveness policy treats these sends as the reference
// point for deciding whether the link has gone tardy.
func IsUserInput(m Message) bool {
	switch m.(type) {
	case *WriteToPane, *SendKeyDown, *SendMouseEvent, *SendPaste:
		return true
	default:
		return false
	}
}
