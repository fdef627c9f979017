// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
	"github.com/glasspane/glasspane/session"
)

const (
	// DefaultCacheLines bounds the authoritative row cache.
	DefaultCacheLines = 1000

	// DefaultFetchRate is the stale-row refetch budget per second.
	DefaultFetchRate = 10.0

	// DefaultPollInterval is the base render-changes poll period. The
	// poll backs off exponentially to maxPollInterval while nothing
	// changes.
	DefaultPollInterval = 20 * time.Millisecond

	maxPollInterval = 30 * time.Second

	// tardyFloor is the minimum silence before the link counts as
	// tardy, regardless of how aggressive the poll interval is.
	tardyFloor = 3 * time.Second
)

// ErrPaneDead reports that the daemon declared the pane gone.
var ErrPaneDead = errors.New("remote: pane is dead")

// State classifies the mirror's trustworthiness for presentation.
type State uint8

const (
	// StateFresh means the mirror is believed accurate.
	StateFresh State = iota

	// StatePredicting means unconfirmed predictions are applied.
	StatePredicting

	// StateStale means the mirror was invalidated and rows await
	// mandatory refetch.
	StateStale

	// StateTardy means the link is responding unusually slowly. A
	// presentation signal only; it never affects correctness.
	StateTardy
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StatePredicting:
		return "predicting"
	case StateStale:
		return "stale"
	case StateTardy:
		return "tardy"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type lineState uint8

const (
	// lineFresh: authoritative content, current as far as we know.
	lineFresh lineState = iota

	// lineFetching: no trusted content; a fetch is in flight.
	lineFetching

	// lineFreshFetching: displayable but superseded content; a fetch
	// is in flight.
	lineFreshFetching

	// lineStale: content must be refetched before it is trustworthy.
	lineStale
)

type lineEntry struct {
	state      lineState
	line       pane.Line
	fetchStart time.Time
}

// predCell is one speculatively written cell, tagged with the input
// serial whose confirmation retires it.
type predCell struct {
	serial protocol.InputSerial
	row    pane.StableRowIndex
	col    uint32
	cell   pane.Cell
}

// MirrorConfig configures a Mirror.
type MirrorConfig struct {
	// Client is the session the pane lives on. Required.
	Client *session.Client

	// PaneID is the remote pane to mirror.
	PaneID pane.PaneID

	// Clock drives liveness and rate limiting. nil means real time.
	Clock clock.Clock

	// Logger receives drop-and-log events. nil means slog.Default().
	Logger *slog.Logger

	// CacheLines bounds the row cache. Zero means DefaultCacheLines.
	CacheLines int

	// FetchRate is the refetch budget in requests per second. Zero
	// means DefaultFetchRate.
	FetchRate float64

	// LocalEchoThreshold gates prediction: predictions engage only
	// once the measured round trip meets or exceeds it. Zero or
	// negative means predictions are always on.
	LocalEchoThreshold time.Duration

	// PollInterval is the base poll period. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	// OnClipboard, when set, receives SetClipboard pushes for the
	// pane. Text is nil when the selection is cleared.
	OnClipboard func(sel pane.ClipboardSelector, text *string)
}

// Mirror is the local, possibly speculative copy of one remote
// pane's screen. All methods are safe for concurrent use; mutations
// of one mirror are serialized by its lock, so an authoritative
// delta and a prediction can never interleave.
type Mirror struct {
	client        *session.Client
	clk           clock.Clock
	logger        *slog.Logger
	paneID        pane.PaneID
	limiter       *fetchLimiter
	images        *imageCache
	echoThreshold time.Duration
	basePoll      time.Duration
	onClipboard   func(pane.ClipboardSelector, *string)

	mu           sync.Mutex
	dims         pane.RenderableDimensions
	cursor       pane.CursorPosition
	title        string
	workingDir   string
	mouseGrabbed bool
	seqno        uint64
	dead         bool

	lines       *lru.Cache[pane.StableRowIndex, *lineEntry]
	predictions []predCell
	predRow     pane.StableRowIndex
	predCol     uint32

	nextSerial protocol.InputSerial
	confirmed  protocol.InputSerial
	sendTimes  map[protocol.InputSerial]time.Time
	rtt        time.Duration
	haveRTT    bool

	lastSend time.Time
	lastRecv time.Time
}

// NewMirror builds a mirror for one pane. The caller wires it to the
// session with client.Attach(id, m.HandlePush) and drives it with Run
// or explicit Poll calls.
func NewMirror(cfg MirrorConfig) (*Mirror, error) {
	if cfg.Client == nil {
		return nil, errors.New("remote: MirrorConfig.Client is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cacheLines := cfg.CacheLines
	if cacheLines <= 0 {
		cacheLines = DefaultCacheLines
	}
	fetchRate := cfg.FetchRate
	if fetchRate <= 0 {
		fetchRate = DefaultFetchRate
	}
	basePoll := cfg.PollInterval
	if basePoll <= 0 {
		basePoll = DefaultPollInterval
	}
	lines, err := lru.New[pane.StableRowIndex, *lineEntry](cacheLines)
	if err != nil {
		return nil, fmt.Errorf("remote: line cache: %w", err)
	}
	images, err := newImageCache(32)
	if err != nil {
		return nil, err
	}
	return &Mirror{
		client:        cfg.Client,
		clk:           clk,
		logger:        logger,
		paneID:        cfg.PaneID,
		limiter:       newFetchLimiter(clk, fetchRate),
		images:        images,
		echoThreshold: cfg.LocalEchoThreshold,
		basePoll:      basePoll,
		onClipboard:   cfg.OnClipboard,
		lines:         lines,
		sendTimes:     make(map[protocol.InputSerial]time.Time),
		lastRecv:      clk.Now(),
	}, nil
}

// Title returns the pane's last known title.
func (m *Mirror) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// WorkingDir returns the pane's last known working directory.
func (m *Mirror) WorkingDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workingDir
}

// Dimensions returns the geometry the mirror currently believes.
func (m *Mirror) Dimensions() pane.RenderableDimensions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dims
}

// Cursor returns the authoritative cursor position.
func (m *Mirror) Cursor() pane.CursorPosition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// MouseGrabbed reports whether the remote application captures mouse
// input, in which case local scrolling semantics differ.
func (m *Mirror) MouseGrabbed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouseGrabbed
}

// Dead reports whether the daemon declared the pane gone. A dead
// mirror keeps rendering its last contents; callers show an indicator
// rather than blanking.
func (m *Mirror) Dead() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dead
}

// RTT returns the latest measured round trip, if any input has been
// confirmed yet.
func (m *Mirror) RTT() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rtt, m.haveRTT
}

// State classifies the mirror right now. Stale wins over predicting;
// tardiness only shows when there is nothing more important to say.
func (m *Mirror) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleInViewportLocked() {
		return StateStale
	}
	if len(m.predictions) > 0 {
		return StatePredicting
	}
	if m.tardyLocked(m.clk.Now()) {
		return StateTardy
	}
	return StateFresh
}

// Tardy reports the presentation-only slow-link signal.
func (m *Mirror) Tardy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tardyLocked(m.clk.Now())
}

func (m *Mirror) tardyLocked(now time.Time) bool {
	threshold := m.basePoll
	if threshold < tardyFloor {
		threshold = tardyFloor
	}
	return m.lastSend.After(m.lastRecv) && now.Sub(m.lastRecv) > threshold
}

// NoteSend records user-input transmission time for the tardiness
// policy.
func (m *Mirror) NoteSend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSend = m.clk.Now()
}

// PredictKey mints the input serial for a key press and, when
// prediction is engaged, applies its expected echo to the overlay.
// The serial must be sent with the key so the authoritative update
// can confirm it.
func (m *Mirror) PredictKey(key pane.KeyCode, mods pane.Modifiers) protocol.InputSerial {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()
	m.nextSerial++
	serial := m.nextSerial
	m.sendTimes[serial] = now
	m.lastSend = now

	if mods&^pane.ModShift != 0 {
		// Modified keys rarely echo their character.
		return serial
	}
	m.applyPredictionLocked(serial, key)
	return serial
}

// applyPredictionLocked writes a prediction for serial, unless the
// serial is already covered by an authoritative update (input racing
// a resize) or prediction is suppressed.
func (m *Mirror) applyPredictionLocked(serial protocol.InputSerial, key pane.KeyCode) {
	if serial <= m.confirmed {
		m.logger.Debug("discarding stale prediction",
			"serial", uint64(serial), "confirmed", uint64(m.confirmed))
		return
	}
	if !m.predictionEngagedLocked() {
		return
	}
	echo := key.EchoText()
	if echo == "" {
		return
	}
	if m.passwordPromptLocked() {
		return
	}

	if len(m.predictions) == 0 {
		m.predRow = m.cursor.Y
		m.predCol = m.cursor.X
	}
	if echo == "\r\n" {
		m.predRow++
		m.predCol = 0
		// The line break itself needs no cell, but the serial must
		// still be retired by a confirmation; record a marker with no
		// visible content.
		m.predictions = append(m.predictions, predCell{serial: serial, row: -1})
		return
	}
	for _, r := range echo {
		m.predictions = append(m.predictions, predCell{
			serial: serial,
			row:    m.predRow,
			col:    m.predCol,
			cell: pane.Cell{
				Text:  string(r),
				Attrs: pane.CellAttributes{Underline: pane.UnderlineDouble},
			},
		})
		m.predCol++
	}
}

func (m *Mirror) predictionEngagedLocked() bool {
	if m.echoThreshold <= 0 {
		return true
	}
	return m.haveRTT && m.rtt >= m.echoThreshold
}

// passwordPromptLocked guesses whether the cursor row is a password
// prompt; echoing predictions into one would display what the host
// deliberately hides.
func (m *Mirror) passwordPromptLocked() bool {
	entry, ok := m.lines.Get(m.cursor.Y)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(entry.line.Text()), "sword")
}

// PredictionCount reports outstanding unconfirmed predictions.
func (m *Mirror) PredictionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	var last protocol.InputSerial
	for _, p := range m.predictions {
		if p.serial != last {
			n++
			last = p.serial
		}
	}
	return n
}

// ApplyDelta applies an authoritative update. The delta replaces
// local beliefs outright: geometry, cursor, bonus rows, and the
// prediction horizon all come from the daemon, never merged with
// speculation.
func (m *Mirror) ApplyDelta(d *protocol.GetPaneRenderChangesResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()
	m.lastRecv = now
	m.seqno = d.Seqno
	m.title = d.Title
	m.workingDir = d.WorkingDir
	m.mouseGrabbed = d.MouseGrabbed
	m.cursor = d.Cursor
	m.dims = d.Dimensions

	if d.Serial != nil {
		s := *d.Serial
		if s > m.confirmed {
			m.confirmed = s
		}
		if sent, ok := m.sendTimes[s]; ok {
			m.rtt = now.Sub(sent)
			m.haveRTT = true
		}
		for k := range m.sendTimes {
			if k <= s {
				delete(m.sendTimes, k)
			}
		}
		m.dropConfirmedPredictionsLocked()
	}

	for _, entry := range d.BonusLines {
		m.lines.Add(entry.Row, &lineEntry{state: lineFresh, line: entry.Line})
	}
	for _, rng := range d.DirtyLines {
		for row := rng.Start; row < rng.End; row++ {
			m.markStaleLocked(row)
		}
	}
}

// dropConfirmedPredictionsLocked retires every prediction whose
// serial the daemon has confirmed. Predictions never outlive their
// confirmation horizon.
func (m *Mirror) dropConfirmedPredictionsLocked() {
	kept := m.predictions[:0]
	for _, p := range m.predictions {
		if p.serial > m.confirmed {
			kept = append(kept, p)
		}
	}
	m.predictions = kept
	if len(m.predictions) == 0 {
		m.predRow = m.cursor.Y
		m.predCol = m.cursor.X
	}
}

func (m *Mirror) markStaleLocked(row pane.StableRowIndex) {
	if entry, ok := m.lines.Get(row); ok {
		switch entry.state {
		case lineFresh:
			entry.state = lineStale
		case lineFreshFetching, lineFetching:
			// Re-dirtied mid-fetch; the in-flight result must not
			// count as current when it lands.
			entry.state = lineStale
		}
		return
	}
	m.lines.Add(row, &lineEntry{state: lineStale})
}

// Invalidate discards every prediction and marks all cached rows
// stale. Resize and zoom make the whole cache semantically
// meaningless.
func (m *Mirror) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions = nil
	for _, row := range m.lines.Keys() {
		if entry, ok := m.lines.Get(row); ok {
			entry.state = lineStale
		}
	}
}

func (m *Mirror) markDeadLocked() {
	m.dead = true
}

// HandlePush routes a push for this pane. Invoked on the session's
// reader goroutine; keep it quick.
func (m *Mirror) HandlePush(msg protocol.Message) {
	switch d := msg.(type) {
	case *protocol.GetPaneRenderChangesResponse:
		m.ApplyDelta(d)
	case *protocol.PaneRemoved:
		m.mu.Lock()
		m.markDeadLocked()
		m.mu.Unlock()
	case *protocol.LivenessResponse:
		if !d.IsAlive {
			m.mu.Lock()
			m.markDeadLocked()
			m.mu.Unlock()
		}
	case *protocol.SetClipboard:
		if m.onClipboard != nil {
			m.onClipboard(d.Selector, d.Text)
		}
	case *protocol.PaneFocused:
		// Informational; nothing to mirror.
	default:
		m.logger.Debug("ignoring push", "ident", uint64(msg.Ident()))
	}
}

// Line returns the renderable content of one row with predictions
// overlaid, and whether that content is authoritative (no overlay,
// not stale).
func (m *Mirror) Line(row pane.StableRowIndex) (pane.Line, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lineLocked(row)
}

func (m *Mirror) lineLocked(row pane.StableRowIndex) (pane.Line, bool) {
	var line pane.Line
	authoritative := false
	if entry, ok := m.lines.Get(row); ok {
		line = pane.Line{Cells: append([]pane.Cell(nil), entry.line.Cells...), Wrapped: entry.line.Wrapped}
		authoritative = entry.state == lineFresh
	}
	for _, p := range m.predictions {
		if p.row != row {
			continue
		}
		for uint32(len(line.Cells)) <= p.col {
			line.Cells = append(line.Cells, pane.Cell{Text: " "})
		}
		line.Cells[p.col] = p.cell
		authoritative = false
	}
	return line, authoritative
}

// Screen returns the viewport rows, top to bottom, with predictions
// overlaid.
func (m *Mirror) Screen() []pane.Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pane.Line, 0, m.dims.ViewportRows)
	for i := uint32(0); i < m.dims.ViewportRows; i++ {
		line, _ := m.lineLocked(m.dims.PhysicalTop + pane.StableRowIndex(i))
		out = append(out, line)
	}
	return out
}

// Image returns cached image data for a cell's content hash.
func (m *Mirror) Image(hash [32]byte) ([]byte, bool) {
	return m.images.get(hash)
}

func (m *Mirror) staleInViewportLocked() bool {
	for i := uint32(0); i < m.dims.ViewportRows; i++ {
		row := m.dims.PhysicalTop + pane.StableRowIndex(i)
		if entry, ok := m.lines.Get(row); ok && entry.state != lineFresh {
			return true
		}
	}
	return false
}

// Poll asks the daemon for an immediate delta and refetches stale
// viewport rows within the fetch budget. It reports whether anything
// new arrived, which the Run loop uses to reset its backoff.
func (m *Mirror) Poll(ctx context.Context) (bool, error) {
	delta, err := m.client.PollRenderChanges(ctx, m.paneID)
	if err != nil {
		var remote *session.RemoteError
		if errors.As(err, &remote) {
			m.mu.Lock()
			m.markDeadLocked()
			m.mu.Unlock()
			return false, ErrPaneDead
		}
		return false, err
	}
	changed := false
	if delta != nil {
		m.ApplyDelta(delta)
		changed = true
	}
	fetched, err := m.fetchStale(ctx)
	return changed || fetched, err
}

// fetchStale refetches stale viewport rows, at most one GetLines
// request per call and only while the limiter has budget. Denied or
// leftover rows simply stay stale for a later poll.
func (m *Mirror) fetchStale(ctx context.Context) (bool, error) {
	m.mu.Lock()
	var rows []pane.StableRowIndex
	for i := uint32(0); i < m.dims.ViewportRows; i++ {
		row := m.dims.PhysicalTop + pane.StableRowIndex(i)
		entry, ok := m.lines.Get(row)
		if !ok || entry.state != lineStale {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		m.mu.Unlock()
		return false, nil
	}
	if !m.limiter.allow() {
		m.mu.Unlock()
		return false, nil
	}
	now := m.clk.Now()
	for _, row := range rows {
		if entry, ok := m.lines.Get(row); ok {
			if len(entry.line.Cells) > 0 {
				entry.state = lineFreshFetching
			} else {
				entry.state = lineFetching
			}
			entry.fetchStart = now
		}
	}
	ranges := coalesceRows(rows)
	m.mu.Unlock()

	lines, err := m.client.GetLines(ctx, m.paneID, ranges)
	if err != nil {
		m.mu.Lock()
		for _, row := range rows {
			if entry, ok := m.lines.Get(row); ok && entry.state != lineStale {
				entry.state = lineStale
			}
		}
		m.mu.Unlock()
		return false, err
	}

	m.mu.Lock()
	for _, le := range lines {
		entry, ok := m.lines.Get(le.Row)
		if !ok {
			m.lines.Add(le.Row, &lineEntry{state: lineFresh, line: le.Line})
			continue
		}
		entry.line = le.Line
		// A row re-dirtied while the fetch was in flight stays
		// stale; this result is already outdated.
		if entry.state == lineFetching || entry.state == lineFreshFetching {
			entry.state = lineFresh
		}
	}
	missing := m.missingImagesLocked(lines)
	m.mu.Unlock()

	m.fetchImages(ctx, missing)
	return true, nil
}

type imageWant struct {
	row  pane.StableRowIndex
	col  uint32
	hash [32]byte
}

func (m *Mirror) missingImagesLocked(lines []protocol.LineEntry) []imageWant {
	var wants []imageWant
	for _, le := range lines {
		for col, cell := range le.Line.Cells {
			ref := cell.Attrs.Image
			if ref == nil {
				continue
			}
			if _, ok := m.images.get(ref.Hash); ok {
				continue
			}
			wants = append(wants, imageWant{row: le.Row, col: uint32(col), hash: ref.Hash})
		}
	}
	return wants
}

func (m *Mirror) fetchImages(ctx context.Context, wants []imageWant) {
	for _, w := range wants {
		data, err := m.client.GetImageCell(ctx, m.paneID, w.row, w.col, w.hash)
		if err != nil || len(data) == 0 {
			m.logger.Debug("image fetch failed", "hash", fmt.Sprintf("%x", w.hash[:4]), "error", err)
			continue
		}
		if err := m.images.insert(w.hash, data); err != nil {
			m.logger.Debug("image rejected", "error", err)
		}
	}
}

// Run polls until ctx ends, the connection dies, or the pane is
// declared dead. The interval starts at the base poll period and
// doubles while nothing changes, so idle panes cost almost nothing.
func (m *Mirror) Run(ctx context.Context) error {
	interval := m.basePoll
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.client.Done():
			return session.ErrTransportClosed
		case <-m.clk.After(interval):
		}
		changed, err := m.Poll(ctx)
		switch {
		case errors.Is(err, ErrPaneDead), errors.Is(err, session.ErrTransportClosed):
			return err
		case err != nil:
			m.logger.Debug("poll failed", "pane", uint64(m.paneID), "error", err)
		}
		if changed {
			interval = m.basePoll
		} else if interval < maxPollInterval {
			interval *= 2
			if interval > maxPollInterval {
				interval = maxPollInterval
			}
		}
	}
}

// coalesceRows turns a sorted row list into half-open ranges.
func coalesceRows(rows []pane.StableRowIndex) []protocol.RowRange {
	var out []protocol.RowRange
	for _, row := range rows {
		if n := len(out); n > 0 && out[n-1].End == row {
			out[n-1].End = row + 1
			continue
		}
		out = append(out, protocol.RowRange{Start: row, End: row + 1})
	}
	return out
}
