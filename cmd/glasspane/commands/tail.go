// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/remote"
	"github.com/glasspane/glasspane/session"
)

const redrawInterval = 50 * time.Millisecond

func tailCommand() *cli.Command {
	var flags clientFlags
	var paneID uint64
	var readOnly bool
	return &cli.Command{
		Name:    "tail",
		Summary: "mirror a pane's screen locally",
		Description: `tail attaches to a pane and mirrors its screen, applying render
deltas as they arrive and predicting the echo of typed keys before
the daemon confirms them. Predicted cells are drawn underlined and
are replaced by authoritative content as it comes back. When the
connection goes quiet the header dims.

Press ctrl-c to detach. With --read-only, keystrokes are not
forwarded.`,
		Usage: "glasspane tail --pane <id> [flags]",
		Examples: []cli.Example{
			{Description: "Watch pane 3 without sending input", Command: "glasspane tail --pane 3 --read-only"},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("tail", pflag.ContinueOnError)
			flags.register(fs)
			fs.Uint64Var(&paneID, "pane", 0, "target pane id (required)")
			fs.BoolVar(&readOnly, "read-only", false, "do not forward keystrokes")
			return fs
		},
		Run: func(args []string) error {
			return runTail(&flags, pane.PaneID(paneID), readOnly)
		},
	}
}

func runTail(flags *clientFlags, id pane.PaneID, readOnly bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, cfg, err := flags.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	p, err := remote.Attach(remote.PaneConfig{
		Client: client,
		PaneID: id,
		Logger: flags.logger(),
		Mirror: remote.MirrorConfig{
			CacheLines:         cfg.CacheLines,
			FetchRate:          cfg.PrefetchRate,
			LocalEchoThreshold: cfg.LocalEchoThreshold.Std(),
			PollInterval:       cfg.PollInterval.Std(),
		},
	})
	if err != nil {
		return err
	}
	defer p.Detach()

	runErr := make(chan error, 1)
	go func() { runErr <- p.Mirror().Run(ctx) }()

	stdinFd := int(os.Stdin.Fd())
	interactive := !readOnly && term.IsTerminal(stdinFd)
	if interactive {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("tail: raw mode: %w", err)
		}
		defer term.Restore(stdinFd, oldState)
		go forwardKeys(ctx, cancel, p)
	}

	out := termenv.NewOutput(os.Stdout)
	out.AltScreen()
	out.HideCursor()
	defer func() {
		out.ShowCursor()
		out.ExitAltScreen()
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-runErr:
			if errors.Is(err, remote.ErrPaneDead) {
				return fmt.Errorf("pane %d closed", id)
			}
			if errors.Is(err, session.ErrTransportClosed) {
				return fmt.Errorf("connection lost: %w", client.Err())
			}
			return err
		case <-ticker.C:
			drawFrame(out, p)
		}
	}
}

func drawFrame(out *termenv.Output, p *remote.Pane) {
	m := p.Mirror()
	var b strings.Builder

	header := fmt.Sprintf(" %s  [%s]", m.Title(), m.State())
	if rtt, ok := m.RTT(); ok {
		header += fmt.Sprintf("  rtt %v", rtt.Round(time.Millisecond))
	}
	hs := out.String(header).Reverse()
	if m.Tardy() || p.Detached() {
		hs = hs.Faint()
	}
	b.WriteString(hs.String())
	b.WriteString("\r\n")

	for _, line := range m.Screen() {
		b.WriteString(renderLine(out, line))
		b.WriteString("\r\n")
	}

	out.MoveCursor(1, 1)
	out.ClearScreen()
	out.WriteString(b.String())
}

func renderLine(out *termenv.Output, line pane.Line) string {
	var b strings.Builder
	for _, cell := range line.Cells {
		text := cell.Text
		if text == "" {
			text = " "
		}
		s := out.String(text)
		if cell.Attrs.Reverse {
			s = s.Reverse()
		}
		switch cell.Attrs.Underline {
		case pane.UnderlineSingle:
			s = s.Underline()
		case pane.UnderlineDouble:
			// Predicted echo. Underline plus faint marks it as
			// unconfirmed without being distracting.
			s = s.Underline().Faint()
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// forwardKeys reads raw terminal input and forwards it as key events.
// ctrl-c detaches instead of being forwarded; everything else goes to
// the remote pane.
func forwardKeys(ctx context.Context, cancel context.CancelFunc, p *remote.Pane) {
	reader := bufio.NewReader(os.Stdin)
	for {
		key, mods, err := readKey(reader)
		if err != nil {
			cancel()
			return
		}
		if key.Kind == pane.KeyChar && key.Char == 'c' && mods&pane.ModCtrl != 0 {
			cancel()
			return
		}
		if err := p.KeyDown(ctx, key, mods); err != nil {
			if !errors.Is(err, context.Canceled) {
				cancel()
			}
			return
		}
	}
}

func readKey(r *bufio.Reader) (pane.KeyCode, pane.Modifiers, error) {
	b, err := r.ReadByte()
	if err != nil {
		return pane.KeyCode{}, 0, err
	}
	switch {
	case b == '\r' || b == '\n':
		return pane.KeyCode{Kind: pane.KeyEnter}, 0, nil
	case b == '\t':
		return pane.KeyCode{Kind: pane.KeyTab}, 0, nil
	case b == 0x7f:
		return pane.KeyCode{Kind: pane.KeyBackspace}, 0, nil
	case b == 0x1b:
		return readEscape(r)
	case b < 0x20:
		// Ctrl-letter arrives as the letter minus 0x60.
		return pane.CharKey(rune(b + 0x60)), pane.ModCtrl, nil
	case b < utf8.RuneSelf:
		return pane.CharKey(rune(b)), 0, nil
	default:
		if err := r.UnreadByte(); err != nil {
			return pane.KeyCode{}, 0, err
		}
		ch, _, err := r.ReadRune()
		if err != nil {
			return pane.KeyCode{}, 0, err
		}
		return pane.CharKey(ch), 0, nil
	}
}

// readEscape decodes the common CSI sequences for navigation keys. A
// lone escape byte is the escape key itself.
func readEscape(r *bufio.Reader) (pane.KeyCode, pane.Modifiers, error) {
	if r.Buffered() == 0 {
		return pane.KeyCode{Kind: pane.KeyEscape}, 0, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return pane.KeyCode{}, 0, err
	}
	if b != '[' {
		// Alt-modified key.
		return pane.CharKey(rune(b)), pane.ModAlt, nil
	}
	b, err = r.ReadByte()
	if err != nil {
		return pane.KeyCode{}, 0, err
	}
	switch b {
	case 'A':
		return pane.KeyCode{Kind: pane.KeyUpArrow}, 0, nil
	case 'B':
		return pane.KeyCode{Kind: pane.KeyDownArrow}, 0, nil
	case 'C':
		return pane.KeyCode{Kind: pane.KeyRightArrow}, 0, nil
	case 'D':
		return pane.KeyCode{Kind: pane.KeyLeftArrow}, 0, nil
	case 'H':
		return pane.KeyCode{Kind: pane.KeyHome}, 0, nil
	case 'F':
		return pane.KeyCode{Kind: pane.KeyEnd}, 0, nil
	case '3', '5', '6':
		kind := map[byte]pane.KeyKind{
			'3': pane.KeyDelete,
			'5': pane.KeyPageUp,
			'6': pane.KeyPageDown,
		}[b]
		// Consume the trailing tilde.
		if _, err := r.ReadByte(); err != nil {
			return pane.KeyCode{}, 0, err
		}
		return pane.KeyCode{Kind: kind}, 0, nil
	default:
		return pane.KeyCode{Kind: pane.KeyEscape}, 0, nil
	}
}
