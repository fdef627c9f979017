// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
	"github.com/glasspane/glasspane/pane"
)

func sendTextCommand() *cli.Command {
	var flags clientFlags
	var paneID uint64
	var raw bool
	return &cli.Command{
		Name:    "send-text",
		Summary: "send text to a pane",
		Description: `send-text delivers text to a pane's input. By default the text
arrives as a paste, which the application can bracket; --raw writes
the bytes as if typed. Text is taken from the arguments, or from
stdin when no arguments are given.`,
		Usage: "glasspane send-text --pane <id> [flags] [text...]",
		Examples: []cli.Example{
			{Description: "Paste a command into pane 3", Command: `glasspane send-text --pane 3 "make test"`},
			{Description: "Pipe a file as raw input", Command: "glasspane send-text --pane 3 --raw < input.txt"},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("send-text", pflag.ContinueOnError)
			flags.register(fs)
			fs.Uint64Var(&paneID, "pane", 0, "target pane id (required)")
			fs.BoolVar(&raw, "raw", false, "write bytes directly instead of pasting")
			return fs
		},
		Run: func(args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				text = string(data)
			}
			if text == "" {
				return errors.New("send-text: nothing to send")
			}

			ctx := context.Background()
			client, _, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if raw {
				return client.WriteToPane(ctx, pane.PaneID(paneID), []byte(text))
			}
			return client.SendPaste(ctx, pane.PaneID(paneID), text)
		},
	}
}
