// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
	"github.com/glasspane/glasspane/pane"
)

func searchCommand() *cli.Command {
	var flags clientFlags
	var paneID uint64
	var regex, ignoreCase bool
	return &cli.Command{
		Name:    "search",
		Summary: "search a pane's scrollback",
		Usage:   "glasspane search --pane <id> [flags] <pattern>",
		Examples: []cli.Example{
			{Description: "Find compiler errors in pane 3", Command: `glasspane search --pane 3 --regex "error\[E\d+\]"`},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flags.register(fs)
			fs.Uint64Var(&paneID, "pane", 0, "target pane id (required)")
			fs.BoolVar(&regex, "regex", false, "treat the pattern as a regular expression")
			fs.BoolVar(&ignoreCase, "ignore-case", false, "match case-insensitively")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("search: exactly one pattern argument is required")
			}
			pattern := pane.Pattern{Kind: pane.PatternCaseSensitive, Text: args[0]}
			switch {
			case regex:
				pattern.Kind = pane.PatternRegex
			case ignoreCase:
				pattern.Kind = pane.PatternCaseInsensitive
			}

			ctx := context.Background()
			client, _, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			results, err := client.SearchScrollback(ctx, pane.PaneID(paneID), pattern)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("row %d col %d .. row %d col %d\n", r.StartY, r.StartX, r.EndY, r.EndX)
			}
			if len(results) == 0 {
				fmt.Println("no matches")
			}
			return nil
		},
	}
}
