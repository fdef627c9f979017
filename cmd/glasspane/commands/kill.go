// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
	"github.com/glasspane/glasspane/pane"
)

func killCommand() *cli.Command {
	var flags clientFlags
	var paneID uint64
	return &cli.Command{
		Name:    "kill",
		Summary: "terminate the process in a pane",
		Usage:   "glasspane kill --pane <id> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("kill", pflag.ContinueOnError)
			flags.register(fs)
			fs.Uint64Var(&paneID, "pane", 0, "target pane id (required)")
			return fs
		},
		Run: func(args []string) error {
			ctx := context.Background()
			client, _, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			return client.KillPane(ctx, pane.PaneID(paneID))
		},
	}
}
