// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
)

func listCommand() *cli.Command {
	var flags clientFlags
	return &cli.Command{
		Name:    "list",
		Summary: "list panes on the daemon",
		Usage:   "glasspane list [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.register(fs)
			return fs
		},
		Run: func(args []string) error {
			ctx := context.Background()
			client, _, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			panes, err := client.ListPanes(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "PANE\tTAB\tWINDOW\tSIZE\tZOOMED\tTITLE\tCWD")
			for _, p := range panes {
				zoomed := ""
				if p.IsZoomed {
					zoomed = "yes"
				}
				fmt.Fprintf(tw, "%d\t%d\t%d\t%dx%d\t%s\t%s\t%s\n",
					p.PaneID, p.TabID, p.WindowID,
					p.Size.Cols, p.Size.Rows, zoomed, p.Title, p.WorkingDir)
			}
			return tw.Flush()
		},
	}
}
