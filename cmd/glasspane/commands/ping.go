// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
)

func pingCommand() *cli.Command {
	var flags clientFlags
	var count int
	return &cli.Command{
		Name:    "ping",
		Summary: "measure round-trip time to the daemon",
		Usage:   "glasspane ping [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("ping", pflag.ContinueOnError)
			flags.register(fs)
			fs.IntVar(&count, "count", 1, "number of pings to send")
			return fs
		},
		Run: func(args []string) error {
			ctx := context.Background()
			client, _, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			for i := 0; i < count; i++ {
				start := time.Now()
				if err := client.Ping(ctx); err != nil {
					return err
				}
				fmt.Printf("pong in %v\n", time.Since(start).Round(time.Microsecond))
			}
			return nil
		},
	}
}
