// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/cmd/glasspane/cli"
	"github.com/glasspane/glasspane/lib/version"
)

func versionCommand() *cli.Command {
	var full bool
	return &cli.Command{
		Name:    "version",
		Summary: "print version information",
		Usage:   "glasspane version [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("version", pflag.ContinueOnError)
			fs.BoolVar(&full, "full", false, "include Go version and platform")
			return fs
		},
		Run: func(args []string) error {
			if full {
				fmt.Println(version.Full())
			} else {
				fmt.Println(version.Info())
			}
			return nil
		},
	}
}
