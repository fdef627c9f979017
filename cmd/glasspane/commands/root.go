// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands implements the glasspane CLI command tree.
package commands

import (
	"github.com/glasspane/glasspane/cmd/glasspane/cli"
)

// Root returns the top-level glasspane command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "glasspane",
		Summary: "client for a glasspane terminal daemon",
		Description: `glasspane talks to a terminal multiplexer daemon over its binary
session protocol. The daemon is reached through a unix socket, a
discovery record, a proxy command (typically ssh), or TLS, in that
order of preference; see the config file for transport settings.`,
		Subcommands: []*cli.Command{
			pingCommand(),
			listCommand(),
			sendTextCommand(),
			searchCommand(),
			tailCommand(),
			killCommand(),
			versionCommand(),
		},
	}
}
