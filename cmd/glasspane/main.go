// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Command glasspane is the client for a glasspane daemon: it lists
// panes, sends input, searches scrollback, and mirrors a pane's
// screen locally.
package main

import (
	"fmt"
	"os"

	"github.com/glasspane/glasspane/cmd/glasspane/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "glasspane: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
