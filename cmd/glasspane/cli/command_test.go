// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestSubcommandDispatch(t *testing.T) {
	var got []string
	root := &Command{
		Name: "root",
		Subcommands: []*Command{
			{
				Name: "sub",
				Run: func(args []string) error {
					got = args
					return nil
				},
			},
		},
	}
	if err := root.Execute([]string{"sub", "a", "b"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("args = %v", got)
	}
}

func TestUnknownSubcommand(t *testing.T) {
	root := &Command{
		Name:        "root",
		Subcommands: []*Command{{Name: "sub", Run: func([]string) error { return nil }}},
	}
	err := root.Execute([]string{"nope"})
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestFlagParsing(t *testing.T) {
	var count int
	cmd := &Command{
		Name: "cmd",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("cmd", pflag.ContinueOnError)
			fs.IntVar(&count, "count", 1, "")
			return fs
		},
		Run: func(args []string) error { return nil },
	}
	if err := cmd.Execute([]string{"--count", "5"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d", count)
	}
}

func TestBadFlagMentionsHelp(t *testing.T) {
	cmd := &Command{
		Name: "cmd",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("cmd", pflag.ContinueOnError)
		},
		Run: func(args []string) error { return nil },
	}
	err := cmd.Execute([]string{"--bogus"})
	if err == nil || !strings.Contains(err.Error(), "--help") {
		t.Fatalf("expected flag error pointing at help, got %v", err)
	}
}

func TestHelpListsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "root",
		Summary: "top level",
		Subcommands: []*Command{
			{Name: "alpha", Summary: "first"},
			{Name: "beta", Summary: "second"},
		},
	}
	var b strings.Builder
	root.PrintHelp(&b)
	help := b.String()
	for _, want := range []string{"alpha", "first", "beta", "second"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestFullNameIncludesParents(t *testing.T) {
	sub := &Command{Name: "child", Run: func([]string) error { return nil }}
	root := &Command{Name: "parent", Subcommands: []*Command{sub}}
	if err := root.Execute([]string{"child"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := sub.fullName(); got != "parent child" {
		t.Errorf("fullName = %q", got)
	}
}
