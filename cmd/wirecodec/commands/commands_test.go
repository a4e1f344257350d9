// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRootCommandNames(t *testing.T) {
	root := Root(slog.New(slog.DiscardHandler))

	want := []string{"schema", "decode", "encode", "diag", "fingerprint", "version"}
	if len(root.Subcommands) != len(want) {
		t.Fatalf("got %d subcommands, want %d", len(root.Subcommands), len(want))
	}
	for i, name := range want {
		command := root.Subcommands[i]
		if command.Name != name {
			t.Errorf("subcommand %d = %q, want %q", i, command.Name, name)
		}
		if command.Summary == "" {
			t.Errorf("subcommand %q has no summary", command.Name)
		}
		if command.Run == nil {
			t.Errorf("subcommand %q has no Run", command.Name)
		}
	}
}

func TestEveryCommandHelpRenders(t *testing.T) {
	root := Root(slog.New(slog.DiscardHandler))
	for _, command := range root.Subcommands {
		t.Run(command.Name, func(t *testing.T) {
			// PrintHelp builds the flag set, which panics on a
			// malformed params struct.
			var buffer bytes.Buffer
			command.PrintHelp(&buffer)
			if !strings.Contains(buffer.String(), "Usage:") {
				t.Errorf("help for %q lacks a usage line:\n%s", command.Name, buffer.String())
			}
		})
	}
}

func TestTypeAwareCommandsShareFlags(t *testing.T) {
	root := Root(slog.New(slog.DiscardHandler))
	for _, command := range root.Subcommands {
		switch command.Name {
		case "decode", "encode", "fingerprint":
		default:
			continue
		}
		var buffer bytes.Buffer
		command.PrintHelp(&buffer)
		for _, flag := range []string{"--types", "--no-evolution", "--config"} {
			if !strings.Contains(buffer.String(), flag) {
				t.Errorf("%s help lacks %s", command.Name, flag)
			}
		}
	}
}

func TestPrintVersion(t *testing.T) {
	var buffer bytes.Buffer
	if err := printVersion(&buffer); err != nil {
		t.Fatalf("printVersion: %v", err)
	}
	if !strings.HasPrefix(buffer.String(), "wirecodec ") || !strings.Contains(buffer.String(), "Wire format: 1") {
		t.Errorf("version output = %q", buffer.String())
	}
}
