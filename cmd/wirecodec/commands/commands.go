// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete wirecodec command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/blob"
	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/version"
)

// Root builds and returns the wirecodec command tree. logger is handed
// to every command; commands given --config rebuild it at that file's
// level.
func Root(logger *slog.Logger) *cli.Command {
	root := &cli.Command{
		Name: "wirecodec",
		Description: `wirecodec: inspect and produce self-describing CBOR envelopes.

An envelope carries a schema blob (one descriptor per type it uses)
next to its data. Decoding reconciles each stored descriptor with the
live type definitions, so data written by an older or newer program is
still readable.`,
		Logger:      logger,
		Subcommands: append(blob.Commands(), versionCommand()),
		Examples: []cli.Example{
			{
				Description: "See which types an envelope carries",
				Command:     "wirecodec schema person.cbor",
			},
			{
				Description: "Decode against the current type definitions",
				Command:     "wirecodec decode --types people.yaml person.cbor",
			},
			{
				Description: "Write a new envelope from JSON",
				Command:     "echo '{\"name\":\"alice\"}' | wirecodec encode -t people.yaml --type Person > person.cbor",
			},
		},
	}
	return root
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("version takes no arguments, got %q", args[0])
			}
			if done, err := params.EmitJSON(version.Current()); done {
				return err
			}
			return printVersion(os.Stdout)
		},
	}
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "wirecodec %s\n", version.Full())
	return err
}
