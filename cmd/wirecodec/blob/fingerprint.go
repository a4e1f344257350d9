// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/serde"
)

type fingerprintParams struct {
	typesParams
	formatParams
}

func fingerprintCommand() *cli.Command {
	var params fingerprintParams

	return &cli.Command{
		Name:    "fingerprint",
		Summary: "Print the descriptors of live type definitions",
		Description: `Load the type definitions and print the descriptor each type would
write. Two programs exchange envelopes without evolution exactly when
their descriptors for a type agree; compare this output against
"wirecodec schema" of a stored envelope to see which types changed.

With type names as arguments, only those types are printed.`,
		Usage:  "wirecodec fingerprint --types <file> [flags] [type...]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Fingerprint every defined type",
				Command:     "wirecodec fingerprint --types people.yaml",
			},
			{
				Description: "Check one type against a stored envelope",
				Command:     "wirecodec fingerprint -t people.yaml Person && wirecodec schema person.cbor",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			format, err := params.format()
			if err != nil {
				return err
			}
			session, err := params.open(logger)
			if err != nil {
				return err
			}
			return printFingerprints(session.types, args, os.Stdout, format, session.color)
		},
	}
}

// liveDescriptors returns the descriptors of the named live types, or
// of every registered type in name order when names is empty.
func liveDescriptors(types *serde.Types, names []string) ([]descriptorInfo, error) {
	if len(names) == 0 {
		names = types.Names()
	}
	entries := make([]descriptorInfo, 0, len(names))
	for _, name := range names {
		live, ok := types.Lookup(name)
		if !ok {
			return nil, cli.NotFound("type %q is not defined", name)
		}
		entries = append(entries, describe(live.WireSchema()))
	}
	return entries, nil
}

func printFingerprints(types *serde.Types, names []string, w io.Writer, format outputFormat, color bool) error {
	entries, err := liveDescriptors(types, names)
	if err != nil {
		return err
	}
	return writeDescriptors(w, entries, format, color, true)
}
