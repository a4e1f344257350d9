// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

type schemaParams struct {
	outputParams
	formatParams
	HexInput bool `json:"hex_input" flag:"hex,x"    desc:"treat input as hex-encoded CBOR"`
	Full     bool `json:"full"      flag:"full"     desc:"print full 64-digit descriptors in text output"`
}

func schemaCommand() *cli.Command {
	var params schemaParams

	return &cli.Command{
		Name:    "schema",
		Summary: "List the type descriptors carried by an envelope",
		Description: `Read an envelope and print the schema blob that travels with its
body: one entry per type, with its descriptor (fingerprint) and its
fields or constants in the order the writer recorded them.

No type definitions are needed: every descriptor is verified against
its own content, so a corrupted or hand-edited schema is rejected.`,
		Usage:  "wirecodec schema [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Show the schema of a stored envelope",
				Command:     "wirecodec schema person.cbor",
			},
			{
				Description: "Machine-readable schema",
				Command:     "wirecodec schema --json person.cbor",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			format, err := params.format()
			if err != nil {
				return err
			}
			cfg, _, err := params.load(logger)
			if err != nil {
				return err
			}
			data, err := readSingleInput("schema", args, params.HexInput)
			if err != nil {
				return err
			}
			return printSchema(data, os.Stdout, format,
				cli.ColorEnabled(cfg.Output.Color, os.Stdout), params.Full)
		},
	}
}

// envelopeDescriptors parses an envelope and returns its schema entries
// with the root type marked.
func envelopeDescriptors(data []byte) ([]descriptorInfo, error) {
	envelope, err := wireschema.ParseEnvelope(data)
	if err != nil {
		return nil, cli.Internal("%w", err)
	}
	var root wireschema.Fingerprint
	if !codec.IsNull(envelope.Body) {
		described, err := wireschema.ParseDescribed(envelope.Body)
		if err != nil {
			return nil, cli.Internal("envelope body: %w", err)
		}
		root = described.Descriptor
	}

	types := envelope.Schema.Types()
	entries := make([]descriptorInfo, len(types))
	for i, typeSchema := range types {
		entries[i] = describe(typeSchema)
		entries[i].Root = typeSchema.Fingerprint() == root
	}
	return entries, nil
}

func printSchema(data []byte, w io.Writer, format outputFormat, color, full bool) error {
	entries, err := envelopeDescriptors(data)
	if err != nil {
		return err
	}
	return writeDescriptors(w, entries, format, color, full)
}
