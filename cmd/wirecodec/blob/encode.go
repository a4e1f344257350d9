// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/serde"
	"golang.org/x/term"
)

type encodeParams struct {
	typesParams
	Type      string `json:"type"       flag:"type"  desc:"live type of the root value (required)"`
	HexOutput bool   `json:"hex_output" flag:"hex,x" desc:"write hex instead of binary"`
}

func encodeCommand() *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode JSON as an envelope of a live type",
		Description: `Read a JSON value from stdin (or a file argument) and write it as an
envelope of the type named by --type: the schema blob of every type the
value uses, followed by the described body.

JSON objects become composite values; every field the type declares as
mandatory must be present. Enum constants are given by name, bytes
fields as base64 strings. Integers are checked against the range of
the field's type.

The output is binary unless --hex is given, and is never written to a
terminal.`,
		Usage:  "wirecodec encode --types <file> --type <name> [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Encode a person",
				Command:     "echo '{\"name\":\"alice\"}' | wirecodec encode -t people.yaml --type Person > person.cbor",
			},
			{
				Description: "Round-trip through the schema",
				Command:     "wirecodec encode -t people.yaml --type Person in.json | wirecodec decode -t people.yaml",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if params.Type == "" {
				return cli.Validation("--type is required")
			}
			if !params.HexOutput && term.IsTerminal(int(os.Stdout.Fd())) {
				return cli.Validation("refusing to write binary to a terminal").
					WithHint("Redirect stdout or pass --hex.")
			}
			data, err := readSingleInput("encode", args, false)
			if err != nil {
				return err
			}
			session, err := params.open(logger)
			if err != nil {
				return err
			}
			return encodeJSON(session.context, params.Type, data, os.Stdout, params.HexOutput)
		},
	}
}

// encodeJSON parses data as one JSON value and writes it as an
// envelope of typeName. Numbers keep their literal form until the
// field's type is known.
func encodeJSON(ctx *serde.Context, typeName string, data []byte, w io.Writer, hexOutput bool) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return cli.Validation("decode JSON: %w", err)
	}
	if decoder.More() {
		return cli.Validation("trailing data after the JSON value")
	}

	encoded, err := ctx.Encode(typeName, value)
	if err != nil {
		return categorize(err)
	}

	if hexOutput {
		_, err = fmt.Fprintln(w, hex.EncodeToString(encoded))
		return err
	}
	_, err = w.Write(encoded)
	return err
}
