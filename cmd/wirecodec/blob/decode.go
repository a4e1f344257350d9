// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/serde"
)

type decodeParams struct {
	typesParams
	Compact  bool `json:"compact"   flag:"compact,c" desc:"compact output (no indentation)"`
	HexInput bool `json:"hex_input" flag:"hex,x"     desc:"treat input as hex-encoded CBOR"`
}

func decodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode an envelope to JSON using live type definitions",
		Description: `Read an envelope, reconstruct its root value against the live type
definitions, and write it as JSON.

When a stored descriptor differs from the live definition of the same
type, the value is read through an evolution serializer: fields the
live type no longer declares are read and discarded, new optional
fields are left empty, and enum constants are matched by name. Pass
--no-evolution (or set evolution.enabled: false) to fail instead.

Composite values print as objects, enum constants as their names, and
bytes fields as base64 strings.`,
		Usage:  "wirecodec decode --types <file> [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Decode a stored envelope",
				Command:     "wirecodec decode --types people.yaml person.cbor",
			},
			{
				Description: "Decode hex from a log line, refusing schema evolution",
				Command:     "echo 'd9c738...' | wirecodec decode -t people.yaml --hex --no-evolution",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			data, err := readSingleInput("decode", args, params.HexInput)
			if err != nil {
				return err
			}
			session, err := params.open(logger)
			if err != nil {
				return err
			}
			return decodeEnvelope(session.context, data, os.Stdout,
				cli.JSONOptions{Compact: params.Compact, Color: session.color})
		},
	}
}

// decodeEnvelope decodes data with ctx and writes the value as JSON.
func decodeEnvelope(ctx *serde.Context, data []byte, w io.Writer, options cli.JSONOptions) error {
	value, err := ctx.Decode(data)
	if err != nil {
		return categorize(err)
	}
	return cli.WriteJSONTo(w, value, options)
}

// categorize maps serde failures onto command error categories: a type
// missing from the definitions is not-found, everything else is a
// problem with the data. Compatibility breaks carry a hint naming the
// type and member that cannot be read.
func categorize(err error) error {
	if errors.Is(err, serde.ErrTypeNotFound) {
		return &cli.ToolError{
			Category: cli.CategoryNotFound,
			Err:      err,
			Hint:     "Pass --types with a file that declares the missing type.",
		}
	}
	if errors.Is(err, serde.ErrEvolutionDisabled) {
		return &cli.ToolError{
			Category: cli.CategoryInternal,
			Err:      err,
			Hint:     "The stored schema differs from the live definitions; drop --no-evolution to read it anyway.",
		}
	}
	if hint := compatibilityHint(err); hint != "" {
		return &cli.ToolError{Category: cli.CategoryInternal, Err: err, Hint: hint}
	}
	return cli.Internal("%w", err)
}

// compatibilityHint describes a permanent incompatibility between the
// stored schema and the live definitions, naming the innermost type
// and member involved. Returns "" for other errors.
func compatibilityHint(err error) string {
	var failure *serde.Error
	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		if serdeErr, ok := cause.(*serde.Error); ok {
			failure = serdeErr
		}
	}
	if failure == nil {
		return ""
	}
	subject := failure.Type
	if !failure.Descriptor.IsZero() {
		subject += " [" + failure.Descriptor.ShortString() + "]"
	}
	switch {
	case errors.Is(err, serde.ErrMandatoryParameter):
		return fmt.Sprintf("Stored %s has no source for %s; mark it optional in the live definition.",
			subject, failure.Member)
	case errors.Is(err, serde.ErrNoUsableConstructor):
		return fmt.Sprintf("Live type %s declares no constructor, so stored %s cannot be read.",
			failure.Type, subject)
	case errors.Is(err, serde.ErrOrdinalityChanged):
		return fmt.Sprintf("Constant %s of %s was written with a different ordinal; read it with evolution enabled.",
			failure.Member, subject)
	case errors.Is(err, serde.ErrUnknownEnumConstant):
		return fmt.Sprintf("Stored %s uses constant %s, which the live %s lacks; add it or map it with renames.",
			subject, failure.Member, failure.Type)
	}
	return ""
}
