// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/codec"
)

type diagParams struct {
	HexInput bool `json:"hex_input" flag:"hex,x"      desc:"treat input as hex-encoded CBOR"`
	Annotate bool `json:"annotate"  flag:"annotate,a" desc:"precede each envelope with a comment naming its types"`
}

func diagCommand() *cli.Command {
	var params diagParams

	return &cli.Command{
		Name:    "diag",
		Summary: "Print an envelope in CBOR diagnostic notation",
		Description: `Write RFC 8949 Extended Diagnostic Notation for the input, one line per
top-level item. Unlike decode, this needs no type definitions and
shows the exact wire representation: the envelope tag (51000), the
descriptor tags (51001 composite, 51002 restricted), and every
described container (51010) with its fingerprint as a byte string.

Input may be a CBOR sequence of several envelopes.`,
		Usage:  "wirecodec diag [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Inspect the wire form of a stored envelope",
				Command:     "wirecodec diag --annotate person.cbor",
			},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			data, err := readSingleInput("diag", args, params.HexInput)
			if err != nil {
				return err
			}
			return diagnose(data, os.Stdout, params.Annotate)
		},
	}
}

// diagnose writes diagnostic notation for each item of data to w.
func diagnose(data []byte, w io.Writer, annotate bool) error {
	remaining := data
	for len(remaining) > 0 {
		notation, rest, err := codec.DiagnoseFirst(remaining)
		if err != nil {
			offset := len(data) - len(remaining)
			return cli.Internal("diagnose CBOR at byte %d: %w", offset, err)
		}
		if annotate {
			item := remaining[:len(remaining)-len(rest)]
			if comment := envelopeComment(item); comment != "" {
				if _, err := fmt.Fprintln(w, comment); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}

// envelopeComment summarizes item if it is a valid envelope.
func envelopeComment(item []byte) string {
	entries, err := envelopeDescriptors(item)
	if err != nil {
		return ""
	}
	root := "null"
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, fmt.Sprintf("%s=%s", entry.Name, entry.Descriptor[:12]))
		if entry.Root {
			root = entry.Name
		}
	}
	return fmt.Sprintf("# envelope: root %s; %d %s: %s",
		root, len(entries), plural(len(entries), "type", "types"), strings.Join(names, ", "))
}

func plural(count int, one, many string) string {
	if count == 1 {
		return one
	}
	return many
}
