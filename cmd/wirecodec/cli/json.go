// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"reflect"

	"github.com/alecthomas/chroma/v2/quick"
)

// JSONOutput is an embeddable struct that adds --json output support to
// a command's parameter struct.
//
//	type schemaParams struct {
//	    cli.JSONOutput
//	    HexInput bool `flag:"hex,x" desc:"treat input as hex-encoded CBOR"`
//	}
//
//	// In Run:
//	if done, err := params.EmitJSON(entries); done {
//	    return err
//	}
//	// ... text formatting ...
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`

	color bool
}

// SetColor enables syntax highlighting of the JSON written by EmitJSON.
func (j *JSONOutput) SetColor(enabled bool) {
	j.color = enabled
}

// EmitJSON writes result as indented JSON to stdout if --json is set.
// Returns (true, nil) on success, (true, err) on write failure, or
// (false, nil) when --json is not set and the caller should proceed
// with text formatting. Nil slices are written as [].
func (j *JSONOutput) EmitJSON(result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSONTo(os.Stdout, normalizeNilSlice(result), JSONOptions{Color: j.color})
}

// JSONOptions controls [WriteJSONTo].
type JSONOptions struct {
	// Compact writes a single line instead of indenting.
	Compact bool

	// Color highlights the output with ANSI escapes for a 256-colour
	// terminal.
	Color bool
}

// WriteJSON writes value as indented, uncoloured JSON to stdout.
func WriteJSON(value any) error {
	return WriteJSONTo(os.Stdout, value, JSONOptions{})
}

// WriteJSONTo writes value as JSON followed by a newline.
func WriteJSONTo(w io.Writer, value any, options JSONOptions) error {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	if !options.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(value); err != nil {
		return Internal("encode JSON: %w", err)
	}
	if options.Color {
		if err := quick.Highlight(w, buffer.String(), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
		// Fall through to plain output if highlighting fails.
	}
	_, err := w.Write(buffer.Bytes())
	return err
}

// normalizeNilSlice returns an empty slice of the same type if value
// is a nil slice, so that JSON serialization produces [] instead of
// null. Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
