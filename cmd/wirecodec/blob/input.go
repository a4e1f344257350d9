// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"unicode"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
)

// readInput resolves input data from either a file (the last element
// of args, if it names a regular file on disk) or stdin.
//
// When hexMode is true, the raw bytes are treated as hex-encoded CBOR:
// whitespace is stripped and the hex is decoded to binary.
//
// Returns the input bytes and the args with any consumed file path
// removed.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, []string, error) {
	var data []byte
	remainingArgs := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, cli.Internal("read %s: %w", candidate, err)
			}
			remainingArgs = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, nil, cli.Internal("read stdin: %w", err)
		}
	}

	if hexMode {
		decoded, err := decodeHexInput(data)
		if err != nil {
			return nil, nil, err
		}
		data = decoded
	}

	if len(data) == 0 {
		return nil, nil, cli.Validation("empty input: expected data on stdin or a file argument")
	}
	return data, remainingArgs, nil
}

// readSingleInput is readInput for commands that take at most one
// positional argument: the input file.
func readSingleInput(command string, args []string, hexMode bool) ([]byte, error) {
	data, remainingArgs, err := readInput(args, os.Stdin, hexMode)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		return nil, cli.Validation("%s takes no positional arguments besides an optional file path, got %q",
			command, remainingArgs[0])
	}
	return data, nil
}

// decodeHexInput strips whitespace from hex-encoded input and decodes
// it to binary bytes.
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, cli.Validation("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, cli.Validation("decode hex: %w", err)
	}
	return decoded[:count], nil
}
