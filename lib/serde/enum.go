// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// enumValue is the body of a described enum: the constant's name and
// its ordinal in the writing program.
type enumValue struct {
	_       struct{} `cbor:",toarray"`
	Name    string
	Ordinal int64
}

func readEnumValue(body codec.RawMessage) (enumValue, error) {
	var value enumValue
	if err := codec.Unmarshal(body, &value); err != nil {
		return value, fmt.Errorf("%w: enum body: %v", ErrUnexpectedBody, err)
	}
	return value, nil
}

// enumSerializer reads and writes an enum whose wire schema is the
// live type's own schema. Reads check that the name at the carried
// ordinal still matches.
type enumSerializer struct {
	live   *EnumType
	schema *wireschema.Restricted
}

func newEnumSerializer(live *EnumType) *enumSerializer {
	return &enumSerializer{live: live, schema: live.Schema()}
}

func (s *enumSerializer) TypeName() string { return s.live.Name }

func (s *enumSerializer) Descriptor() wireschema.Fingerprint { return s.schema.Fingerprint() }

func (s *enumSerializer) WireSchema() wireschema.TypeSchema { return s.schema }

func (s *enumSerializer) ReadObject(_ *ReadContext, body codec.RawMessage) (any, error) {
	value, err := readEnumValue(body)
	if err != nil {
		return nil, s.fail("read", "", err)
	}
	ordinal := value.Ordinal
	if ordinal < 0 || ordinal >= int64(len(s.live.Constants)) || s.live.Constants[ordinal] != value.Name {
		return nil, s.fail("read", value.Name, fmt.Errorf("%w: ordinal %d", ErrOrdinalityChanged, ordinal))
	}
	return s.live.Value(int(ordinal)), nil
}

func (s *enumSerializer) WriteObject(_ *WriteContext, value any) ([]any, error) {
	ordinal, ok := s.live.Ordinal(value)
	if !ok || ordinal < 0 || ordinal >= len(s.live.Constants) {
		return nil, s.fail("write", "", fmt.Errorf("%w: %v (%T)", ErrInvalidValue, value, value))
	}
	return []any{s.live.Constants[ordinal], int64(ordinal)}, nil
}

func (s *enumSerializer) fail(op, member string, err error) error {
	return &Error{Op: op, Type: s.live.Name, Descriptor: s.schema.Fingerprint(), Member: member, Err: err}
}
