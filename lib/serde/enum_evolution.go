// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// enumEvolutionSerializer reads enum values written with a different
// choice list. Values are resolved by name; the ordinal on the wire
// is ignored. It never writes.
type enumEvolutionSerializer struct {
	live *EnumType
	wire *wireschema.Restricted
	// ordinals maps each on-wire choice name that still has a live
	// constant to that constant's ordinal.
	ordinals map[string]int

	// Build diagnostics, reported by the factory.
	removed []string
}

func makeEnumEvolutionSerializer(wire *wireschema.Restricted, live *EnumType) *enumEvolutionSerializer {
	serializer := &enumEvolutionSerializer{
		live:     live,
		wire:     wire,
		ordinals: make(map[string]int, len(wire.Choices)),
	}
	for _, choice := range wire.Choices {
		name := choice.Name
		if renamed, ok := live.Renames[name]; ok {
			name = renamed
		}
		if ordinal := live.Index(name); ordinal >= 0 {
			serializer.ordinals[choice.Name] = ordinal
		} else {
			serializer.removed = append(serializer.removed, choice.Name)
		}
	}
	return serializer
}

func (s *enumEvolutionSerializer) TypeName() string { return s.wire.Name }

func (s *enumEvolutionSerializer) Descriptor() wireschema.Fingerprint { return s.wire.Fingerprint() }

func (s *enumEvolutionSerializer) WireSchema() wireschema.TypeSchema { return s.wire }

func (s *enumEvolutionSerializer) ReadObject(_ *ReadContext, body codec.RawMessage) (any, error) {
	value, err := readEnumValue(body)
	if err != nil {
		return nil, s.fail("", err)
	}
	ordinal, ok := s.ordinals[value.Name]
	if !ok {
		return nil, s.fail(value.Name, ErrUnknownEnumConstant)
	}
	return s.live.Value(ordinal), nil
}

// WriteObject panics: enum values are always written with the live
// type's own serializer.
func (s *enumEvolutionSerializer) WriteObject(*WriteContext, any) ([]any, error) {
	panic(fmt.Sprintf("serde: enum evolution serializer for %s [%s] cannot write",
		s.wire.Name, s.wire.Fingerprint().ShortString()))
}

func (s *enumEvolutionSerializer) fail(member string, err error) error {
	return &Error{Op: "read", Type: s.wire.Name, Descriptor: s.wire.Fingerprint(), Member: member, Err: err}
}
