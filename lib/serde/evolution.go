// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// unusedParam is the target of an on-wire field that no parameter of
// the chosen constructor consumes.
const unusedParam = -1

// oldParam is one on-wire field, bound to its value codec and to the
// constructor argument slot it fills.
type oldParam struct {
	property
	target int
}

// evolutionSerializer reads data written with an older (or otherwise
// different) composite schema into the live type. It reads every
// on-wire field in wire order, routes each value to a constructor
// argument or discards it, and leaves parameters with no on-wire
// source unpopulated. It never writes.
type evolutionSerializer struct {
	live        *CompositeType
	wire        *wireschema.Composite
	constructor *Constructor
	params      []oldParam
	argCount    int

	// Build diagnostics, reported by the factory.
	discarded []string
	defaulted []string
}

func makeEvolutionSerializer(types *Types, wire *wireschema.Composite, live *CompositeType) (*evolutionSerializer, error) {
	fail := func(member string, err error) error {
		return &Error{Op: "build", Type: wire.Name, Descriptor: wire.Fingerprint(), Member: member, Err: err}
	}

	params := make([]oldParam, len(wire.Fields))
	for i, field := range wire.Fields {
		prop, err := newProperty(types, field)
		if err != nil {
			return nil, fail("field "+field.Name, err)
		}
		params[i] = oldParam{property: prop, target: unusedParam}
	}

	constructor := selectConstructor(wire, live.Constructors)
	if constructor == nil {
		return nil, fail("", ErrNoUsableConstructor)
	}

	serializer := &evolutionSerializer{
		live:        live,
		wire:        wire,
		constructor: constructor,
		params:      params,
		argCount:    len(constructor.Params),
	}
	for index, param := range constructor.Params {
		fieldIndex := wire.FieldIndex(param.Name)
		if fieldIndex >= 0 && wire.Fields[fieldIndex].Type == param.Type {
			params[fieldIndex].target = index
			params[fieldIndex].optional = param.Optional
			continue
		}
		if !param.Optional {
			err := ErrMandatoryParameter
			if fieldIndex >= 0 {
				err = fmt.Errorf("%w: type changed from %s to %s", ErrMandatoryParameter,
					wire.Fields[fieldIndex].Type, param.Type)
			}
			return nil, fail("parameter "+param.Name, err)
		}
		serializer.defaulted = append(serializer.defaulted, param.Name)
	}
	for _, param := range params {
		if param.target == unusedParam {
			serializer.discarded = append(serializer.discarded, param.name)
		}
	}
	return serializer, nil
}

// selectConstructor picks the constructor used to read data with the
// given wire schema. A candidate is eligible when each of its
// parameters has a same-named, same-typed wire field. The eligible
// candidate with the highest version wins; ties go to the candidate
// with more parameters, then to the one declared first. With no
// eligible candidate the primary constructor is used. Returns nil only
// when the type has no constructors.
func selectConstructor(wire *wireschema.Composite, constructors []Constructor) *Constructor {
	if len(constructors) == 0 {
		return nil
	}
	var best *Constructor
	for i := range constructors {
		candidate := &constructors[i]
		if !eligible(wire, candidate) {
			continue
		}
		if best == nil ||
			candidate.Version > best.Version ||
			(candidate.Version == best.Version && len(candidate.Params) > len(best.Params)) {
			best = candidate
		}
	}
	if best == nil {
		return &constructors[0]
	}
	return best
}

func eligible(wire *wireschema.Composite, constructor *Constructor) bool {
	for _, param := range constructor.Params {
		index := wire.FieldIndex(param.Name)
		if index < 0 || wire.Fields[index].Type != param.Type {
			return false
		}
	}
	return true
}

func (s *evolutionSerializer) TypeName() string { return s.wire.Name }

func (s *evolutionSerializer) Descriptor() wireschema.Fingerprint { return s.wire.Fingerprint() }

func (s *evolutionSerializer) WireSchema() wireschema.TypeSchema { return s.wire }

func (s *evolutionSerializer) ReadObject(rc *ReadContext, body codec.RawMessage) (any, error) {
	values, err := codec.Sequence(body)
	if err != nil {
		return nil, s.fail("", fmt.Errorf("%w: %v", ErrUnexpectedBody, err))
	}
	if len(values) != len(s.params) {
		return nil, s.fail("", fmt.Errorf("%w: body has %d elements, schema has %d fields",
			ErrUnexpectedBody, len(values), len(s.params)))
	}

	args := make(Args, s.argCount)
	for i, param := range s.params {
		// Discarded fields are still decoded: a nested value must have
		// a resolvable descriptor even when nothing consumes it.
		value, err := param.codec.read(rc, values[i])
		if err != nil {
			return nil, s.fail(param.name, err)
		}
		if param.target == unusedParam {
			continue
		}
		if value == nil && !param.optional {
			return nil, s.fail(param.name, fmt.Errorf("%w: null for mandatory field", ErrUnexpectedBody))
		}
		args[param.target] = Present(value)
	}
	instance, err := s.constructor.New(args)
	if err != nil {
		return nil, s.fail("", err)
	}
	return instance, nil
}

// WriteObject panics: data is always written with the live type's own
// serializer, so reaching this is a programming error.
func (s *evolutionSerializer) WriteObject(*WriteContext, any) ([]any, error) {
	panic(fmt.Sprintf("serde: evolution serializer for %s [%s] cannot write",
		s.wire.Name, s.wire.Fingerprint().ShortString()))
}

func (s *evolutionSerializer) fail(member string, err error) error {
	return &Error{Op: "read", Type: s.wire.Name, Descriptor: s.wire.Fingerprint(), Member: member, Err: err}
}
