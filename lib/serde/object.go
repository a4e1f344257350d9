// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// objectSerializer reads and writes a composite type whose wire schema
// is the live type's own schema. Properties are in schema order;
// reads go through the primary constructor.
type objectSerializer struct {
	live       *CompositeType
	schema     *wireschema.Composite
	properties []property
	// argIndex maps each property to its position among the primary
	// constructor's parameters, or -1 when the primary constructor
	// does not take it.
	argIndex []int
}

func newObjectSerializer(types *Types, live *CompositeType) (*objectSerializer, error) {
	schema := live.Schema()
	serializer := &objectSerializer{
		live:       live,
		schema:     schema,
		properties: make([]property, len(schema.Fields)),
		argIndex:   make([]int, len(schema.Fields)),
	}
	for i, field := range schema.Fields {
		prop, err := newProperty(types, field)
		if err != nil {
			return nil, &Error{Op: "build", Type: live.Name, Descriptor: schema.Fingerprint(), Member: field.Name, Err: err}
		}
		liveField, _ := live.Field(field.Name)
		prop.optional = liveField.Optional
		serializer.properties[i] = prop
		serializer.argIndex[i] = -1
	}
	if len(live.Constructors) > 0 {
		for paramIndex, param := range live.Constructors[0].Params {
			serializer.argIndex[schema.FieldIndex(param.Name)] = paramIndex
		}
	}
	return serializer, nil
}

func (s *objectSerializer) TypeName() string { return s.live.Name }

func (s *objectSerializer) Descriptor() wireschema.Fingerprint { return s.schema.Fingerprint() }

func (s *objectSerializer) WireSchema() wireschema.TypeSchema { return s.schema }

func (s *objectSerializer) ReadObject(rc *ReadContext, body codec.RawMessage) (any, error) {
	if len(s.live.Constructors) == 0 {
		return nil, s.fail("read", "", ErrNoUsableConstructor)
	}
	values, err := codec.Sequence(body)
	if err != nil {
		return nil, s.fail("read", "", fmt.Errorf("%w: %v", ErrUnexpectedBody, err))
	}
	if len(values) != len(s.properties) {
		return nil, s.fail("read", "", fmt.Errorf("%w: body has %d elements, schema has %d fields",
			ErrUnexpectedBody, len(values), len(s.properties)))
	}

	primary := &s.live.Constructors[0]
	args := make(Args, len(primary.Params))
	for i, prop := range s.properties {
		value, err := prop.codec.read(rc, values[i])
		if err != nil {
			return nil, s.fail("read", prop.name, err)
		}
		if value == nil && !prop.optional {
			return nil, s.fail("read", prop.name, fmt.Errorf("%w: null for mandatory field", ErrUnexpectedBody))
		}
		if index := s.argIndex[i]; index >= 0 {
			args[index] = Present(value)
		}
	}
	instance, err := primary.New(args)
	if err != nil {
		return nil, s.fail("read", "", err)
	}
	return instance, nil
}

func (s *objectSerializer) WriteObject(wc *WriteContext, value any) ([]any, error) {
	body := make([]any, len(s.properties))
	for i, prop := range s.properties {
		fieldValue, err := s.live.Get(value, prop.name)
		if err != nil {
			return nil, s.fail("write", prop.name, err)
		}
		if fieldValue == nil && !prop.optional {
			return nil, s.fail("write", prop.name, fmt.Errorf("%w: nil value for mandatory field", ErrInvalidValue))
		}
		encoded, err := prop.codec.write(wc, fieldValue)
		if err != nil {
			return nil, s.fail("write", prop.name, err)
		}
		body[i] = encoded
	}
	return body, nil
}

func (s *objectSerializer) fail(op, member string, err error) error {
	return &Error{Op: op, Type: s.live.Name, Descriptor: s.schema.Fingerprint(), Member: member, Err: err}
}
