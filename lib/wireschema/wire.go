// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wireschema

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/wirecodec/lib/codec"
)

// CBOR tag numbers of the wirecodec containers. These values are
// protocol constants: changing them breaks every stored envelope.
const (
	TagEnvelope   uint64 = 51000
	TagComposite  uint64 = 51001
	TagRestricted uint64 = 51002
	TagDescribed  uint64 = 51010
)

// ErrNotDescribed indicates a value that should be a described
// container (tag 51010) but is something else.
var ErrNotDescribed = errors.New("wireschema: value is not a described container")

type fieldWire struct {
	_    struct{} `cbor:",toarray"`
	Name string
	Type string
}

type compositeWire struct {
	_          struct{} `cbor:",toarray"`
	Name       string
	Descriptor []byte
	Fields     []fieldWire
}

type choiceWire struct {
	_       struct{} `cbor:",toarray"`
	Name    string
	Ordinal int64
}

type restrictedWire struct {
	_              struct{} `cbor:",toarray"`
	Name           string
	Descriptor     []byte
	Representation string
	Choices        []choiceWire
}

// DescriptorTag returns the tagged container that encodes typeSchema
// on the wire.
func DescriptorTag(typeSchema TypeSchema) codec.Tag {
	fingerprint := typeSchema.Fingerprint()
	switch schema := typeSchema.(type) {
	case *Composite:
		fields := make([]fieldWire, len(schema.Fields))
		for i, field := range schema.Fields {
			fields[i] = fieldWire{Name: field.Name, Type: string(field.Type)}
		}
		return codec.Tag{Number: TagComposite, Content: compositeWire{
			Name:       schema.Name,
			Descriptor: fingerprint[:],
			Fields:     fields,
		}}
	case *Restricted:
		choices := make([]choiceWire, len(schema.Choices))
		for i, choice := range schema.Choices {
			choices[i] = choiceWire{Name: choice.Name, Ordinal: int64(choice.Ordinal)}
		}
		return codec.Tag{Number: TagRestricted, Content: restrictedWire{
			Name:           schema.Name,
			Descriptor:     fingerprint[:],
			Representation: schema.Representation,
			Choices:        choices,
		}}
	default:
		panic(fmt.Sprintf("wireschema: unknown TypeSchema implementation %T", typeSchema))
	}
}

// ParseDescriptor decodes one tagged descriptor, validates it, and
// checks its stated fingerprint against its content.
func ParseDescriptor(raw codec.RawMessage) (TypeSchema, error) {
	tag, err := parseTag(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: descriptor: %v", ErrMalformedSchema, err)
	}

	var (
		typeSchema TypeSchema
		stated     []byte
	)
	switch tag.Number {
	case TagComposite:
		var wire compositeWire
		if err := codec.Unmarshal(tag.Content, &wire); err != nil {
			return nil, fmt.Errorf("%w: composite descriptor: %v", ErrMalformedSchema, err)
		}
		fields := make([]Field, len(wire.Fields))
		for i, field := range wire.Fields {
			fields[i] = Field{Name: field.Name, Type: TypeRef(field.Type)}
		}
		typeSchema = NewComposite(wire.Name, fields)
		stated = wire.Descriptor
	case TagRestricted:
		var wire restrictedWire
		if err := codec.Unmarshal(tag.Content, &wire); err != nil {
			return nil, fmt.Errorf("%w: restricted descriptor: %v", ErrMalformedSchema, err)
		}
		choices := make([]Choice, len(wire.Choices))
		for i, choice := range wire.Choices {
			choices[i] = Choice{Name: choice.Name, Ordinal: int(choice.Ordinal)}
		}
		typeSchema = NewRestricted(wire.Name, wire.Representation, choices)
		stated = wire.Descriptor
	default:
		return nil, fmt.Errorf("%w: unknown descriptor tag %d", ErrMalformedSchema, tag.Number)
	}

	if err := typeSchema.Validate(); err != nil {
		return nil, err
	}
	fingerprint, err := fingerprintFromBytes(stated)
	if err != nil {
		return nil, err
	}
	if fingerprint != typeSchema.Fingerprint() {
		return nil, fmt.Errorf("%w: %s states %s, content hashes to %s", ErrFingerprintMismatch,
			typeSchema.TypeName(), fingerprint.ShortString(), typeSchema.Fingerprint().ShortString())
	}
	return typeSchema, nil
}

// MarshalCBOR encodes the schema blob: an array of tagged descriptors
// in insertion order.
func (s *Schema) MarshalCBOR() ([]byte, error) {
	tags := make([]codec.Tag, 0, s.Len())
	for _, typeSchema := range s.Types() {
		tags = append(tags, DescriptorTag(typeSchema))
	}
	return codec.Marshal(tags)
}

// UnmarshalCBOR decodes a schema blob, replacing the receiver's
// content.
func (s *Schema) UnmarshalCBOR(data []byte) error {
	elements, err := codec.Sequence(data)
	if err != nil {
		return fmt.Errorf("%w: schema blob: %v", ErrMalformedSchema, err)
	}
	*s = Schema{}
	for i, element := range elements {
		typeSchema, err := ParseDescriptor(element)
		if err != nil {
			return fmt.Errorf("schema entry %d: %w", i, err)
		}
		s.Add(typeSchema)
	}
	return nil
}

type describedOut struct {
	_          struct{} `cbor:",toarray"`
	Descriptor []byte
	Body       any
}

type describedIn struct {
	_          struct{} `cbor:",toarray"`
	Descriptor []byte
	Body       codec.RawMessage
}

// Described is a value prefixed by the fingerprint of its type's
// schema. Body is still encoded; its shape depends on the schema.
type Described struct {
	Descriptor Fingerprint
	Body       codec.RawMessage
}

// DescribedTag returns the tagged container for a described value.
// body must encode as a CBOR array.
func DescribedTag(descriptor Fingerprint, body []any) codec.Tag {
	return codec.Tag{Number: TagDescribed, Content: describedOut{
		Descriptor: descriptor[:],
		Body:       body,
	}}
}

// ParseDescribed splits a described container into its descriptor and
// still-encoded body.
func ParseDescribed(raw codec.RawMessage) (Described, error) {
	tag, err := parseTag(raw)
	if err != nil {
		return Described{}, fmt.Errorf("%w: %v", ErrNotDescribed, err)
	}
	if tag.Number != TagDescribed {
		return Described{}, fmt.Errorf("%w: tag %d", ErrNotDescribed, tag.Number)
	}
	var wire describedIn
	if err := codec.Unmarshal(tag.Content, &wire); err != nil {
		return Described{}, fmt.Errorf("%w: %v", ErrNotDescribed, err)
	}
	descriptor, err := fingerprintFromBytes(wire.Descriptor)
	if err != nil {
		return Described{}, fmt.Errorf("%w: %v", ErrNotDescribed, err)
	}
	return Described{Descriptor: descriptor, Body: wire.Body}, nil
}

type envelopeWire struct {
	_      struct{} `cbor:",toarray"`
	Schema codec.RawMessage
	Body   codec.RawMessage
}

// Envelope is the unit of storage and transport: a schema blob
// together with the data body it describes.
type Envelope struct {
	Schema *Schema
	Body   codec.RawMessage
}

// Marshal encodes the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	schema := e.Schema
	if schema == nil {
		schema = NewSchema()
	}
	blob, err := schema.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("encoding schema blob: %w", err)
	}
	body := e.Body
	if len(body) == 0 {
		body = codec.Null()
	}
	return codec.Marshal(codec.Tag{Number: TagEnvelope, Content: envelopeWire{
		Schema: blob,
		Body:   body,
	}})
}

// ParseEnvelope decodes an envelope, parsing and verifying every
// descriptor in its schema blob. The body is left encoded.
func ParseEnvelope(data []byte) (*Envelope, error) {
	tag, err := parseTag(data)
	if err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformedSchema, err)
	}
	if tag.Number != TagEnvelope {
		return nil, fmt.Errorf("%w: envelope has tag %d, want %d", ErrMalformedSchema, tag.Number, TagEnvelope)
	}
	var wire envelopeWire
	if err := codec.Unmarshal(tag.Content, &wire); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformedSchema, err)
	}
	schema := &Schema{}
	if err := schema.UnmarshalCBOR(wire.Schema); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	return &Envelope{Schema: schema, Body: wire.Body}, nil
}

// parseTag decodes raw as a tagged item, rejecting other major types
// before handing the bytes to the CBOR library.
func parseTag(raw codec.RawMessage) (codec.RawTag, error) {
	var tag codec.RawTag
	if len(raw) == 0 {
		return tag, fmt.Errorf("empty input")
	}
	// Major type 6 (tag) occupies the top three bits.
	if raw[0]>>5 != 6 {
		return tag, fmt.Errorf("expected tagged item, got major type %d", raw[0]>>5)
	}
	if err := codec.Unmarshal(raw, &tag); err != nil {
		return tag, err
	}
	return tag, nil
}
