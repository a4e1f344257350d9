// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Serializer reads and writes the body of one type's described
// container.
type Serializer interface {
	// TypeName is the name of the type handled.
	TypeName() string

	// Descriptor is the fingerprint of the wire schema this
	// serializer reads.
	Descriptor() wireschema.Fingerprint

	// WireSchema is the wire schema this serializer reads.
	WireSchema() wireschema.TypeSchema

	// ReadObject decodes a body into a live value.
	ReadObject(rc *ReadContext, body codec.RawMessage) (any, error)

	// WriteObject encodes a live value into the elements of a body.
	WriteObject(wc *WriteContext, value any) ([]any, error)
}

// ContextOptions configures a [Context].
type ContextOptions struct {
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger

	// DisableEvolution makes every descriptor mismatch fail with
	// [ErrEvolutionDisabled] instead of building an evolution
	// serializer.
	DisableEvolution bool
}

// Context encodes live values into envelopes and decodes envelopes
// into live values. It is safe for concurrent use.
type Context struct {
	types     *Types
	factory   *Factory
	logger    *slog.Logger
	evolution bool

	// plain caches the serializer for each live type, keyed by name.
	plain sync.Map
}

type plainEntry struct {
	once       sync.Once
	serializer Serializer
	err        error
}

// NewContext returns a context that resolves live types through the
// factory's type table and builds evolution serializers through the
// factory.
func NewContext(factory *Factory, options ContextOptions) *Context {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{
		types:     factory.Types(),
		factory:   factory,
		logger:    logger,
		evolution: !options.DisableEvolution,
	}
}

// Factory returns the factory backing this context.
func (c *Context) Factory() *Factory {
	return c.factory
}

// Encode serializes value as an instance of the named live type and
// returns the encoded envelope.
func (c *Context) Encode(typeName string, value any) ([]byte, error) {
	envelope, err := c.EncodeEnvelope(typeName, value)
	if err != nil {
		return nil, err
	}
	return envelope.Marshal()
}

// EncodeEnvelope serializes value and returns the envelope unencoded.
// The schema blob lists the root type first, then every nested type in
// the order first encountered.
func (c *Context) EncodeEnvelope(typeName string, value any) (*wireschema.Envelope, error) {
	wc := &WriteContext{ctx: c, schema: wireschema.NewSchema()}
	var body codec.RawMessage
	if value == nil {
		serializer, err := c.plainSerializer(typeName)
		if err != nil {
			return nil, err
		}
		wc.schema.Add(serializer.WireSchema())
		body = codec.Null()
	} else {
		tag, err := wc.writeDescribed(typeName, value)
		if err != nil {
			return nil, err
		}
		body, err = codec.Marshal(tag)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
	}
	return &wireschema.Envelope{Schema: wc.schema, Body: body}, nil
}

// Decode parses an envelope and reconstructs its root value.
func (c *Context) Decode(data []byte) (any, error) {
	envelope, err := wireschema.ParseEnvelope(data)
	if err != nil {
		return nil, err
	}
	return c.DecodeBody(envelope.Schema, envelope.Body)
}

// DecodeBody reconstructs the value of a described body against the
// given schema blob. A null body decodes to nil.
func (c *Context) DecodeBody(schema *wireschema.Schema, body codec.RawMessage) (any, error) {
	if codec.IsNull(body) {
		return nil, nil
	}
	rc := &ReadContext{ctx: c, schema: schema}
	return rc.readDescribed(body, "")
}

// DecodeObject reconstructs a value from the body of a described
// container whose descriptor is already known.
func (c *Context) DecodeObject(descriptor wireschema.Fingerprint, schema *wireschema.Schema, body codec.RawMessage) (any, error) {
	wire, ok := schema.Lookup(descriptor)
	if !ok {
		return nil, &Error{Op: "resolve", Descriptor: descriptor, Err: ErrUnknownDescriptor}
	}
	serializer, err := c.SerializerFor(wire)
	if err != nil {
		return nil, err
	}
	rc := &ReadContext{ctx: c, schema: schema}
	return serializer.ReadObject(rc, body)
}

// SerializerFor returns the serializer that reads data written with
// the given wire schema: the live type's own serializer when the
// fingerprints match, otherwise an evolution serializer from the
// factory.
func (c *Context) SerializerFor(wire wireschema.TypeSchema) (Serializer, error) {
	live, ok := c.types.Lookup(wire.TypeName())
	if !ok {
		return nil, &Error{Op: "resolve", Type: wire.TypeName(), Descriptor: wire.Fingerprint(), Err: ErrTypeNotFound}
	}
	if live.WireSchema().Fingerprint() == wire.Fingerprint() {
		return c.plainSerializer(live.TypeName())
	}
	if !c.evolution {
		return nil, &Error{Op: "resolve", Type: wire.TypeName(), Descriptor: wire.Fingerprint(), Err: ErrEvolutionDisabled}
	}
	return c.factory.GetOrBuild(wire, live)
}

func (c *Context) plainSerializer(typeName string) (Serializer, error) {
	value, ok := c.plain.Load(typeName)
	if !ok {
		value, _ = c.plain.LoadOrStore(typeName, &plainEntry{})
	}
	entry := value.(*plainEntry)
	entry.once.Do(func() {
		live, ok := c.types.Lookup(typeName)
		if !ok {
			entry.err = &Error{Op: "resolve", Type: typeName, Err: ErrTypeNotFound}
			return
		}
		entry.serializer, entry.err = newPlainSerializer(c.types, live)
		if entry.err == nil {
			c.logger.Debug("built serializer",
				"type", typeName,
				"descriptor", entry.serializer.Descriptor().ShortString(),
			)
		}
	})
	return entry.serializer, entry.err
}

func newPlainSerializer(types *Types, live LiveType) (Serializer, error) {
	switch typed := live.(type) {
	case *CompositeType:
		return newObjectSerializer(types, typed)
	case *EnumType:
		return newEnumSerializer(typed), nil
	default:
		panic(fmt.Sprintf("serde: unknown LiveType implementation %T", live))
	}
}

// ReadContext carries the schema blob of the envelope being decoded.
type ReadContext struct {
	ctx    *Context
	schema *wireschema.Schema
}

// Schema returns the schema blob of the envelope being decoded.
func (rc *ReadContext) Schema() *wireschema.Schema {
	return rc.schema
}

// readDescribed decodes a described container. When expected is not
// empty the container's wire type must carry that name.
func (rc *ReadContext) readDescribed(raw codec.RawMessage, expected string) (any, error) {
	described, err := wireschema.ParseDescribed(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}
	wire, ok := rc.schema.Lookup(described.Descriptor)
	if !ok {
		return nil, &Error{Op: "resolve", Type: expected, Descriptor: described.Descriptor, Err: ErrUnknownDescriptor}
	}
	if expected != "" && wire.TypeName() != expected {
		return nil, &Error{Op: "read", Type: expected, Descriptor: described.Descriptor,
			Err: fmt.Errorf("%w: value has type %s", ErrUnexpectedBody, wire.TypeName())}
	}
	serializer, err := rc.ctx.SerializerFor(wire)
	if err != nil {
		return nil, err
	}
	return serializer.ReadObject(rc, described.Body)
}

// WriteContext accumulates the schema blob of the envelope being
// encoded.
type WriteContext struct {
	ctx    *Context
	schema *wireschema.Schema
}

// Schema returns the schema blob accumulated so far.
func (wc *WriteContext) Schema() *wireschema.Schema {
	return wc.schema
}

func (wc *WriteContext) writeDescribed(typeName string, value any) (codec.Tag, error) {
	serializer, err := wc.ctx.plainSerializer(typeName)
	if err != nil {
		return codec.Tag{}, err
	}
	wc.schema.Add(serializer.WireSchema())
	body, err := serializer.WriteObject(wc, value)
	if err != nil {
		return codec.Tag{}, err
	}
	return wireschema.DescribedTag(serializer.Descriptor(), body), nil
}
