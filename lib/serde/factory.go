// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// BuildEvent describes one evolution serializer build. Err is set when
// the build failed; the failure is cached with the entry.
type BuildEvent struct {
	Type       string
	Descriptor wireschema.Fingerprint
	Kind       string
	Err        error
}

// FactoryOptions configures a [Factory].
type FactoryOptions struct {
	// Logger receives one record per build. Nil discards.
	Logger *slog.Logger

	// OnBuild, if set, is called synchronously after every build,
	// successful or not. Tests use it to count builds.
	OnBuild func(BuildEvent)
}

// Factory builds and caches evolution serializers, at most once per
// on-wire descriptor. Lookups for different descriptors never block
// each other; concurrent first lookups for the same descriptor wait
// for a single build and share its result. It is safe for concurrent
// use.
type Factory struct {
	types   *Types
	logger  *slog.Logger
	onBuild func(BuildEvent)

	entries sync.Map // wireschema.Fingerprint -> *factoryEntry
}

type factoryEntry struct {
	once       sync.Once
	serializer Serializer
	err        error
}

// NewFactory returns a factory resolving field types through types.
func NewFactory(types *Types, options FactoryOptions) *Factory {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Factory{
		types:   types,
		logger:  logger,
		onBuild: options.OnBuild,
	}
}

// Types returns the live type table.
func (f *Factory) Types() *Types {
	return f.types
}

// GetOrBuild returns the evolution serializer reading data written
// with wire into live, building it on first use. The caller decides
// that evolution is needed; the factory only dispatches on the wire
// schema's kind. A failed build is cached: later calls for the same
// descriptor return the same error without rebuilding.
func (f *Factory) GetOrBuild(wire wireschema.TypeSchema, live LiveType) (Serializer, error) {
	descriptor := wire.Fingerprint()
	value, ok := f.entries.Load(descriptor)
	if !ok {
		value, _ = f.entries.LoadOrStore(descriptor, &factoryEntry{})
	}
	entry := value.(*factoryEntry)
	entry.once.Do(func() {
		entry.serializer, entry.err = f.build(wire, live)
	})
	return entry.serializer, entry.err
}

// Len returns the number of descriptors seen, including failed builds.
func (f *Factory) Len() int {
	count := 0
	f.entries.Range(func(any, any) bool {
		count++
		return true
	})
	return count
}

func (f *Factory) build(wire wireschema.TypeSchema, live LiveType) (Serializer, error) {
	event := BuildEvent{Type: wire.TypeName(), Descriptor: wire.Fingerprint()}
	attrs := []any{
		"type", wire.TypeName(),
		"descriptor", wire.Fingerprint().ShortString(),
	}

	var serializer Serializer
	switch schema := wire.(type) {
	case *wireschema.Composite:
		event.Kind = "composite"
		liveComposite, ok := live.(*CompositeType)
		if !ok {
			event.Err = f.kindMismatch(wire, live)
			break
		}
		built, err := makeEvolutionSerializer(f.types, schema, liveComposite)
		if err != nil {
			event.Err = err
			break
		}
		serializer = built
		attrs = append(attrs,
			"constructor_version", built.constructor.Version,
			"discarded", built.discarded,
			"defaulted", built.defaulted,
		)
	case *wireschema.Restricted:
		event.Kind = "restricted"
		liveEnum, ok := live.(*EnumType)
		if !ok {
			event.Err = f.kindMismatch(wire, live)
			break
		}
		built := makeEnumEvolutionSerializer(schema, liveEnum)
		serializer = built
		attrs = append(attrs, "removed", built.removed)
	default:
		panic(fmt.Sprintf("serde: unknown TypeSchema implementation %T", wire))
	}

	attrs = append(attrs, "kind", event.Kind)
	if event.Err != nil {
		f.logger.Warn("evolution serializer build failed", append(attrs, "error", event.Err)...)
	} else {
		f.logger.Info("built evolution serializer", attrs...)
	}
	if f.onBuild != nil {
		f.onBuild(event)
	}
	if event.Err != nil {
		return nil, event.Err
	}
	return serializer, nil
}

func (f *Factory) kindMismatch(wire wireschema.TypeSchema, live LiveType) error {
	liveKind := "composite"
	if _, ok := live.(*EnumType); ok {
		liveKind = "enum"
	}
	return &Error{Op: "build", Type: wire.TypeName(), Descriptor: wire.Fingerprint(),
		Err: fmt.Errorf("%w: live type is %s", ErrKindMismatch, liveKind)}
}
