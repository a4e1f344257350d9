// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Param is a named, typed member of a live composite type: either one
// of its fields or one parameter of one of its constructors.
type Param struct {
	Name string
	Type wireschema.TypeRef
	// Optional parameters accept absence: when the wire carries no
	// source for them the constructor sees an unpopulated slot.
	Optional bool
}

// Constructor is one way to instantiate a live composite type.
type Constructor struct {
	// Version is 0 for an untagged constructor. Tagged constructors
	// carry a version of 1 or more and are preferred, highest first,
	// when reading older data.
	Version int
	// Params are the constructor parameters in argument order. The
	// slot at index i of the Args passed to New corresponds to
	// Params[i].
	Params []Param
	// New instantiates the type from its arguments.
	New func(args Args) (any, error)
}

// LiveType is a type defined by the running program. The only
// implementations are [*CompositeType] and [*EnumType].
type LiveType interface {
	// TypeName is the registered name, which must match the name on
	// the wire for data to be read back.
	TypeName() string

	// WireSchema is the schema this type writes. Available once the
	// type has been registered with a [Types] table.
	WireSchema() wireschema.TypeSchema

	live()
}

// CompositeType is a live struct-like type.
type CompositeType struct {
	Name string
	// Fields are the serialized members. Their order has no effect on
	// the wire schema, which always lists fields sorted by name.
	Fields []Param
	// Constructors lists the ways to instantiate the type. The first
	// entry is the primary constructor, used when the wire schema
	// matches the live schema exactly; its parameters must all be
	// fields. An empty list marks the type as not instantiable.
	Constructors []Constructor
	// Get returns the value of the named field of instance.
	Get func(instance any, field string) (any, error)

	schema *wireschema.Composite
	fields map[string]Param
}

func (t *CompositeType) TypeName() string { return t.Name }

func (t *CompositeType) WireSchema() wireschema.TypeSchema { return t.schema }

func (*CompositeType) live() {}

// Schema returns the composite schema this type writes, or nil before
// registration.
func (t *CompositeType) Schema() *wireschema.Composite { return t.schema }

// Field returns the live field with the given name.
func (t *CompositeType) Field(name string) (Param, bool) {
	field, ok := t.fields[name]
	return field, ok
}

func (t *CompositeType) prepare() error {
	if err := wireschema.ValidateName(t.Name); err != nil {
		return err
	}
	if t.Get == nil {
		return fmt.Errorf("no field accessor")
	}
	t.fields = make(map[string]Param, len(t.Fields))
	for _, field := range t.Fields {
		if err := wireschema.ValidateName(field.Name); err != nil {
			return fmt.Errorf("field: %w", err)
		}
		if err := field.Type.Validate(); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if _, duplicate := t.fields[field.Name]; duplicate {
			return fmt.Errorf("duplicate field %q", field.Name)
		}
		t.fields[field.Name] = field
	}

	versions := make(map[int]bool)
	for i, constructor := range t.Constructors {
		if constructor.New == nil {
			return fmt.Errorf("constructor %d has no New function", i)
		}
		if constructor.Version < 0 {
			return fmt.Errorf("constructor %d has negative version %d", i, constructor.Version)
		}
		if constructor.Version > 0 {
			if versions[constructor.Version] {
				return fmt.Errorf("two constructors tagged with version %d", constructor.Version)
			}
			versions[constructor.Version] = true
		}
		seen := make(map[string]bool, len(constructor.Params))
		for _, param := range constructor.Params {
			if err := param.Type.Validate(); err != nil {
				return fmt.Errorf("constructor %d parameter %s: %w", i, param.Name, err)
			}
			if seen[param.Name] {
				return fmt.Errorf("constructor %d has duplicate parameter %q", i, param.Name)
			}
			seen[param.Name] = true
		}
	}
	if len(t.Constructors) > 0 {
		for _, param := range t.Constructors[0].Params {
			field, ok := t.fields[param.Name]
			if !ok {
				return fmt.Errorf("primary constructor parameter %q is not a field", param.Name)
			}
			if field.Type != param.Type {
				return fmt.Errorf("primary constructor parameter %q has type %s, field has %s",
					param.Name, param.Type, field.Type)
			}
		}
	}

	sorted := slices.Clone(t.Fields)
	slices.SortFunc(sorted, func(a, b Param) int { return strings.Compare(a.Name, b.Name) })
	schemaFields := make([]wireschema.Field, len(sorted))
	for i, field := range sorted {
		schemaFields[i] = wireschema.Field{Name: field.Name, Type: field.Type}
	}
	t.schema = wireschema.NewComposite(t.Name, schemaFields)
	return nil
}

// EnumType is a live enumerated type.
type EnumType struct {
	Name string
	// Representation names the Go carrier of the constants, recorded
	// in the wire schema.
	Representation string
	// Constants are the constant names in ordinal order.
	Constants []string
	// Renames maps a constant name found in older data to the live
	// constant it now denotes.
	Renames map[string]string
	// Value returns the Go value of the constant at ordinal.
	Value func(ordinal int) any
	// Ordinal returns the ordinal of a Go value of this type.
	Ordinal func(value any) (int, bool)

	schema *wireschema.Restricted
}

func (t *EnumType) TypeName() string { return t.Name }

func (t *EnumType) WireSchema() wireschema.TypeSchema { return t.schema }

func (*EnumType) live() {}

// Schema returns the restricted schema this type writes, or nil
// before registration.
func (t *EnumType) Schema() *wireschema.Restricted { return t.schema }

// Index returns the ordinal of the named live constant, or -1.
func (t *EnumType) Index(name string) int {
	return slices.Index(t.Constants, name)
}

func (t *EnumType) prepare() error {
	if t.Value == nil || t.Ordinal == nil {
		return fmt.Errorf("missing Value or Ordinal function")
	}
	choices := make([]wireschema.Choice, len(t.Constants))
	for i, constant := range t.Constants {
		choices[i] = wireschema.Choice{Name: constant, Ordinal: i}
	}
	schema := wireschema.NewRestricted(t.Name, t.Representation, choices)
	if err := schema.Validate(); err != nil {
		return err
	}
	for old, current := range t.Renames {
		if t.Index(old) >= 0 {
			return fmt.Errorf("rename source %q is still a live constant", old)
		}
		if t.Index(current) < 0 {
			return fmt.Errorf("rename target %q is not a live constant", current)
		}
	}
	t.schema = schema
	return nil
}

// Integer is the set of Go types usable as enum carriers by [NewEnum].
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// NewEnum returns an enum type whose constants are the values 0..n-1
// of the integer type E, in the order given.
func NewEnum[E Integer](name string, constants ...string) *EnumType {
	return &EnumType{
		Name:           name,
		Representation: "int",
		Constants:      constants,
		Value:          func(ordinal int) any { return E(ordinal) },
		Ordinal: func(value any) (int, bool) {
			constant, ok := value.(E)
			return int(constant), ok
		},
	}
}

// Getters adapts a table of typed field accessors into the Get
// function of a [CompositeType]. Instances may be passed as T or *T.
func Getters[T any](accessors map[string]func(T) any) func(instance any, field string) (any, error) {
	return func(instance any, field string) (any, error) {
		var value T
		switch typed := instance.(type) {
		case T:
			value = typed
		case *T:
			if typed == nil {
				return nil, fmt.Errorf("%w: nil %T", ErrInvalidValue, instance)
			}
			value = *typed
		default:
			return nil, fmt.Errorf("%w: got %T, want %T", ErrInvalidValue, instance, value)
		}
		accessor, ok := accessors[field]
		if !ok {
			return nil, fmt.Errorf("no accessor for field %q", field)
		}
		return accessor(value), nil
	}
}

// Types is the table of live types known to a program. It is safe for
// concurrent use. Types are looked up by name; referenced types need
// not be registered before the types that reference them.
type Types struct {
	mu     sync.RWMutex
	byName map[string]LiveType
}

// NewTypes returns an empty type table.
func NewTypes() *Types {
	return &Types{byName: make(map[string]LiveType)}
}

// Register validates and adds live types. A type must not be modified
// after registration.
func (t *Types) Register(types ...LiveType) error {
	for _, liveType := range types {
		var err error
		switch typed := liveType.(type) {
		case *CompositeType:
			err = typed.prepare()
		case *EnumType:
			err = typed.prepare()
		default:
			panic(fmt.Sprintf("serde: unknown LiveType implementation %T", liveType))
		}
		if err != nil {
			return &Error{Op: "register", Type: liveType.TypeName(), Err: fmt.Errorf("%w: %v", ErrInvalidType, err)}
		}

		t.mu.Lock()
		_, exists := t.byName[liveType.TypeName()]
		if !exists {
			t.byName[liveType.TypeName()] = liveType
		}
		t.mu.Unlock()
		if exists {
			return &Error{Op: "register", Type: liveType.TypeName(), Err: fmt.Errorf("%w: already registered", ErrInvalidType)}
		}
	}
	return nil
}

// MustRegister is like Register but panics on error. For use in
// package initialization.
func (t *Types) MustRegister(types ...LiveType) {
	if err := t.Register(types...); err != nil {
		panic(err)
	}
}

// Lookup returns the live type with the given name.
func (t *Types) Lookup(name string) (LiveType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	liveType, ok := t.byName[name]
	return liveType, ok
}

// Names returns the registered type names, sorted.
func (t *Types) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
