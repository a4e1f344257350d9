// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wireschema

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMalformedSchema indicates a schema blob or descriptor that
	// does not follow the wire format: wrong container shape, empty or
	// duplicate names, invalid type references.
	ErrMalformedSchema = errors.New("wireschema: malformed schema")

	// ErrFingerprintMismatch indicates a descriptor whose stated
	// fingerprint does not match the fingerprint recomputed from its
	// content.
	ErrFingerprintMismatch = errors.New("wireschema: fingerprint does not match descriptor content")
)

// TypeSchema is the on-wire description of one type. It is a closed
// union: the only implementations are [*Composite] and [*Restricted].
// Dispatch with a type switch:
//
//	switch schema := typeSchema.(type) {
//	case *wireschema.Composite:
//	case *wireschema.Restricted:
//	}
type TypeSchema interface {
	// TypeName is the name of the described type.
	TypeName() string

	// Fingerprint is the content-derived identifier of this shape.
	Fingerprint() Fingerprint

	// Validate checks names and type references.
	Validate() error

	sealed()
}

// Field is one named, typed member of a composite schema.
type Field struct {
	Name string  `json:"name" yaml:"name"`
	Type TypeRef `json:"type" yaml:"type"`
}

// Composite describes a struct-like type. Fields are listed in the
// order they were written to the stream, and must be read back in
// that order.
type Composite struct {
	Name   string
	Fields []Field

	fingerprint Fingerprint
}

// NewComposite builds a composite schema with fields in the given
// order and computes its fingerprint.
func NewComposite(name string, fields []Field) *Composite {
	composite := &Composite{Name: name, Fields: slices.Clone(fields)}
	composite.fingerprint = keyedHash(compositeDomainKey, composite.canonical())
	return composite
}

func (c *Composite) TypeName() string { return c.Name }

func (c *Composite) Fingerprint() Fingerprint { return c.fingerprint }

func (*Composite) sealed() {}

// FieldIndex returns the position of the named field, or -1.
func (c *Composite) FieldIndex(name string) int {
	return slices.IndexFunc(c.Fields, func(field Field) bool { return field.Name == name })
}

func (c *Composite) canonical() []any {
	fields := make([]any, len(c.Fields))
	for i, field := range c.Fields {
		fields[i] = []any{field.Name, string(field.Type)}
	}
	return []any{c.Name, fields}
}

func (c *Composite) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return fmt.Errorf("%w: composite: %v", ErrMalformedSchema, err)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, field := range c.Fields {
		if err := ValidateName(field.Name); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedSchema, c.Name, err)
		}
		if seen[field.Name] {
			return fmt.Errorf("%w: %s: duplicate field %q", ErrMalformedSchema, c.Name, field.Name)
		}
		seen[field.Name] = true
		if err := field.Type.Validate(); err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrMalformedSchema, c.Name, field.Name, err)
		}
	}
	return nil
}

// Choice is one named constant of a restricted schema. The ordinal is
// carried explicitly rather than inferred from position.
type Choice struct {
	Name    string `json:"name" yaml:"name"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
}

// Restricted describes an enumerated type.
type Restricted struct {
	Name string
	// Representation names the underlying carrier of the constants
	// in the writing program (for example "int" or "string"). It is
	// informational and part of the fingerprint.
	Representation string
	Choices        []Choice

	fingerprint Fingerprint
}

// NewRestricted builds a restricted schema and computes its
// fingerprint. Choices are kept in the given order; the fingerprint
// hashes them sorted by ordinal.
func NewRestricted(name, representation string, choices []Choice) *Restricted {
	restricted := &Restricted{
		Name:           name,
		Representation: representation,
		Choices:        slices.Clone(choices),
	}
	restricted.fingerprint = keyedHash(restrictedDomainKey, restricted.canonical())
	return restricted
}

func (r *Restricted) TypeName() string { return r.Name }

func (r *Restricted) Fingerprint() Fingerprint { return r.fingerprint }

func (*Restricted) sealed() {}

// ChoiceByName returns the choice with the given name.
func (r *Restricted) ChoiceByName(name string) (Choice, bool) {
	for _, choice := range r.Choices {
		if choice.Name == name {
			return choice, true
		}
	}
	return Choice{}, false
}

func (r *Restricted) canonical() []any {
	sorted := slices.Clone(r.Choices)
	slices.SortStableFunc(sorted, func(a, b Choice) int { return a.Ordinal - b.Ordinal })
	choices := make([]any, len(sorted))
	for i, choice := range sorted {
		choices[i] = []any{choice.Name, int64(choice.Ordinal)}
	}
	return []any{r.Name, r.Representation, choices}
}

func (r *Restricted) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return fmt.Errorf("%w: restricted: %v", ErrMalformedSchema, err)
	}
	names := make(map[string]bool, len(r.Choices))
	ordinals := make(map[int]bool, len(r.Choices))
	for _, choice := range r.Choices {
		if err := ValidateName(choice.Name); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedSchema, r.Name, err)
		}
		if names[choice.Name] {
			return fmt.Errorf("%w: %s: duplicate choice %q", ErrMalformedSchema, r.Name, choice.Name)
		}
		if choice.Ordinal < 0 {
			return fmt.Errorf("%w: %s: choice %q has negative ordinal %d",
				ErrMalformedSchema, r.Name, choice.Name, choice.Ordinal)
		}
		if ordinals[choice.Ordinal] {
			return fmt.Errorf("%w: %s: duplicate ordinal %d", ErrMalformedSchema, r.Name, choice.Ordinal)
		}
		names[choice.Name] = true
		ordinals[choice.Ordinal] = true
	}
	return nil
}

// Schema is an ordered set of type schemas keyed by fingerprint: the
// schema blob that accompanies a data body.
type Schema struct {
	types []TypeSchema
	index map[Fingerprint]TypeSchema
}

// NewSchema returns a schema containing the given types. Duplicates
// (by fingerprint) are dropped.
func NewSchema(types ...TypeSchema) *Schema {
	schema := &Schema{}
	for _, typeSchema := range types {
		schema.Add(typeSchema)
	}
	return schema
}

// Add appends typeSchema unless a schema with the same fingerprint is
// already present. Reports whether it was added.
func (s *Schema) Add(typeSchema TypeSchema) bool {
	if s.index == nil {
		s.index = make(map[Fingerprint]TypeSchema)
	}
	fingerprint := typeSchema.Fingerprint()
	if _, exists := s.index[fingerprint]; exists {
		return false
	}
	s.index[fingerprint] = typeSchema
	s.types = append(s.types, typeSchema)
	return true
}

// Lookup returns the schema with the given fingerprint.
func (s *Schema) Lookup(fingerprint Fingerprint) (TypeSchema, bool) {
	if s == nil {
		return nil, false
	}
	typeSchema, ok := s.index[fingerprint]
	return typeSchema, ok
}

// Types returns the schemas in insertion order. The returned slice
// must not be modified.
func (s *Schema) Types() []TypeSchema {
	if s == nil {
		return nil
	}
	return s.types
}

// Len returns the number of schemas.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.types)
}
