// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wireschema

import (
	"fmt"
	"strings"
	"unicode"
)

// TypeRef names the declared type of a field or constructor parameter.
// It is one of the primitive names below, "list<T>" for a list of any
// TypeRef T, or the name of a composite or restricted type.
type TypeRef string

// Primitive type references.
const (
	Bool    TypeRef = "bool"
	Int64   TypeRef = "int64"
	Uint64  TypeRef = "uint64"
	Float64 TypeRef = "float64"
	String  TypeRef = "string"
	Bytes   TypeRef = "bytes"
)

var primitives = map[TypeRef]bool{
	Bool:    true,
	Int64:   true,
	Uint64:  true,
	Float64: true,
	String:  true,
	Bytes:   true,
}

// ListOf returns the TypeRef for a list with the given element type.
func ListOf(element TypeRef) TypeRef {
	return TypeRef("list<" + string(element) + ">")
}

// IsPrimitive reports whether t names one of the primitive types.
func (t TypeRef) IsPrimitive() bool {
	return primitives[t]
}

// Elem returns the element type of a list TypeRef. ok is false when t
// is not a list.
func (t TypeRef) Elem() (element TypeRef, ok bool) {
	inner, found := strings.CutPrefix(string(t), "list<")
	if !found || !strings.HasSuffix(inner, ">") {
		return "", false
	}
	return TypeRef(strings.TrimSuffix(inner, ">")), true
}

// Named reports whether t refers to a composite or restricted type
// rather than a primitive or a list.
func (t TypeRef) Named() bool {
	if t.IsPrimitive() {
		return false
	}
	_, isList := t.Elem()
	return !isList
}

// Validate checks that t is well formed: a primitive, a list of a
// valid TypeRef, or a type name made of letters, digits, '_' and '.'.
func (t TypeRef) Validate() error {
	if t == "" {
		return fmt.Errorf("empty type reference")
	}
	if t.IsPrimitive() {
		return nil
	}
	if element, ok := t.Elem(); ok {
		if err := element.Validate(); err != nil {
			return fmt.Errorf("list element of %q: %w", t, err)
		}
		return nil
	}
	return ValidateName(string(t))
}

// ValidateName checks a type, field, or choice name. Names start with
// a letter or '_' and continue with letters, digits, '_' or '.'.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '.' || unicode.IsDigit(r)):
		default:
			return fmt.Errorf("invalid character %q in name %q", r, name)
		}
	}
	return nil
}

func (t TypeRef) String() string {
	return string(t)
}
