// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// Every error in this package is permanent: it describes a structural
// mismatch between persisted data and the running program, and
// retrying the same decode produces the same error. Callers match the
// class with errors.Is and extract context with errors.As:
//
//	var serdeErr *serde.Error
//	if errors.As(err, &serdeErr) {
//	    log.Printf("type %s member %s", serdeErr.Type, serdeErr.Member)
//	}
var (
	// ErrTypeNotFound indicates a type named in a wire schema (or in a
	// field's declared type) that the running program does not define.
	ErrTypeNotFound = errors.New("serde: referenced type not found")

	// ErrKindMismatch indicates a wire schema and a live type of the
	// same name but different kinds (composite versus enum).
	ErrKindMismatch = errors.New("serde: on-wire kind does not match live type")

	// ErrNoUsableConstructor indicates a live composite type that has
	// no constructor at all, typically an abstract or interface-shaped
	// type.
	ErrNoUsableConstructor = errors.New("serde: cannot deserialize: no usable constructor")

	// ErrMandatoryParameter indicates a constructor parameter that has
	// no source in the wire schema and does not accept absence.
	ErrMandatoryParameter = errors.New("serde: new parameter is mandatory, must be optional for evolution")

	// ErrUnexpectedBody indicates a body or value whose container
	// shape does not match its schema.
	ErrUnexpectedBody = errors.New("serde: unexpected body")

	// ErrUnknownDescriptor indicates a described value whose
	// descriptor is not listed in the accompanying schema blob.
	ErrUnknownDescriptor = errors.New("serde: descriptor not present in schema")

	// ErrOrdinalityChanged indicates an enum value whose name does not
	// match the live constant at its ordinal: the live enum's
	// constants were reordered since the value was written.
	ErrOrdinalityChanged = errors.New("serde: enum ordinality changed")

	// ErrUnknownEnumConstant indicates an enum value whose name no
	// longer exists among the live constants.
	ErrUnknownEnumConstant = errors.New("serde: unknown enum constant")

	// ErrEvolutionDisabled indicates a descriptor mismatch on a
	// [Context] configured without evolution.
	ErrEvolutionDisabled = errors.New("serde: schema evolution disabled")

	// ErrInvalidValue indicates a Go value handed to an encoder that
	// does not fit the declared type.
	ErrInvalidValue = errors.New("serde: value does not match declared type")

	// ErrInvalidType indicates a live type definition rejected at
	// registration.
	ErrInvalidType = errors.New("serde: invalid type definition")
)

// Error carries the context needed to diagnose a compatibility break:
// which operation failed, on which type and descriptor, and which
// field, parameter, or constant was involved.
type Error struct {
	// Op is the phase: "register", "resolve", "build", "read", or
	// "write".
	Op string
	// Type is the type name.
	Type string
	// Descriptor is the on-wire fingerprint, zero when not known.
	Descriptor wireschema.Fingerprint
	// Member names the field, parameter, or constant involved, if any.
	Member string
	// Err is the underlying error, usually wrapping a sentinel above.
	Err error
}

func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString(e.Op)
	if e.Type != "" {
		builder.WriteByte(' ')
		builder.WriteString(e.Type)
	}
	if !e.Descriptor.IsZero() {
		fmt.Fprintf(&builder, " [%s]", e.Descriptor.ShortString())
	}
	if e.Member != "" {
		builder.WriteByte(' ')
		builder.WriteString(e.Member)
	}
	builder.WriteString(": ")
	builder.WriteString(e.Err.Error())
	return builder.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
