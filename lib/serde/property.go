// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/bureau-foundation/wirecodec/lib/codec"
	"github.com/bureau-foundation/wirecodec/lib/wireschema"
)

// valueCodec reads and writes one field value of a declared type.
// Null is accepted and produced for every declared type.
type valueCodec interface {
	read(rc *ReadContext, raw codec.RawMessage) (any, error)
	write(wc *WriteContext, value any) (any, error)
}

// property is one field of an on-wire composite schema bound to the
// codec for its declared type.
type property struct {
	name     string
	ref      wireschema.TypeRef
	codec    valueCodec
	optional bool
}

func newProperty(types *Types, field wireschema.Field) (property, error) {
	valueCodec, err := resolveCodec(types, field.Type)
	if err != nil {
		return property{}, err
	}
	return property{name: field.Name, ref: field.Type, codec: valueCodec}, nil
}

// resolveCodec returns the codec for a declared type. Named types are
// resolved by name only, so self-referential and mutually recursive
// types resolve without building their serializers.
func resolveCodec(types *Types, ref wireschema.TypeRef) (valueCodec, error) {
	if ref.IsPrimitive() {
		return primitiveCodec{ref: ref}, nil
	}
	if element, ok := ref.Elem(); ok {
		elementCodec, err := resolveCodec(types, element)
		if err != nil {
			return nil, err
		}
		return listCodec{element: elementCodec}, nil
	}
	name := string(ref)
	if _, ok := types.Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	return describedCodec{name: name}, nil
}

type primitiveCodec struct {
	ref wireschema.TypeRef
}

func (p primitiveCodec) read(_ *ReadContext, raw codec.RawMessage) (any, error) {
	if codec.IsNull(raw) {
		return nil, nil
	}
	var (
		value any
		err   error
	)
	switch p.ref {
	case wireschema.Bool:
		var v bool
		err = codec.Unmarshal(raw, &v)
		value = v
	case wireschema.Int64:
		var v int64
		err = codec.Unmarshal(raw, &v)
		value = v
	case wireschema.Uint64:
		var v uint64
		err = codec.Unmarshal(raw, &v)
		value = v
	case wireschema.Float64:
		var v float64
		err = codec.Unmarshal(raw, &v)
		value = v
	case wireschema.String:
		var v string
		err = codec.Unmarshal(raw, &v)
		value = v
	case wireschema.Bytes:
		var v []byte
		err = codec.Unmarshal(raw, &v)
		value = v
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnexpectedBody, p.ref, err)
	}
	return value, nil
}

func (p primitiveCodec) write(_ *WriteContext, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	converted, ok := convertPrimitive(p.ref, value)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not %s", ErrInvalidValue, value, p.ref)
	}
	return converted, nil
}

// convertPrimitive normalizes a Go value to the canonical Go type of
// ref. Named types with a matching underlying kind are accepted, as is
// json.Number for numeric types.
func convertPrimitive(ref wireschema.TypeRef, value any) (any, bool) {
	if number, ok := value.(json.Number); ok {
		switch ref {
		case wireschema.Int64:
			v, err := number.Int64()
			return v, err == nil
		case wireschema.Uint64:
			v, err := strconv.ParseUint(number.String(), 10, 64)
			return v, err == nil
		case wireschema.Float64:
			v, err := number.Float64()
			return v, err == nil
		}
		return nil, false
	}

	v := reflect.ValueOf(value)
	switch ref {
	case wireschema.Bool:
		if v.Kind() == reflect.Bool {
			return v.Bool(), true
		}
	case wireschema.Int64:
		switch {
		case v.CanInt():
			return v.Int(), true
		case v.CanUint():
			if v.Uint() <= math.MaxInt64 {
				return int64(v.Uint()), true
			}
		case v.CanFloat():
			if f := v.Float(); f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
				return int64(f), true
			}
		}
	case wireschema.Uint64:
		switch {
		case v.CanUint():
			return v.Uint(), true
		case v.CanInt():
			if v.Int() >= 0 {
				return uint64(v.Int()), true
			}
		case v.CanFloat():
			if f := v.Float(); f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 {
				return uint64(f), true
			}
		}
	case wireschema.Float64:
		switch {
		case v.CanFloat():
			return v.Float(), true
		case v.CanInt():
			return float64(v.Int()), true
		case v.CanUint():
			return float64(v.Uint()), true
		}
	case wireschema.String:
		if v.Kind() == reflect.String {
			return v.String(), true
		}
	case wireschema.Bytes:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), true
		}
	}
	return nil, false
}

// listCodec reads lists as []any and writes any slice or array.
type listCodec struct {
	element valueCodec
}

func (l listCodec) read(rc *ReadContext, raw codec.RawMessage) (any, error) {
	if codec.IsNull(raw) {
		return nil, nil
	}
	elements, err := codec.Sequence(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: reading list: %v", ErrUnexpectedBody, err)
	}
	result := make([]any, len(elements))
	for i, element := range elements {
		value, err := l.element.read(rc, element)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		result[i] = value
	}
	return result, nil
}

func (l listCodec) write(wc *WriteContext, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T is not a list", ErrInvalidValue, value)
	}
	if v.Kind() == reflect.Slice && v.IsNil() {
		return nil, nil
	}
	result := make([]any, v.Len())
	for i := range result {
		encoded, err := l.element.write(wc, v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		result[i] = encoded
	}
	return result, nil
}

// describedCodec reads and writes a nested value of a named type as a
// described container carrying its own descriptor.
type describedCodec struct {
	name string
}

func (d describedCodec) read(rc *ReadContext, raw codec.RawMessage) (any, error) {
	if codec.IsNull(raw) {
		return nil, nil
	}
	return rc.readDescribed(raw, d.name)
}

func (d describedCodec) write(wc *WriteContext, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return wc.writeDescribed(d.name, value)
}
