// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serde

// Slot is one constructor argument position. A zero Slot is "not
// populated": the parameter had no source on the wire. A populated
// slot may still hold nil when the wire carried an explicit null.
type Slot struct {
	value any
	set   bool
}

// Present returns a populated slot holding value.
func Present(value any) Slot {
	return Slot{value: value, set: true}
}

// Get returns the slot's value and whether it was populated.
func (s Slot) Get() (any, bool) {
	return s.value, s.set
}

// IsSet reports whether the slot was populated.
func (s Slot) IsSet() bool {
	return s.set
}

// Args is the constructor argument buffer: one slot per parameter of
// the chosen constructor, addressed by parameter index.
type Args []Slot

// Value returns the value at index, or nil if the slot is unpopulated
// or index is out of range.
func (a Args) Value(index int) any {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index].value
}

// Has reports whether the slot at index was populated.
func (a Args) Has(index int) bool {
	return index >= 0 && index < len(a) && a[index].set
}

// Arg returns the value at index converted to T. It returns the zero
// value of T when the slot is unpopulated, holds nil, or holds a value
// of another type. Constructors use it to unpack their arguments:
//
//	New: func(args serde.Args) (any, error) {
//	    return Person{Name: serde.Arg[string](args, 0), Age: serde.Arg[int64](args, 1)}, nil
//	}
func Arg[T any](args Args, index int) T {
	value, _ := args.Value(index).(T)
	return value
}

// ArgList returns the list at index with every element converted to
// T. Elements of another type become the zero value of T.
func ArgList[T any](args Args, index int) []T {
	elements, ok := args.Value(index).([]any)
	if !ok {
		return nil
	}
	result := make([]T, len(elements))
	for i, element := range elements {
		result[i], _ = element.(T)
	}
	return result
}
