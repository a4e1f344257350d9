// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package serde encodes live Go values into self-describing envelopes
// and decodes envelopes back into live values, tolerating changes to
// the live types between the two.
//
// Live types are declared explicitly in a [Types] table: a
// [CompositeType] lists its fields, a field accessor, and one or more
// constructors; an [EnumType] lists its constants in ordinal order.
// No reflection over Go structs is involved.
//
// A [Context] writes every value with the live type's own serializer
// and records the live schema in the envelope. On decode, each
// described value's descriptor is compared with the live type's
// fingerprint. Equal fingerprints use the plain serializer. Different
// fingerprints go to the [Factory], which builds an evolution
// serializer once per descriptor:
//
//   - composite types read every on-wire field in wire order, route
//     each value to the best constructor's argument slot (or discard
//     it), and leave new optional parameters unpopulated;
//   - enum types resolve constants by name, applying renames, and
//     ignore the stale ordinal.
//
// Evolution serializers only read. Errors are permanent and carry the
// type name, descriptor, and member involved; see [Error].
package serde
