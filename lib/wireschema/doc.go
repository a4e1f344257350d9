// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wireschema is the type schema model of the wirecodec wire
// format: the descriptors that travel alongside every encoded value
// and describe the shape of its type at the time it was written.
//
// A [TypeSchema] is either a [Composite] (a struct-like type: ordered
// named, typed fields) or a [Restricted] (an enum: named choices with
// explicit ordinals). Every schema carries a [Fingerprint], a keyed
// BLAKE3 hash over the deterministic CBOR encoding of its content,
// which is both its wire identifier and the key under which decoders
// cache serializers. Construct schemas with [NewComposite] and
// [NewRestricted]; the Fields and Choices slices must not be modified
// afterwards or the fingerprint goes stale.
//
// Two concerns share the same structure and must not be confused:
//
//   - Fingerprinting. A live composite type lists its fields sorted by
//     name, so reordering fields in Go source never changes its
//     fingerprint.
//   - Decode order. The Fields slice of a schema read off the wire is
//     the order the writer emitted values in. Readers consume values in
//     exactly that order, whatever order the running program prefers.
//
// # Wire format
//
// All containers are CBOR tags:
//
//	51000  envelope    [schema blob, body]
//	51001  composite   [name, fingerprint, [[field, type], ...]]
//	51002  restricted  [name, fingerprint, representation, [[choice, ordinal], ...]]
//	51010  described   [fingerprint, [value, ...]]
//
// The schema blob is an array of composite and restricted descriptors.
// [ParseDescriptor] recomputes each fingerprint and rejects descriptors
// whose stated fingerprint disagrees with their content.
package wireschema
