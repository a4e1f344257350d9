// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the primitive value codec underneath wirecodec: the
// CBOR encoding and decoding modes every other package goes through.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Schema fingerprints are hashes over encoded descriptors, so the same
// descriptor must always produce the same bytes.
//
// Values that cannot be decoded until their schema is known travel as
// [RawMessage]. [Sequence] splits an encoded array into its elements
// without decoding them; the evolution reader relies on this to
// consume every on-wire field exactly once, in write order, whether
// or not the running program still has a home for the value.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Described containers (schema descriptors, described objects,
// envelopes) are CBOR tags; [Tag] writes them and [RawTag] reads them.
package codec
