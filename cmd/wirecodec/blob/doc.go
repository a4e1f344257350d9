// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob implements the wirecodec commands that operate on
// envelopes: schema, decode, encode, diag, and fingerprint.
//
// schema and diag work on any envelope without type definitions.
// decode, encode, and fingerprint load live types from typedef files
// named by --types and the configuration's types.files, and run them
// through a serde context whose evolution policy follows
// evolution.enabled and --no-evolution.
//
// Input comes from a trailing file argument or stdin; --hex accepts
// hex-encoded CBOR.
package blob
