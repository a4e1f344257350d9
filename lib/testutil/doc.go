// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for wirecodec packages.
//
// [RequireReceive], [RequireReceiveN], and [RequireClosed] encapsulate
// the timeout safety valve pattern (select with time.After fallback)
// so that concurrency tests do not need direct time.After calls and a
// deadlocked test fails instead of hanging.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no wirecodec-internal dependencies.
package testutil
