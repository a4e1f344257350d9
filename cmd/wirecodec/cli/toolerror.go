// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that scripts can tell bad
// input apart from bad data without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates invalid invocation: wrong argument
	// count, missing flags, unusable configuration.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced type or file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryInternal indicates a failure processing the data itself:
	// malformed envelopes, I/O errors, encode or decode failures.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error so errors.Is and errors.As still see the full chain.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional next step appended to the message.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
