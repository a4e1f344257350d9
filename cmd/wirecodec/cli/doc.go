// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the wirecodec
// binary.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct bound to a
// [pflag.FlagSet] through struct tags ([BindFlags]), and a Run function.
// Commands are assembled into a tree by the commands package and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Output helpers: [JSONOutput] adds --json to a command and highlights
// JSON with chroma when colour is enabled; [NewCommandLogger] picks a
// text or JSON slog handler depending on whether stderr is a terminal.
// [ConfigFlag] adds --config and resolves the configuration file.
// Errors carry an [ErrorCategory] through [ToolError]; [ExitStatus]
// maps them to process exit codes.
package cli
