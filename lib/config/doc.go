// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for wirecodec
// tools and services.
//
// Configuration is loaded from a single file specified by either the
// WIRECODEC_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search.
//
// The configuration file supports environment-specific sections
// (development, production) that override base values when
// [Config].Environment matches. Production defaults to warn-level
// logging.
//
// Variable expansion is performed on type file paths after loading:
// ${HOME}, ${WIRECODEC_CONFIG_DIR}, and ${VAR:-default} patterns are
// expanded, and relative paths are anchored at the config file's
// directory.
//
// Key exports:
//
//   - [Config] -- master struct with Types, Evolution, Log, Output
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other wirecodec packages.
package config
