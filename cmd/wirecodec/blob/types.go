// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"log/slog"
	"os"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/lib/config"
	"github.com/bureau-foundation/wirecodec/lib/serde"
	"github.com/bureau-foundation/wirecodec/lib/typedef"
)

// outputParams is embedded by every command: configuration and colour.
type outputParams struct {
	cli.ConfigFlag
}

// load resolves the configuration. When --config names a file, the
// logger is rebuilt at that file's level; otherwise the caller's
// logger (built by main from the same sources) is kept.
func (p *outputParams) load(logger *slog.Logger) (*config.Config, *slog.Logger, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if p.Path != "" {
		logger = cli.NewCommandLogger(cfg.LogLevel())
	}
	return cfg, logger, nil
}

// typesParams is embedded by commands that need live types.
type typesParams struct {
	outputParams
	Types       []string `json:"types"        flag:"types,t"      desc:"type definition file (YAML or JSONC); repeatable, added to types.files from the config"`
	NoEvolution bool     `json:"no_evolution" flag:"no-evolution" desc:"fail on any descriptor mismatch instead of evolving"`
}

// session is the resolved state shared by the type-aware commands.
type session struct {
	config  *config.Config
	logger  *slog.Logger
	types   *serde.Types
	context *serde.Context
	color   bool
}

// open loads configuration and type definitions and builds the
// serialization context.
func (p *typesParams) open(logger *slog.Logger) (*session, error) {
	cfg, logger, err := p.load(logger)
	if err != nil {
		return nil, err
	}

	files := append(append([]string(nil), cfg.Types.Files...), p.Types...)
	if len(files) == 0 {
		return nil, cli.Validation("no type definitions").
			WithHint("Pass --types <file> or set types.files in the configuration.")
	}
	definitions, err := typedef.Load(files...)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	types := serde.NewTypes()
	if err := definitions.Register(types); err != nil {
		return nil, cli.Validation("registering types: %w", err)
	}
	logger.Debug("type definitions loaded", "files", files, "types", len(types.Names()))

	factory := serde.NewFactory(types, serde.FactoryOptions{Logger: logger})
	return &session{
		config: cfg,
		logger: logger,
		types:  types,
		context: serde.NewContext(factory, serde.ContextOptions{
			Logger:           logger,
			DisableEvolution: p.NoEvolution || !cfg.Evolution.Enabled,
		}),
		color: cli.ColorEnabled(cfg.Output.Color, os.Stdout),
	}, nil
}
