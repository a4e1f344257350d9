// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/bureau-foundation/wirecodec/lib/config"
	"github.com/spf13/pflag"
)

// ConfigFlag adds --config to a command's parameter struct and resolves
// the effective configuration. Embed it in a params struct; [BindFlags]
// calls AddFlags.
type ConfigFlag struct {
	Path string
}

// AddFlags registers --config on flagSet.
func (f *ConfigFlag) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Path, "config", "", "path to wirecodec.yaml (default: $"+config.EnvVar+")")
}

// LoadConfig returns the configuration named by --config, else the one
// named by WIRECODEC_CONFIG, else [config.Default]. The result is
// validated.
func (f *ConfigFlag) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case f.Path != "":
		cfg, err = config.LoadFile(f.Path)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, Validation("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}
