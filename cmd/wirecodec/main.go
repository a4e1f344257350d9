// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"
	"github.com/bureau-foundation/wirecodec/cmd/wirecodec/commands"
	"github.com/bureau-foundation/wirecodec/lib/config"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant "error:"
		// line for those.
		if _, ok := err.(interface{ ExitCode() int }); !ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitStatus(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The logger level comes from WIRECODEC_CONFIG when set; a broken
	// file is reported by the command that loads it.
	level := config.Default().LogLevel()
	if cfg, err := (&cli.ConfigFlag{}).LoadConfig(); err == nil {
		level = cfg.LogLevel()
	}
	return commands.Root(cli.NewCommandLogger(level)).ExecuteContext(ctx, os.Args[1:])
}
