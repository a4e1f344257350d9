// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import "github.com/bureau-foundation/wirecodec/cmd/wirecodec/cli"

// Commands returns the envelope commands, mounted directly under the
// root command.
func Commands() []*cli.Command {
	return []*cli.Command{
		schemaCommand(),
		decodeCommand(),
		encodeCommand(),
		diagCommand(),
		fingerprintCommand(),
	}
}
