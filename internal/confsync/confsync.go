// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package confsync implements the confsync CLI: bulk configuration
// export and import against a remote configuration service, tracked
// through the service's long-running-operation API.
package confsync

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Run executes the confsync CLI with the given command line
// arguments.
func Run(ctx context.Context, arg ...string) error {
	cmd := newConfsyncCommand()
	slog.Debug("confsync", "arguments", arg)
	return cmd.Run(ctx, arg)
}

func newConfsyncCommand() *cli.Command {
	return &cli.Command{
		Name:      "confsync",
		Usage:     "bulk configuration export and import for a remote configuration service",
		UsageText: "confsync <command> [arguments]",
		Commands: []*cli.Command{
			exportCommand(),
			importCommand(),
			versionCommand(),
		},
	}
}
