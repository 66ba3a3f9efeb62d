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

package confsync

import (
	"context"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/googleapis/confsync/internal/remote"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export configuration matching the given filters",
		UsageText: "confsync export [--type kind]... [--name pattern] [--modified-since timestamp] [--output file]",
		Flags: append(append(connectionFlags(), policyFlags()...),
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "object type to include; repeatable, default all",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "only include objects whose name matches this pattern",
			},
			&cli.StringFlag{
				Name:  "modified-since",
				Usage: "only include objects modified at or after this RFC 3339 timestamp",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "write the exported document to this file instead of stdout",
			},
		),
		Action: runExport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd, remote.KindExport)
	if err != nil {
		return err
	}
	r.outputPath = cmd.String("output")
	req := &remote.SubmitRequest{
		Kind:      remote.KindExport,
		RequestID: uuid.NewString(),
		Export: &remote.ExportFilters{
			Types:         cmd.StringSlice("type"),
			NamePattern:   cmd.String("name"),
			ModifiedSince: cmd.String("modified-since"),
		},
	}
	return r.run(ctx, req)
}
