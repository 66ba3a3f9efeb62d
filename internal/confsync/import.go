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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/googleapis/confsync/internal/remote"
)

var (
	errMissingImportFile = errors.New("an import document file is required")
	errEmptyImportFile   = errors.New("import document is empty")
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a configuration document",
		UsageText: "confsync import <file> [--strict] [--dry-run] [--mapping key=old:new]...",
		Flags: append(append(connectionFlags(), policyFlags()...),
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "replace the target's configuration instead of merging into it",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "validate and plan the import without applying any change",
			},
			&cli.StringSliceFlag{
				Name:  "mapping",
				Usage: "identifier mapping as key=old:new; repeatable, merged over the document's mappings section",
			},
		),
		Action: runImport,
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return errMissingImportFile
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading import document: %w", err)
	}
	bundle, err := buildImportBundle(data, cmd.StringSlice("mapping"), cmd.Bool("strict"), cmd.Bool("dry-run"))
	if err != nil {
		return err
	}
	r, err := newRunner(cmd, remote.KindImport)
	if err != nil {
		return err
	}
	req := &remote.SubmitRequest{
		Kind:      remote.KindImport,
		RequestID: uuid.NewString(),
		Import:    bundle,
	}
	return r.run(ctx, req)
}

// buildImportBundle parses the YAML document and assembles the import
// payload. A top-level "mappings" section in the document is merged
// with --mapping flags; flags win on conflict. The strict and dry-run
// flags are forwarded verbatim; the service interprets them.
func buildImportBundle(data []byte, mappingFlags []string, strict, dryRun bool) (*remote.ImportBundle, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing import document: %w", err)
	}
	if len(doc) == 0 {
		return nil, errEmptyImportFile
	}
	mappings := map[string]map[string]string{}
	if raw, ok := doc["mappings"]; ok {
		delete(doc, "mappings")
		parsed, err := documentMappings(raw)
		if err != nil {
			return nil, err
		}
		mappings = parsed
	}
	for _, flag := range mappingFlags {
		key, old, updated, err := parseMappingFlag(flag)
		if err != nil {
			return nil, err
		}
		if mappings[key] == nil {
			mappings[key] = map[string]string{}
		}
		mappings[key][old] = updated
	}
	if len(mappings) == 0 {
		mappings = nil
	}
	return &remote.ImportBundle{
		Document: doc,
		Mappings: mappings,
		Strict:   strict,
		DryRun:   dryRun,
	}, nil
}

func documentMappings(raw interface{}) (map[string]map[string]string, error) {
	section, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("mappings section must be a table of tables, got %T", raw)
	}
	mappings := map[string]map[string]string{}
	for key, inner := range section {
		table, ok := inner.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("mappings.%s must be a table of old: new pairs, got %T", key, inner)
		}
		mappings[key] = map[string]string{}
		for old, updated := range table {
			s, ok := updated.(string)
			if !ok {
				return nil, fmt.Errorf("mappings.%s.%s must be a string, got %T", key, old, updated)
			}
			mappings[key][old] = s
		}
	}
	return mappings, nil
}

func parseMappingFlag(flag string) (key, old, updated string, err error) {
	key, rest, ok := strings.Cut(flag, "=")
	if ok {
		old, updated, ok = strings.Cut(rest, ":")
	}
	if !ok || key == "" || old == "" || updated == "" {
		return "", "", "", fmt.Errorf("malformed --mapping %q, want key=old:new", flag)
	}
	return key, old, updated, nil
}
