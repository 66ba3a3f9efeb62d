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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/googleapis/confsync/internal/config"
	"github.com/googleapis/confsync/internal/lro"
	"github.com/googleapis/confsync/internal/progress"
	"github.com/googleapis/confsync/internal/remote"
)

// scriptedClient serves a fixed status sequence and records every
// submission.
type scriptedClient struct {
	opID    string
	steps   []*remote.StatusResponse
	polls   int
	submits []*remote.SubmitRequest
}

func (c *scriptedClient) Submit(ctx context.Context, req *remote.SubmitRequest) (string, error) {
	c.submits = append(c.submits, req)
	return c.opID, nil
}

func (c *scriptedClient) PollStatus(ctx context.Context, operationID string) (*remote.StatusResponse, error) {
	i := c.polls
	if i >= len(c.steps) {
		i = len(c.steps) - 1
	}
	c.polls++
	return c.steps[i], nil
}

// commits counts submissions that would apply a change: imports
// without the dry-run flag.
func (c *scriptedClient) commits() int {
	n := 0
	for _, req := range c.submits {
		if req.Import != nil && !req.Import.DryRun {
			n++
		}
	}
	return n
}

func fastPolicy() lro.Policy {
	return lro.Policy{
		PollInterval:       time.Millisecond,
		Timeout:            time.Second,
		MaxNotFoundRetries: 3,
	}
}

func newTestRunner(client remote.Client) (*runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &runner{
		client: client,
		policy: fastPolicy(),
		sink:   progress.Nop(),
		stdout: &stdout,
		stderr: &stderr,
	}, &stdout, &stderr
}

func TestRunnerDryRunImportHasNoCommit(t *testing.T) {
	client := &scriptedClient{
		opID: "op-1",
		steps: []*remote.StatusResponse{
			{Status: remote.StatusSucceeded, Info: json.RawMessage(`{"dry_run":true,"categories":[{"name":"dashboards","imported":2,"ignored":1}]}`)},
		},
	}
	r, stdout, _ := newTestRunner(client)
	req := &remote.SubmitRequest{
		Kind:      remote.KindImport,
		RequestID: "req-1",
		Import:    &remote.ImportBundle{Document: map[string]interface{}{"dashboards": []interface{}{}}, DryRun: true},
	}

	if err := r.run(context.Background(), req); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if got := client.commits(); got != 0 {
		t.Errorf("committing submissions = %d, want 0 for a dry run", got)
	}
	if !strings.Contains(stdout.String(), "DRY RUN") {
		t.Errorf("stdout = %q, want a dry-run marker", stdout.String())
	}
}

func TestRunnerExitCodes(t *testing.T) {
	for _, test := range []struct {
		name     string
		step     *remote.StatusResponse
		wantCode int
	}{
		{
			name:     "success",
			step:     &remote.StatusResponse{Status: remote.StatusSucceeded, Info: json.RawMessage(`{}`)},
			wantCode: 0,
		},
		{
			name:     "server failed",
			step:     &remote.StatusResponse{Status: remote.StatusFailed, Info: json.RawMessage(`"bad document"`)},
			wantCode: exitFailed,
		},
		{
			name:     "not found exhausted",
			step:     &remote.StatusResponse{Status: remote.StatusNotExists},
			wantCode: exitNotFoundExhausted,
		},
		{
			name:     "protocol mismatch",
			step:     &remote.StatusResponse{Status: remote.Status("paused")},
			wantCode: exitAborted,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			client := &scriptedClient{opID: "op-2", steps: []*remote.StatusResponse{test.step}}
			r, _, _ := newTestRunner(client)
			req := &remote.SubmitRequest{Kind: remote.KindExport, RequestID: "req-2", Export: &remote.ExportFilters{}}

			err := r.run(context.Background(), req)
			if test.wantCode == 0 {
				if err != nil {
					t.Fatalf("run() failed: %v", err)
				}
				return
			}
			var ec cli.ExitCoder
			if !errors.As(err, &ec) {
				t.Fatalf("run() error = %v, want an exit coder", err)
			}
			if ec.ExitCode() != test.wantCode {
				t.Errorf("exit code = %d, want %d", ec.ExitCode(), test.wantCode)
			}
		})
	}
}

func TestRunnerExportWritesOutputFile(t *testing.T) {
	payload := `{"dashboards":[{"id":"a"}]}`
	client := &scriptedClient{
		opID: "op-3",
		steps: []*remote.StatusResponse{
			{Status: remote.StatusSucceeded, Info: json.RawMessage(payload)},
		},
	}
	r, stdout, stderr := newTestRunner(client)
	r.outputPath = filepath.Join(t.TempDir(), "export.json")
	req := &remote.SubmitRequest{Kind: remote.KindExport, RequestID: "req-3", Export: &remote.ExportFilters{}}

	if err := r.run(context.Background(), req); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	got, err := os.ReadFile(r.outputPath)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if string(got) != payload {
		t.Errorf("output file = %q, want the payload byte for byte", got)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty when writing to a file", stdout.String())
	}
	if !strings.Contains(stderr.String(), "op-3") {
		t.Errorf("stderr = %q, want the summary line", stderr.String())
	}
}

func TestRunnerJSONOutput(t *testing.T) {
	client := &scriptedClient{
		opID: "op-4",
		steps: []*remote.StatusResponse{
			{Status: remote.StatusSucceeded, Info: json.RawMessage(`{"a":1}`)},
		},
	}
	r, stdout, _ := newTestRunner(client)
	r.jsonOut = true
	req := &remote.SubmitRequest{Kind: remote.KindExport, RequestID: "req-4", Export: &remote.ExportFilters{}}

	if err := r.run(context.Background(), req); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if decoded["disposition"] != "success" || decoded["op_id"] != "op-4" {
		t.Errorf("JSON outcome = %v, want success for op-4", decoded)
	}
}

func TestExportCommandSubmitsFilters(t *testing.T) {
	t.Setenv("CONFSYNC_BASE_URL", "https://test.example.com")
	client := &scriptedClient{
		opID: "op-5",
		steps: []*remote.StatusResponse{
			{Status: remote.StatusSucceeded, Info: json.RawMessage(`{}`)},
		},
	}
	orig := newClient
	newClient = func(conn *config.Connection) remote.Client { return client }
	defer func() { newClient = orig }()

	args := []string{
		"confsync", "export",
		"--type", "dashboard", "--type", "alert",
		"--name", "prod-*",
		"--poll-interval", "1ms",
		"--timeout", "200ms",
		"--json",
	}
	if err := Run(context.Background(), args...); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(client.submits) != 1 {
		t.Fatalf("submits = %d, want 1", len(client.submits))
	}
	req := client.submits[0]
	if req.Kind != remote.KindExport || req.Export == nil {
		t.Fatalf("submitted %+v, want an export request", req)
	}
	if req.RequestID == "" {
		t.Error("request id is empty, want a generated id")
	}
	wantTypes := []string{"dashboard", "alert"}
	if len(req.Export.Types) != 2 || req.Export.Types[0] != wantTypes[0] || req.Export.Types[1] != wantTypes[1] {
		t.Errorf("types = %v, want %v", req.Export.Types, wantTypes)
	}
	if req.Export.NamePattern != "prod-*" {
		t.Errorf("name pattern = %q, want %q", req.Export.NamePattern, "prod-*")
	}
}
