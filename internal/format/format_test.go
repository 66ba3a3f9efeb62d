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

package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/googleapis/confsync/internal/lro"
)

func TestTextSuccessWithImportSummary(t *testing.T) {
	payload := `{"dry_run":false,"categories":[{"name":"dashboards","imported":12,"ignored":3},{"name":"alerts","imported":4,"ignored":0}]}`
	out := &lro.Outcome{
		Disposition: lro.Success,
		OperationID: "op-1",
		Payload:     json.RawMessage(payload),
		Elapsed:     12 * time.Second,
	}
	got := Text(out)
	for _, want := range []string{"op-1", "dashboards: 12 imported, 3 ignored", "alerts: 4 imported, 0 ignored"} {
		if !strings.Contains(got, want) {
			t.Errorf("Text() = %q, want it to contain %q", got, want)
		}
	}
	if strings.Contains(got, "DRY RUN") {
		t.Errorf("Text() = %q, must not carry a dry-run marker for an applied import", got)
	}
}

func TestTextMarksDryRun(t *testing.T) {
	for _, test := range []struct {
		name string
		out  *lro.Outcome
	}{
		{
			name: "tagged by the controller",
			out: &lro.Outcome{
				Disposition: lro.Success,
				OperationID: "op-2",
				Payload:     json.RawMessage(`{"categories":[{"name":"dashboards","imported":2,"ignored":1}]}`),
				DryRun:      true,
			},
		},
		{
			name: "tagged by the server payload",
			out: &lro.Outcome{
				Disposition: lro.Success,
				OperationID: "op-2",
				Payload:     json.RawMessage(`{"dry_run":true,"categories":[{"name":"dashboards","imported":2,"ignored":1}]}`),
			},
		},
		{
			name: "tagged without a parsable summary",
			out: &lro.Outcome{
				Disposition: lro.Success,
				OperationID: "op-2",
				Payload:     json.RawMessage(`{"objects":[]}`),
				DryRun:      true,
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := Text(test.out); !strings.Contains(got, "DRY RUN — no changes were applied") {
				t.Errorf("Text() = %q, want an explicit dry-run marker", got)
			}
		})
	}
}

func TestTextTerminalFailures(t *testing.T) {
	for _, test := range []struct {
		name string
		out  *lro.Outcome
		want []string
	}{
		{
			name: "server failed",
			out:  &lro.Outcome{Disposition: lro.Failed, OperationID: "op-3", Message: "invalid document"},
			want: []string{"op-3", "failed", "invalid document"},
		},
		{
			name: "timed out",
			out:  &lro.Outcome{Disposition: lro.TimedOut, OperationID: "op-4", Elapsed: 5 * time.Minute},
			want: []string{"op-4", "timed out", "5m0s"},
		},
		{
			name: "not found exhausted",
			out:  &lro.Outcome{Disposition: lro.NotFoundExhausted, OperationID: "op-5", Message: "operation op-5 not found after 5 status checks; it may never have started, or its result was already consumed"},
			want: []string{"op-5", "5 status checks"},
		},
		{
			name: "aborted",
			out:  &lro.Outcome{Disposition: lro.Aborted, OperationID: "op-6", Message: `service reported unrecognized status "paused"`},
			want: []string{"op-6", "aborted", "paused"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := Text(test.out)
			for _, want := range test.want {
				if !strings.Contains(got, want) {
					t.Errorf("Text() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestJSONPassesPayloadThrough(t *testing.T) {
	payload := `{"a":1,"nested":{"b":[1,2,3]}}`
	out := &lro.Outcome{
		Disposition:     lro.Success,
		OperationID:     "op-7",
		Payload:         json.RawMessage(payload),
		Elapsed:         1500 * time.Millisecond,
		NotFoundRetries: 1,
		DryRun:          true,
	}
	b, err := JSON(out)
	if err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("JSON() produced invalid JSON: %v", err)
	}
	var wantPayload map[string]any
	if err := json.Unmarshal([]byte(payload), &wantPayload); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"disposition":       "success",
		"op_id":             "op-7",
		"elapsed_ms":        float64(1500),
		"not_found_retries": float64(1),
		"dry_run":           true,
		"payload":           wantPayload,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseImportSummary(t *testing.T) {
	for _, test := range []struct {
		name    string
		payload string
		wantOK  bool
	}{
		{"import summary", `{"categories":[{"name":"x","imported":1,"ignored":0}]}`, true},
		{"export document", `{"objects":[{"id":"a"}]}`, false},
		{"empty payload", ``, false},
		{"non-object payload", `"done"`, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, ok := ParseImportSummary(json.RawMessage(test.payload))
			if ok != test.wantOK {
				t.Errorf("ParseImportSummary() ok = %v, want %v", ok, test.wantOK)
			}
		})
	}
}
