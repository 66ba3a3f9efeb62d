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

// Package format renders a terminal outcome for people and for
// machines. Everything here works from the outcome alone; the server
// is never queried again, because a finished operation's record may
// already be gone.
package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/googleapis/confsync/internal/lro"
)

// dryRunMarker is appended to every summary of a simulated import so
// a reader cannot mistake it for an applied change.
const dryRunMarker = "DRY RUN — no changes were applied"

// ImportSummary is the category-partitioned result of an import, as
// reported in the operation's terminal payload.
type ImportSummary struct {
	DryRun     bool            `json:"dry_run"`
	Categories []CategoryCount `json:"categories"`
}

// CategoryCount counts what happened to one object category.
type CategoryCount struct {
	Name     string `json:"name"`
	Imported int    `json:"imported"`
	Ignored  int    `json:"ignored"`
}

// ParseImportSummary extracts the import summary from a success
// payload. The second return is false when the payload does not carry
// one, which is the normal case for exports.
func ParseImportSummary(payload json.RawMessage) (*ImportSummary, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	var s ImportSummary
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, false
	}
	if len(s.Categories) == 0 {
		return nil, false
	}
	return &s, true
}

// Text renders out as a short human-readable report.
func Text(out *lro.Outcome) string {
	switch out.Disposition {
	case lro.Success:
		return successText(out)
	case lro.Failed:
		return fmt.Sprintf("operation %s failed: %s", out.OperationID, out.Message)
	case lro.TimedOut:
		return fmt.Sprintf("operation %s timed out after %s", out.OperationID, out.Elapsed.Round(time.Second))
	case lro.NotFoundExhausted:
		return out.Message
	case lro.Aborted:
		return fmt.Sprintf("operation %s aborted: %s", out.OperationID, out.Message)
	default:
		return fmt.Sprintf("operation %s ended with unknown disposition", out.OperationID)
	}
}

func successText(out *lro.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "operation %s succeeded in %s", out.OperationID, out.Elapsed.Round(time.Second))
	summary, ok := ParseImportSummary(out.Payload)
	if !ok {
		if out.DryRun {
			fmt.Fprintf(&b, " (%s)", dryRunMarker)
		}
		return b.String()
	}
	if out.DryRun || summary.DryRun {
		fmt.Fprintf(&b, " (%s)", dryRunMarker)
	}
	for _, c := range summary.Categories {
		fmt.Fprintf(&b, "\n  %s: %d imported, %d ignored", c.Name, c.Imported, c.Ignored)
	}
	return b.String()
}

// machineOutcome is the raw machine-readable encoding of an outcome.
type machineOutcome struct {
	Disposition     string          `json:"disposition"`
	OperationID     string          `json:"op_id"`
	ElapsedMS       int64           `json:"elapsed_ms"`
	NotFoundRetries int             `json:"not_found_retries"`
	DryRun          bool            `json:"dry_run"`
	Message         string          `json:"message,omitempty"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// JSON renders out for machine consumption. The payload is passed
// through byte for byte.
func JSON(out *lro.Outcome) ([]byte, error) {
	return json.MarshalIndent(&machineOutcome{
		Disposition:     out.Disposition.String(),
		OperationID:     out.OperationID,
		ElapsedMS:       out.Elapsed.Milliseconds(),
		NotFoundRetries: out.NotFoundRetries,
		DryRun:          out.DryRun,
		Message:         out.Message,
		Payload:         out.Payload,
	}, "", "  ")
}
