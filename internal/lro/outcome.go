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

package lro

import (
	"encoding/json"
	"time"
)

// Disposition classifies how a tracked operation ended.
type Disposition int

const (
	// Success means the service reported the operation succeeded.
	Success Disposition = iota
	// Failed means the service reported the operation failed.
	Failed
	// TimedOut means the wall-clock deadline expired first.
	TimedOut
	// NotFoundExhausted means the operation id never resolved within
	// the not-found retry budget.
	NotFoundExhausted
	// Aborted means tracking stopped for a client-side reason: an
	// unrecognized status or caller cancellation.
	Aborted
)

func (d Disposition) String() string {
	switch d {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	case NotFoundExhausted:
		return "not_found_exhausted"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the single terminal result of one tracking run. Exactly
// one Outcome is produced per run; no polling happens after it.
type Outcome struct {
	Disposition Disposition
	OperationID string

	// Payload is the server's terminal info, set only on Success. It
	// is captured from the first succeeded observation: the service
	// deletes the operation record after that read, so there is no
	// second chance.
	Payload json.RawMessage

	// Message is the server's failure description on Failed, and the
	// abort reason on Aborted.
	Message string

	// Elapsed is the wall-clock time the run took.
	Elapsed time.Duration

	// NotFoundRetries is how many not_exists observations the run
	// absorbed.
	NotFoundRetries int

	// DryRun marks the outcome of a simulated import. Consumers must
	// never present a dry-run result as an applied change.
	DryRun bool
}
