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
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/googleapis/gax-go/v2"

	"github.com/googleapis/confsync/internal/errors"
	"github.com/googleapis/confsync/internal/progress"
	"github.com/googleapis/confsync/internal/remote"
)

// Tracker drives one operation at a time: submit, then poll at a
// fixed interval until a terminal status, the not-found budget, or
// the deadline is reached. A Tracker holds no state between runs and
// is not safe for concurrent use within a single run; independent
// trackers share nothing.
type Tracker struct {
	client remote.Client
	policy Policy
	sink   progress.Sink

	// sleep and now are replaced in tests to script the clock.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewTracker returns a Tracker using the given client and policy. A
// nil sink discards progress updates.
func NewTracker(client remote.Client, policy Policy, sink progress.Sink) *Tracker {
	if sink == nil {
		sink = progress.Nop()
	}
	return &Tracker{
		client: client,
		policy: policy.withDefaults(),
		sink:   sink,
		sleep:  gax.Sleep,
		now:    time.Now,
	}
}

// Run submits req and tracks the resulting operation to a terminal
// outcome. The returned error is non-nil only when submission itself
// fails before an operation id is obtained; every later condition,
// fatal or not, is reported through the Outcome so that callers can
// map it to an exit code deterministically.
func (t *Tracker) Run(ctx context.Context, req *remote.SubmitRequest) (*Outcome, error) {
	handle, err := t.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	out := t.poll(ctx, handle)
	out.DryRun = req.Import != nil && req.Import.DryRun
	t.sink.Done()
	slog.Info("operation finished",
		"op_id", out.OperationID,
		"disposition", out.Disposition.String(),
		"elapsed", out.Elapsed.Round(time.Millisecond),
		"not_found_retries", out.NotFoundRetries,
	)
	return out, nil
}

func (t *Tracker) submit(ctx context.Context, req *remote.SubmitRequest) (Handle, error) {
	id, err := t.client.Submit(ctx, req)
	if err != nil {
		return Handle{}, fmt.Errorf("submitting %s operation: %w", req.Kind, err)
	}
	h := Handle{OperationID: id, SubmittedAt: t.now()}
	slog.Info("operation submitted", "kind", req.Kind, "op_id", id, "request_id", req.RequestID)
	return h, nil
}

// poll is the state machine. It observes statuses strictly
// sequentially: each iteration checks the deadline, sleeps once, and
// issues one status call. The deadline is measured against the wall
// clock, so slow status calls do not extend it.
func (t *Tracker) poll(ctx context.Context, h Handle) *Outcome {
	var (
		start    = t.now()
		retries  int
		interval = t.policy.PollInterval
	)
	for {
		elapsed := t.now().Sub(start)
		if elapsed > t.policy.Timeout {
			slog.Warn("operation deadline expired", "op_id", h.OperationID, "elapsed", elapsed, "timeout", t.policy.Timeout)
			return &Outcome{
				Disposition:     TimedOut,
				OperationID:     h.OperationID,
				Elapsed:         elapsed,
				NotFoundRetries: retries,
			}
		}
		if err := t.sleep(ctx, interval); err != nil {
			return &Outcome{
				Disposition:     Aborted,
				OperationID:     h.OperationID,
				Message:         fmt.Sprintf("canceled while waiting for status: %v", err),
				Elapsed:         t.now().Sub(start),
				NotFoundRetries: retries,
			}
		}
		interval = t.policy.PollInterval

		resp, err := t.client.PollStatus(ctx, h.OperationID)
		if err != nil {
			// Transient by definition: the deadline is the only
			// backstop, and the not-found budget is untouched.
			slog.Warn("status check failed, will retry", "op_id", h.OperationID, "error", err)
			continue
		}
		elapsed = t.now().Sub(start)

		switch resp.Status {
		case remote.StatusSucceeded:
			// The record is gone after this read. The payload leaves
			// this iteration with us or not at all.
			return &Outcome{
				Disposition:     Success,
				OperationID:     h.OperationID,
				Payload:         resp.Info,
				Elapsed:         elapsed,
				NotFoundRetries: retries,
			}

		case remote.StatusFailed:
			return &Outcome{
				Disposition:     Failed,
				OperationID:     h.OperationID,
				Message:         failureMessage(resp.Info),
				Elapsed:         elapsed,
				NotFoundRetries: retries,
			}

		case remote.StatusNotExists:
			retries++
			slog.Info("operation not visible yet", "op_id", h.OperationID, "attempt", retries, "budget", t.policy.MaxNotFoundRetries)
			if retries >= t.policy.MaxNotFoundRetries {
				return &Outcome{
					Disposition:     NotFoundExhausted,
					OperationID:     h.OperationID,
					Message:         fmt.Sprintf("operation %s not found after %d status checks; it may never have started, or its result was already consumed", h.OperationID, retries),
					Elapsed:         elapsed,
					NotFoundRetries: retries,
				}
			}
			if f := t.policy.NotFoundDelayFactor; f > 1 {
				interval = time.Duration(float64(t.policy.PollInterval) * f)
			}

		case remote.StatusInProgress:
			t.sink.Update(string(resp.Status), elapsed)

		default:
			return &Outcome{
				Disposition:     Aborted,
				OperationID:     h.OperationID,
				Message:         fmt.Sprintf("service reported unrecognized status %q; check that the confsync client and the service are version compatible", resp.Status),
				Elapsed:         elapsed,
				NotFoundRetries: retries,
			}
		}
	}
}

// failureMessage renders the server's failure info, which may be a
// bare JSON string or a structured object.
func failureMessage(info json.RawMessage) string {
	if len(info) == 0 {
		return "operation failed without details"
	}
	var s string
	if err := json.Unmarshal(info, &s); err == nil {
		return s
	}
	return string(info)
}

// IsTransport reports whether err stems from a transport failure
// against the service, as opposed to a usage error.
func IsTransport(err error) bool {
	var ce *errors.ClientError
	return stderrors.As(err, &ce)
}
