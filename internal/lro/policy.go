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

// Package lro tracks one long-running operation on the configuration
// service from submission to a terminal outcome. It owns the
// client-side protocol around the service's eventual-consistency
// quirks: an operation id that briefly does not resolve, and operation
// records that are deleted after their first successful read.
package lro

import "time"

// Policy configures how an operation is polled. The zero value is
// usable; unset fields fall back to the defaults below.
type Policy struct {
	// PollInterval is the pause between status checks.
	PollInterval time.Duration

	// Timeout bounds the whole tracking run in wall-clock time,
	// including the network time of each status call.
	Timeout time.Duration

	// MaxNotFoundRetries is how many not_exists observations are
	// tolerated before the operation is given up on. A transient
	// not_exists is a normal part of the protocol, so the budget must
	// be at least 1.
	MaxNotFoundRetries int

	// NotFoundDelayFactor stretches the pause following a not_exists
	// observation, giving the status store extra time to catch up.
	// Values at or below 1 leave the interval unchanged.
	NotFoundDelayFactor float64
}

const (
	defaultPollInterval       = time.Second
	defaultTimeout            = 5 * time.Minute
	defaultMaxNotFoundRetries = 3
)

func (p Policy) withDefaults() Policy {
	if p.PollInterval <= 0 {
		p.PollInterval = defaultPollInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	if p.MaxNotFoundRetries <= 0 {
		p.MaxNotFoundRetries = defaultMaxNotFoundRetries
	}
	return p
}

// Handle identifies a submitted operation. The id is an opaque
// capability token scoped to one tracker; it is not guaranteed to
// resolve again after a terminal read.
type Handle struct {
	OperationID string
	SubmittedAt time.Time
}
