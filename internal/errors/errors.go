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

// Package errors defines the wrapped error type used for failures to
// reach or be understood by the configuration service.
package errors

import "fmt"

// ClientError describes a failed call against the configuration
// service. Op names the call that failed ("submit" or "poll").
type ClientError struct {
	Op     string
	Reason string
	Cause  error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// TransportError wraps cause as a ClientError for the given call.
func TransportError(op string, cause error, template string, params ...interface{}) error {
	return &ClientError{
		Op:     op,
		Reason: fmt.Sprintf(template, params...),
		Cause:  cause,
	}
}
