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

// Package remote is the client SDK for the configuration service's
// bulk export/import API. It covers exactly two calls: submitting an
// operation and polling its status.
package remote

import (
	"context"
	"encoding/json"
)

// Kind selects which bulk operation a request starts.
type Kind string

const (
	KindExport Kind = "export"
	KindImport Kind = "import"
)

// Status is an operation status as reported by the service.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"

	// StatusNotExists means the operation id is currently
	// unresolvable. The service reports this both for ids that never
	// existed and, transiently, for operations whose creation has not
	// propagated to the status store yet. It is also what a finished
	// operation looks like after its record has been garbage
	// collected.
	StatusNotExists Status = "not_exists"
)

// Known reports whether s is a status this client version understands.
// An unknown status means the client and service disagree about the
// protocol and must not be treated as progress.
func (s Status) Known() bool {
	switch s {
	case StatusInProgress, StatusSucceeded, StatusFailed, StatusNotExists:
		return true
	}
	return false
}

// ExportFilters narrows which configuration objects an export
// includes. Empty fields match everything.
type ExportFilters struct {
	Types         []string `json:"types,omitempty"`
	NamePattern   string   `json:"name_pattern,omitempty"`
	ModifiedSince string   `json:"modified_since,omitempty"`
}

// ImportBundle is the payload of an import submission: the parsed
// configuration document, optional identifier mapping tables, and the
// mode flags. The flags are forwarded verbatim; the service, not this
// client, interprets them.
type ImportBundle struct {
	Document map[string]interface{}       `json:"document"`
	Mappings map[string]map[string]string `json:"mappings,omitempty"`
	Strict   bool                         `json:"strict"`
	DryRun   bool                         `json:"dry_run"`
}

// SubmitRequest describes one operation to start. Exactly one of
// Export and Import is set, matching Kind.
type SubmitRequest struct {
	Kind      Kind
	RequestID string
	Export    *ExportFilters
	Import    *ImportBundle
}

// StatusResponse is one status observation. Info carries the exported
// document or import summary once the operation has succeeded, and a
// failure description once it has failed; it is null while the
// operation is still running.
type StatusResponse struct {
	Status Status          `json:"status"`
	Info   json.RawMessage `json:"info,omitempty"`
}

// Client is the narrow surface of the service the tracking controller
// needs. Submit returns the id of the started operation. PollStatus
// reports the operation's current status; callers must treat a
// returned error as transient and the id as opaque.
type Client interface {
	Submit(ctx context.Context, req *SubmitRequest) (string, error)
	PollStatus(ctx context.Context, operationID string) (*StatusResponse, error)
}
