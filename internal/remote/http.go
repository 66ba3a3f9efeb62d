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

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/googleapis/confsync/internal/errors"
)

const (
	submitPathFormat    = "/api/v1/config/%s"
	operationPathFormat = "/api/v1/operations/%s"

	// Returned errors quote at most this much of an error response
	// body.
	maxErrorBody = 512
)

// HTTPClient talks to the configuration service over its JSON/HTTP
// API. It implements [Client].
type HTTPClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewHTTPClient returns a client for the service at baseURL. The token
// is sent as a bearer credential on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type submitBody struct {
	RequestID string         `json:"request_id"`
	Filters   *ExportFilters `json:"filters,omitempty"`
	Bundle    *ImportBundle  `json:"bundle,omitempty"`
}

type submitResponse struct {
	OpID string `json:"op_id"`
}

// Submit starts a bulk operation and returns its operation id. Any
// failure to obtain an id is wrapped as a transport error; Submit
// never retries.
func (c *HTTPClient) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	body, err := json.Marshal(&submitBody{
		RequestID: req.RequestID,
		Filters:   req.Export,
		Bundle:    req.Import,
	})
	if err != nil {
		return "", errors.TransportError("submit", err, "encoding %s request", req.Kind)
	}
	url := c.baseURL + fmt.Sprintf(submitPathFormat, req.Kind)
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.TransportError("submit", err, "building %s request", req.Kind)
	}
	hreq.Header.Set("Content-Type", "application/json")
	c.authorize(hreq)
	resp, err := c.httpc.Do(hreq)
	if err != nil {
		return "", errors.TransportError("submit", err, "calling %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", errors.TransportError("submit", nil, "%s returned %s: %s", url, resp.Status, errorBody(resp.Body))
	}
	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", errors.TransportError("submit", err, "decoding %s response", req.Kind)
	}
	if sr.OpID == "" {
		return "", errors.TransportError("submit", nil, "service accepted the %s but returned no operation id", req.Kind)
	}
	return sr.OpID, nil
}

// PollStatus reports the current status of the given operation. A 404
// on the operation resource maps to [StatusNotExists]; other non-200
// responses and connection failures are returned as errors for the
// caller to retry.
func (c *HTTPClient) PollStatus(ctx context.Context, operationID string) (*StatusResponse, error) {
	url := c.baseURL + fmt.Sprintf(operationPathFormat, operationID)
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.TransportError("poll", err, "building status request for %s", operationID)
	}
	c.authorize(hreq)
	resp, err := c.httpc.Do(hreq)
	if err != nil {
		return nil, errors.TransportError("poll", err, "calling %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &StatusResponse{Status: StatusNotExists}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.TransportError("poll", nil, "%s returned %s: %s", url, resp.Status, errorBody(resp.Body))
	}
	var sr StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.TransportError("poll", err, "decoding status for %s", operationID)
	}
	return &sr, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func errorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return "<no body>"
	}
	return strings.TrimSpace(string(b))
}
