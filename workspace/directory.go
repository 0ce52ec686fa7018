/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Endpoint describes one serving endpoint in the workspace.
type Endpoint struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
	Task  string `json:"task,omitempty"`
}

// Directory lists serving endpoints from their source of truth.
type Directory interface {
	ListServingEndpoints(ctx context.Context) ([]Endpoint, error)
}

// HTTPDirectory reads serving endpoints from the workspace REST API.
type HTTPDirectory struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPDirectory creates a Directory for the workspace at baseURL,
// authenticating with the given bearer token.
func NewHTTPDirectory(baseURL, token string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type listEndpointsResponse struct {
	Endpoints []struct {
		Name  string `json:"name"`
		Task  string `json:"task"`
		State struct {
			Ready string `json:"ready"`
		} `json:"state"`
	} `json:"endpoints"`
}

// ListServingEndpoints implements Directory.
func (d *HTTPDirectory) ListServingEndpoints(ctx context.Context) ([]Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/2.0/serving-endpoints", nil)
	if err != nil {
		return nil, fmt.Errorf("building endpoint listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing serving endpoints: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing serving endpoints: unexpected status %d", resp.StatusCode)
	}

	var body listEndpointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding endpoint listing: %w", err)
	}

	out := make([]Endpoint, 0, len(body.Endpoints))
	for _, e := range body.Endpoints {
		out = append(out, Endpoint{
			Name:  e.Name,
			State: e.State.Ready,
			Task:  e.Task,
		})
	}
	return out, nil
}
