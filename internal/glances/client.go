// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package glances normalizes host metrics from the Glances REST API.
//
// Glances moved its API prefix from /api/3 to /api/4 between major
// versions without changing query semantics, and several endpoints answer
// either a bare JSON object or a one-element list wrapping that object
// depending on version and configuration. The client hides both: it
// probes /api/3 first, falls back to /api/4 when any query 404s, and
// tries each known payload shape in a fixed order. A field whose payload
// matches no known shape is a typed failure, never a silent zero.
package glances

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HostMetrics is the normalized result of one metrics fetch.
type HostMetrics struct {
	CPUPercent float64
	MemPercent float64
	PublicIP   string
	PrivateIP  string
	Uptime     string
}

// queries are the four endpoints of one version pass, all of which must
// succeed in the same pass.
var queries = []string{"cpu", "mem", "ip", "uptime"}

// versionPrefixes are tried in order; the fallback triggers only on 404.
var versionPrefixes = []string{"/api/3", "/api/4"}

// Client fetches metrics from one Glances host.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Glances client for baseURL with a per-request
// timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// queryResult is one endpoint's raw outcome.
type queryResult struct {
	status int
	body   []byte
}

// Fetch retrieves and normalizes the four metric queries.
//
// On failure the returned error is always a *glances.Error carrying the
// failure kind; the caller branches on it to phrase the in-chat hint.
func (c *Client) Fetch(ctx context.Context) (*HostMetrics, error) {
	results, err := c.fetchVersion(ctx, versionPrefixes[0])
	if err != nil {
		return nil, err
	}

	// Any 404 in the first pass means the host speaks the newer API;
	// retry the full set so all four values come from one version.
	if anyStatus(results, http.StatusNotFound) {
		results, err = c.fetchVersion(ctx, versionPrefixes[1])
		if err != nil {
			return nil, err
		}
	}

	if !allStatus(results, http.StatusOK) {
		statuses := make(map[string]int, len(results))
		for q, r := range results {
			statuses[q] = r.status
		}
		return nil, &Error{Kind: KindStatus, Statuses: statuses}
	}

	return normalize(results)
}

// fetchVersion runs all four queries under one version prefix.
func (c *Client) fetchVersion(ctx context.Context, prefix string) (map[string]queryResult, error) {
	results := make(map[string]queryResult, len(queries))
	for _, q := range queries {
		res, err := c.get(ctx, prefix+"/"+q)
		if err != nil {
			return nil, &Error{Kind: KindNetwork, cause: err}
		}
		results[q] = res
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, path string) (queryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return queryResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return queryResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return queryResult{}, err
	}
	return queryResult{status: resp.StatusCode, body: body}, nil
}

func anyStatus(results map[string]queryResult, status int) bool {
	for _, r := range results {
		if r.status == status {
			return true
		}
	}
	return false
}

func allStatus(results map[string]queryResult, status int) bool {
	for _, r := range results {
		if r.status != status {
			return false
		}
	}
	return true
}
