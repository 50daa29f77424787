// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package plex

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sincrack/dualplex/internal/models"
)

// GetSessions retrieves the currently active playback sessions.
//
// Endpoint: GET /status/sessions
func (c *Client) GetSessions(ctx context.Context) ([]models.PlexSession, error) {
	var resp models.PlexSessionsResponse
	if err := c.doJSONRequest(ctx, "/status/sessions", &resp); err != nil {
		return nil, err
	}
	if resp.MediaContainer.Metadata == nil {
		return []models.PlexSession{}, nil
	}
	return resp.MediaContainer.Metadata, nil
}

// StopSession terminates an active playback session, showing reason to
// the affected player.
//
// sessionID is Session.ID from the sessions listing (not sessionKey).
//
// Endpoint: GET /status/sessions/terminate
func (c *Client) StopSession(ctx context.Context, sessionID, reason string) error {
	query := url.Values{}
	query.Set("sessionId", sessionID)
	query.Set("reason", reason)

	return c.doRequest(ctx, requestConfig{
		method:      http.MethodGet,
		path:        "/status/sessions/terminate",
		query:       query,
		expectNoErr: true,
	}, nil)
}
