// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package plex

import (
	"context"

	"github.com/sincrack/dualplex/internal/models"
)

// Identity describes the server build.
type Identity struct {
	Version           string
	Platform          string
	MachineIdentifier string
	FriendlyName      string
}

// GetIdentity retrieves the server's version and identity.
//
// Endpoint: GET /identity
func (c *Client) GetIdentity(ctx context.Context) (*Identity, error) {
	var resp models.PlexIdentityResponse
	if err := c.doJSONRequest(ctx, "/identity", &resp); err != nil {
		return nil, err
	}
	mc := resp.MediaContainer
	return &Identity{
		Version:           mc.Version,
		Platform:          mc.Platform,
		MachineIdentifier: mc.MachineIdentifier,
		FriendlyName:      mc.FriendlyName,
	}, nil
}
