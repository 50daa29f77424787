// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sincrack/dualplex/internal/models"
)

// LibrarySection is one library with its item count resolved. CountErr
// marks a section whose count could not be read; the section itself is
// still listed.
type LibrarySection struct {
	Title     string
	Type      string
	ItemCount int
	CountErr  error
}

// GetLibrarySections lists the server's library sections with item counts.
// The count comes from a per-section container-size probe so no item
// payloads transfer. A failed probe degrades that one section to an
// unknown count instead of hiding the whole listing.
//
// Endpoints: GET /library/sections, GET /library/sections/{key}/all
func (c *Client) GetLibrarySections(ctx context.Context) ([]LibrarySection, error) {
	var resp models.PlexLibrarySectionsResponse
	if err := c.doJSONRequest(ctx, "/library/sections", &resp); err != nil {
		return nil, err
	}

	sections := make([]LibrarySection, 0, len(resp.MediaContainer.Directory))
	for _, dir := range resp.MediaContainer.Directory {
		count, err := c.getSectionItemCount(ctx, dir.Key)
		if err != nil {
			err = fmt.Errorf("section %q item count: %w", dir.Title, err)
		}
		sections = append(sections, LibrarySection{
			Title:     dir.Title,
			Type:      dir.Type,
			ItemCount: count,
			CountErr:  err,
		})
	}
	return sections, nil
}

func (c *Client) getSectionItemCount(ctx context.Context, sectionKey string) (int, error) {
	query := url.Values{}
	query.Set("X-Plex-Container-Start", "0")
	query.Set("X-Plex-Container-Size", "0") // counts only, no items

	var resp models.PlexSectionItemsResponse
	err := c.doRequest(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/library/sections/" + sectionKey + "/all",
		query:    query,
		expectOK: true,
	}, &resp)
	if err != nil {
		return 0, err
	}

	if resp.MediaContainer.TotalSize > 0 {
		return resp.MediaContainer.TotalSize, nil
	}
	return resp.MediaContainer.Size, nil
}

// RefreshLibrarySections triggers a metadata refresh on every section.
// Sections are refreshed in listing order; the first failure aborts and
// reports which section failed.
//
// Endpoint: GET /library/sections/{key}/refresh
func (c *Client) RefreshLibrarySections(ctx context.Context) error {
	var resp models.PlexLibrarySectionsResponse
	if err := c.doJSONRequest(ctx, "/library/sections", &resp); err != nil {
		return err
	}

	for _, dir := range resp.MediaContainer.Directory {
		err := c.doRequest(ctx, requestConfig{
			method:      http.MethodGet,
			path:        "/library/sections/" + dir.Key + "/refresh",
			expectNoErr: true,
		}, nil)
		if err != nil {
			return fmt.Errorf("refresh section %q: %w", dir.Title, err)
		}
	}
	return nil
}
