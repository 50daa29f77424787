// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package report

import (
	"context"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/logging"
	"github.com/sincrack/dualplex/internal/metrics"
	"github.com/sincrack/dualplex/internal/models"
)

// SessionService lists the active sessions of one Plex server. Satisfied
// by *plex.Client.
type SessionService interface {
	GetSessions(ctx context.Context) ([]models.PlexSession, error)
}

// ServerSnapshot is the fetched state of one server's active sessions.
// A failed fetch is a value on the snapshot, never an error past the
// fetcher: partial results across the fleet are the normal case.
type ServerSnapshot struct {
	Server   config.PlexServer
	Sessions []ClassifiedSession
	FetchErr error
}

// OK reports whether the snapshot carries usable session data.
func (s ServerSnapshot) OK() bool {
	return s.FetchErr == nil
}

// Fetcher builds server snapshots. The client factory keeps the package
// independent of the concrete HTTP client and lets tests inject fakes.
type Fetcher struct {
	newClient func(server config.PlexServer) SessionService
}

// NewFetcher creates a Fetcher that obtains a SessionService per server
// from newClient.
func NewFetcher(newClient func(server config.PlexServer) SessionService) *Fetcher {
	return &Fetcher{newClient: newClient}
}

// Fetch retrieves and classifies the active sessions of one server.
// Connectivity, authentication, and decode failures all land in FetchErr;
// the caller always receives a snapshot.
func (f *Fetcher) Fetch(ctx context.Context, server config.PlexServer) ServerSnapshot {
	snap := ServerSnapshot{Server: server}

	raw, err := f.newClient(server).GetSessions(ctx)
	metrics.RecordSnapshotFetch(server.Name, err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Str("server", server.Name).
			Err(err).
			Msg("Session fetch failed")
		snap.FetchErr = err
		return snap
	}

	snap.Sessions = make([]ClassifiedSession, 0, len(raw))
	for _, s := range raw {
		snap.Sessions = append(snap.Sessions, Classify(FromPlexSession(s)))
	}
	return snap
}

// FetchAll visits every server sequentially in configured order and
// always returns one snapshot per server. A server failure never aborts
// the pass.
func (f *Fetcher) FetchAll(ctx context.Context, servers []config.PlexServer) []ServerSnapshot {
	snapshots := make([]ServerSnapshot, 0, len(servers))
	for _, server := range servers {
		snapshots = append(snapshots, f.Fetch(ctx, server))
	}
	return snapshots
}
