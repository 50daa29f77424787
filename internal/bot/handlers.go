// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/glances"
	"github.com/sincrack/dualplex/internal/logging"
	"github.com/sincrack/dualplex/internal/metrics"
	"github.com/sincrack/dualplex/internal/models"
	"github.com/sincrack/dualplex/internal/plex"
	"github.com/sincrack/dualplex/internal/render"
	"github.com/sincrack/dualplex/internal/report"
)

// stopReason is shown on the player whose stream an operator terminates.
const stopReason = "Stream stopped by the server operator"

// PlexService is the per-server Plex client surface the handlers drive.
// Satisfied by *plex.Client.
type PlexService interface {
	GetSessions(ctx context.Context) ([]models.PlexSession, error)
	GetLibrarySections(ctx context.Context) ([]plex.LibrarySection, error)
	RefreshLibrarySections(ctx context.Context) error
	StopSession(ctx context.Context, sessionID, reason string) error
	GetIdentity(ctx context.Context) (*plex.Identity, error)
}

// MetricsService fetches host metrics for one Glances endpoint.
// Satisfied by *glances.Client.
type MetricsService interface {
	Fetch(ctx context.Context) (*glances.HostMetrics, error)
}

// SnapshotSink receives each freshly rendered HTML snapshot. Satisfied
// by the web server's snapshot store.
type SnapshotSink interface {
	Update(doc []byte)
}

// Handlers maps callback actions onto fetches and renders. Every handler
// is a fresh pull over the wire; nothing is cached between interactions.
type Handlers struct {
	cfg        *config.Config
	fetcher    *report.Fetcher
	plexFor    func(server config.PlexServer) PlexService
	glancesFor func(host config.GlancesHost) MetricsService
	sink       SnapshotSink
	now        func() time.Time
}

// NewHandlers wires the report engine to its collaborators. sink may be
// nil when the web server is disabled.
func NewHandlers(
	cfg *config.Config,
	plexFor func(server config.PlexServer) PlexService,
	glancesFor func(host config.GlancesHost) MetricsService,
	sink SnapshotSink,
) *Handlers {
	return &Handlers{
		cfg:     cfg,
		plexFor: plexFor,
		fetcher: report.NewFetcher(func(server config.PlexServer) report.SessionService {
			return plexFor(server)
		}),
		glancesFor: glancesFor,
		sink:       sink,
		now:        time.Now,
	}
}

// MainMenu renders the top-level menu.
func (h *Handlers) MainMenu() render.Message {
	return render.MainMenu()
}

// ServerList renders one button per configured server.
func (h *Handlers) ServerList() render.Message {
	return render.ServerList(h.cfg.Servers)
}

// ServerMenu renders the per-server action menu.
func (h *Handlers) ServerMenu(server config.PlexServer, index int) render.Message {
	return render.ServerMenu(server, index)
}

// RefreshLibraries triggers a scan of every library on the server.
func (h *Handlers) RefreshLibraries(ctx context.Context, server config.PlexServer, index int) render.Message {
	err := h.plexFor(server).RefreshLibrarySections(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Str("server", server.Name).Err(err).Msg("Library refresh failed")
	}
	return render.LibrariesRefreshed(server, index, err)
}

// NowPlaying renders one server's active sessions with stop buttons.
func (h *Handlers) NowPlaying(ctx context.Context, server config.PlexServer, index int) render.Message {
	defer metrics.ObserveReport("now_playing", h.now())
	snap := h.fetcher.Fetch(ctx, server)
	return render.NowPlaying(snap, index)
}

// StopSession terminates one stream and reports the outcome.
func (h *Handlers) StopSession(ctx context.Context, server config.PlexServer, index int, sessionID string) render.Message {
	err := h.plexFor(server).StopSession(ctx, sessionID, stopReason)
	if err != nil {
		logging.Ctx(ctx).Warn().Str("server", server.Name).Err(err).Msg("Stop session failed")
	}
	return render.SessionStopped(server, index, err)
}

// ServerStatus assembles the per-server status report. Identity, host
// metrics, sessions, and libraries are fetched independently; each piece
// fails on its own and the renderer marks whatever is missing.
func (h *Handlers) ServerStatus(ctx context.Context, server config.PlexServer, index int) render.Message {
	defer metrics.ObserveReport("server_status", h.now())

	data := render.ServerStatusData{Server: server, Index: index}
	client := h.plexFor(server)

	data.Identity, data.IdentityErr = client.GetIdentity(ctx)
	if data.IdentityErr != nil {
		// The server is unreachable; the remaining probes would only
		// repeat the same timeout.
		return render.ServerStatus(data)
	}

	if host, ok := h.cfg.GlancesFor(server.Name); ok {
		data.GlancesConfigured = true
		data.Metrics, data.MetricsErr = h.glancesFor(host).Fetch(ctx)
		recordGlancesFetch(host.Name, data.MetricsErr)
	}

	if sessions, err := client.GetSessions(ctx); err == nil {
		data.ActiveStreams = len(sessions)
	}

	data.Libraries, data.LibrariesErr = client.GetLibrarySections(ctx)

	return render.ServerStatus(data)
}

// LibraryStats renders one server's libraries with item counts.
func (h *Handlers) LibraryStats(ctx context.Context, server config.PlexServer, index int) render.Message {
	defer metrics.ObserveReport("library_stats", h.now())
	sections, err := h.plexFor(server).GetLibrarySections(ctx)
	return render.LibraryStats(server, index, sections, err)
}

// CurrentStreams renders the fleet-wide playback report and refreshes
// the HTML snapshot as a side effect, so the web copy tracks the last
// full report.
func (h *Handlers) CurrentStreams(ctx context.Context) render.Message {
	defer metrics.ObserveReport("current_streams", h.now())

	agg := report.Aggregate(h.fetcher.FetchAll(ctx, h.cfg.Servers))
	h.publishSnapshot(ctx, agg)
	return render.CurrentStreams(agg)
}

// TranscodingUsers renders the fleet-wide transcoding report.
func (h *Handlers) TranscodingUsers(ctx context.Context) render.Message {
	defer metrics.ObserveReport("transcoding_users", h.now())
	agg := report.Aggregate(h.fetcher.FetchAll(ctx, h.cfg.Servers))
	return render.TranscodingUsers(agg)
}

// MultiStreams renders the simultaneous-stream report.
func (h *Handlers) MultiStreams(ctx context.Context) render.Message {
	defer metrics.ObserveReport("multi_streams", h.now())
	corr := report.Correlate(h.fetcher.FetchAll(ctx, h.cfg.Servers))
	return render.MultiStreams(corr)
}

// Help renders the help text.
func (h *Handlers) Help() render.Message {
	return render.Help()
}

// publishSnapshot renders the HTML document, hands it to the web sink,
// and writes it to the configured path. Snapshot failures never fail the
// chat report that triggered them.
func (h *Handlers) publishSnapshot(ctx context.Context, agg report.AggregateReport) {
	doc, err := render.StreamsHTML(agg, h.now())
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Snapshot render failed")
		return
	}
	if h.sink != nil {
		h.sink.Update(doc)
	}
	if path := h.cfg.HTML.OutputPath; path != "" {
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			logging.Ctx(ctx).Error().Str("path", path).Err(err).Msg("Snapshot write failed")
		}
	}
}

func recordGlancesFetch(host string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "network"
		var gerr *glances.Error
		if errors.As(err, &gerr) {
			outcome = gerr.Kind.String()
		}
	}
	metrics.GlancesFetchesTotal.WithLabelValues(host, outcome).Inc()
}
