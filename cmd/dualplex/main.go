// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package main is the entry point for the DualPlex bot process.
//
// DualPlex is a chat-driven control panel for a small fleet of Plex
// Media Servers. An operator drives it through a Telegram bot with
// inline-button menus; every report is a fresh pull over the wire at the
// moment of the button press.
//
// # Startup order
//
//  1. Configuration: Koanf v2 (defaults, then config.yaml, then env)
//  2. Logging: zerolog global logger per the logging config
//  3. Wiring: Plex clients, Glances clients, the report engine, the
//     Telegram gateway, the snapshot web server
//  4. Supervision: suture tree with the update poller and web server
//
// # Configuration
//
// See config.example.yaml. The bot token comes from TELEGRAM_BOT_TOKEN
// or telegram.token; at least one Plex server and one allowed chat ID or
// username are required.
//
// # Signal handling
//
// SIGINT and SIGTERM stop the supervision tree: the poller finishes its
// current update, the web server drains in-flight requests, then the
// process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sincrack/dualplex/internal/bot"
	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/glances"
	"github.com/sincrack/dualplex/internal/logging"
	"github.com/sincrack/dualplex/internal/plex"
	"github.com/sincrack/dualplex/internal/supervisor"
	"github.com/sincrack/dualplex/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dualplex:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger := logging.Logger()
	logger.Info().
		Int("servers", len(cfg.Servers)).
		Int("glances_hosts", len(cfg.Glances.Hosts)).
		Bool("web", cfg.Web.Enabled).
		Msg("DualPlex starting")

	store := web.NewSnapshotStore()

	var sink bot.SnapshotSink
	if cfg.Web.Enabled {
		sink = store
	}
	handlers := bot.NewHandlers(cfg,
		func(server config.PlexServer) bot.PlexService {
			return plex.NewClient(server.URL, server.Token, cfg.Plex.RequestTimeout)
		},
		func(host config.GlancesHost) bot.MetricsService {
			return glances.NewClient(host.URL, cfg.Glances.RequestTimeout)
		},
		sink,
	)

	client := bot.NewClient(cfg.Telegram.Token, cfg.Telegram.RequestTimeout)
	router := bot.NewRouter(cfg, client, handlers)
	poller := bot.NewPoller(client, router, cfg.Telegram.PollTimeout)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddGatewayService(poller)
	if cfg.Web.Enabled {
		tree.AddWebService(web.NewServer(cfg.Web, store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logger.Info().Msg("DualPlex stopped")
	return nil
}
