// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package config loads and validates the DualPlex configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an
// optional YAML file, then environment variables. The resulting Config is
// immutable for the process lifetime — every component receives it (or a
// slice of it) by value at construction and never re-reads global state.
//
// The Plex server list order is significant: aggregate reports visit
// servers in list order, and button callbacks address servers by their
// position in this list.
package config

import (
	"strings"
	"time"
)

// Config is the root configuration for the DualPlex process.
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	Telegram TelegramConfig `koanf:"telegram"`
	Servers  []PlexServer   `koanf:"servers" validate:"min=1,dive"`
	Glances  GlancesConfig  `koanf:"glances"`
	Plex     PlexConfig     `koanf:"plex"`
	HTML     HTMLConfig     `koanf:"html"`
	Web      WebConfig      `koanf:"web"`
}

// LoggingConfig controls the global zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// TelegramConfig configures the chat gateway.
type TelegramConfig struct {
	// Token is the bot token issued by BotFather ("digits:alphanumeric").
	Token string `koanf:"token" validate:"required"`

	// AllowedChatIDs lists chats permitted to drive the bot.
	AllowedChatIDs []int64 `koanf:"allowed_chat_ids"`

	// AllowedUsername additionally permits one Telegram username
	// regardless of chat.
	AllowedUsername string `koanf:"allowed_username"`

	// PollTimeout is the long-poll timeout for getUpdates.
	PollTimeout time.Duration `koanf:"poll_timeout"`

	// RequestTimeout bounds each outbound Bot API call.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// PlexServer describes one managed Plex Media Server.
// Identity is the Name; lookups elsewhere key on it.
type PlexServer struct {
	Name  string `koanf:"name" validate:"required"`
	URL   string `koanf:"url" validate:"required,url"`
	Token string `koanf:"token" validate:"required"`
}

// PlexConfig tunes the Plex API client shared by all servers.
type PlexConfig struct {
	// RequestTimeout bounds each per-server API call. The bound is
	// per-call, not per-report: a report over N servers may take up to
	// N timeouts, but one dead server can never stall it indefinitely.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// GlancesHost describes one Glances metrics endpoint. Hosts are paired
// with Plex servers by case-insensitive name.
type GlancesHost struct {
	Name string `koanf:"name" validate:"required"`
	URL  string `koanf:"url" validate:"required,url"`
}

// GlancesConfig configures the host-metrics collaborator.
type GlancesConfig struct {
	Hosts          []GlancesHost `koanf:"hosts" validate:"dive"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// HTMLConfig configures the static snapshot document.
type HTMLConfig struct {
	// OutputPath is where the rendered snapshot is written. Empty
	// disables writing to disk; the web server then serves the
	// in-memory copy only.
	OutputPath string `koanf:"output_path"`
}

// WebConfig configures the snapshot/metrics HTTP server.
type WebConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=0,max=65535"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telegram: TelegramConfig{
			Token:          "",
			AllowedChatIDs: nil,
			PollTimeout:    50 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Plex: PlexConfig{
			RequestTimeout: 5 * time.Second,
		},
		Glances: GlancesConfig{
			RequestTimeout: 5 * time.Second,
		},
		HTML: HTMLConfig{
			OutputPath: "streams.html",
		},
		Web: WebConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            8710,
			RequestTimeout:  15 * time.Second,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
	}
}

// ServerAt returns the server at the given list index, or false when the
// index is out of range. Button callbacks address servers by index, so the
// bound is checked here rather than letting a bad token panic.
func (c *Config) ServerAt(index int) (PlexServer, bool) {
	if index < 0 || index >= len(c.Servers) {
		return PlexServer{}, false
	}
	return c.Servers[index], true
}

// GlancesFor returns the Glances host paired with the named Plex server,
// matched case-insensitively, or false when none is configured.
func (c *Config) GlancesFor(serverName string) (GlancesHost, bool) {
	for _, h := range c.Glances.Hosts {
		if strings.EqualFold(h.Name, serverName) {
			return h, true
		}
	}
	return GlancesHost{}, false
}
