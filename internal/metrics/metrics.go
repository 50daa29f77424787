// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package metrics exposes Prometheus instrumentation for DualPlex:
// report generation, per-server fetch failures, and Telegram API traffic.
// The /metrics endpoint of the web server scrapes the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsTotal counts generated reports by kind
	// ("current_streams", "transcoding_users", "multi_streams",
	// "server_status", "now_playing", "library_stats").
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualplex_reports_total",
			Help: "Total number of reports generated, by report kind",
		},
		[]string{"kind"},
	)

	// ReportDuration observes how long one report takes end to end,
	// fetches included.
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dualplex_report_duration_seconds",
			Help:    "Report generation duration in seconds, fetches included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// SnapshotFetchesTotal counts per-server session fetches by outcome.
	SnapshotFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualplex_snapshot_fetches_total",
			Help: "Total per-server session snapshot fetches",
		},
		[]string{"server", "outcome"}, // outcome: "ok" or "error"
	)

	// GlancesFetchesTotal counts host-metrics fetches by outcome.
	GlancesFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualplex_glances_fetches_total",
			Help: "Total Glances host metrics fetches",
		},
		[]string{"host", "outcome"}, // outcome: "ok", "network", "status", "shape"
	)

	// TelegramCallsTotal counts outbound Bot API calls by method and outcome.
	TelegramCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualplex_telegram_calls_total",
			Help: "Total Telegram Bot API calls",
		},
		[]string{"method", "outcome"}, // outcome: "ok" or "error"
	)

	// UpdatesTotal counts inbound Telegram updates by disposition.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualplex_updates_total",
			Help: "Total inbound Telegram updates",
		},
		[]string{"disposition"}, // "handled", "unauthorized", "ignored"
	)
)

// ObserveReport records one finished report of the given kind.
func ObserveReport(kind string, start time.Time) {
	ReportsTotal.WithLabelValues(kind).Inc()
	ReportDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// RecordSnapshotFetch records one per-server fetch outcome.
func RecordSnapshotFetch(server string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SnapshotFetchesTotal.WithLabelValues(server, outcome).Inc()
}
