// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/report"
)

func sampleAggregate() report.AggregateReport {
	return report.Aggregate([]report.ServerSnapshot{
		{
			Server: config.PlexServer{Name: "atlas"},
			Sessions: []report.ClassifiedSession{
				report.Classify(report.RawSession{
					Username:  "bruce",
					Title:     "Heat",
					MediaKind: "movie",
					Player:    "Living Room TV",
					TranscodeDecisions: []report.TranscodeDecision{
						{Track: report.TrackVideo, Decision: report.DecisionTranscode},
					},
				}),
			},
		},
		{
			Server:   config.PlexServer{Name: "borealis"},
			FetchErr: errors.New("dial tcp: i/o timeout"),
		},
	})
}

func TestStreamsHTMLContent(t *testing.T) {
	t.Parallel()

	out, err := StreamsHTML(sampleAggregate(), time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("StreamsHTML() error = %v", err)
	}
	doc := string(out)

	for _, want := range []string{
		"<h3>Users</h3>",
		"<span>atlas: 1</span>",
		"Server: atlas",
		"Server: borealis",
		"Could not reach this server: dial tcp: i/o timeout",
		"Users Transcoding",
		"Generated at: 2026-08-30 12:00:00",
		"data:image/png;base64,",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	// Self-contained: no external references.
	if strings.Contains(doc, "http://") || strings.Contains(doc, "https://") {
		t.Error("document references an external asset")
	}
}

func TestStreamsHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate([]report.ServerSnapshot{{
		Server: config.PlexServer{Name: "atlas"},
		Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{Username: "<script>x</script>", Title: "Heat", MediaKind: "movie"}),
		},
	}})

	out, err := StreamsHTML(agg, time.Now())
	if err != nil {
		t.Fatalf("StreamsHTML() error = %v", err)
	}
	if strings.Contains(string(out), "<script>x</script>") {
		t.Error("username interpolated unescaped")
	}
}

func TestStreamsHTMLOmitsLogoWhenAssetEmpty(t *testing.T) {
	saved := logoPNG
	logoPNG = nil
	defer func() { logoPNG = saved }()

	out, err := StreamsHTML(sampleAggregate(), time.Now())
	if err != nil {
		t.Fatalf("StreamsHTML() error = %v", err)
	}
	if strings.Contains(string(out), `class="header"`) {
		t.Error("header block rendered without a logo asset")
	}
}

func TestStreamsHTMLNoTranscodingSectionWhenNone(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate([]report.ServerSnapshot{{
		Server: config.PlexServer{Name: "atlas"},
		Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{Username: "bruce", Title: "Heat", MediaKind: "movie"}),
		},
	}})

	out, err := StreamsHTML(agg, time.Now())
	if err != nil {
		t.Fatalf("StreamsHTML() error = %v", err)
	}
	if strings.Contains(string(out), "Users Transcoding") {
		t.Error("transcoding section rendered with no transcoding sessions")
	}
}
