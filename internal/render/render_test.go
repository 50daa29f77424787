// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/glances"
	"github.com/sincrack/dualplex/internal/plex"
	"github.com/sincrack/dualplex/internal/report"
)

func TestEscapeMarkdownEscapesExactlyOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "underscore", input: "the_user", want: "the\\_user"},
		{name: "asterisk", input: "a*b", want: "a\\*b"},
		{name: "bracket", input: "[2024] Movie", want: "\\[2024] Movie"},
		{name: "backtick", input: "a`b", want: "a\\`b"},
		{name: "all reserved", input: "_*`[", want: "\\_\\*\\`\\["},
		{name: "clean", input: "plain title", want: "plain title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EscapeMarkdown(tt.input); got != tt.want {
				t.Errorf("EscapeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Reserved characters in a username must reach the output with exactly
// one escape marker: renderer plus helper must not stack escapes.
func TestRenderedUsernameEscapedOnce(t *testing.T) {
	t.Parallel()

	snap := report.ServerSnapshot{
		Server: config.PlexServer{Name: "atlas"},
		Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{
				SessionID: "s1",
				Username:  "the_dark_knight",
				Title:     "Heat",
				MediaKind: "movie",
			}),
		},
	}

	msg := NowPlaying(snap, 0)

	if !strings.Contains(msg.Text, "the\\_dark\\_knight") {
		t.Errorf("username not escaped once:\n%s", msg.Text)
	}
	if strings.Contains(msg.Text, "\\\\_") {
		t.Errorf("username double-escaped:\n%s", msg.Text)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
		fields []string
		arity  int
	}{
		{name: "no fields", action: ActionMainMenu, arity: 0},
		{name: "server index", action: ActionServer, fields: []string{"2"}, arity: 1},
		{
			// Plex transcode session IDs embed the delimiter.
			name:   "session id with delimiters",
			action: ActionStop,
			fields: []string{"1", "tr:8:zq5nxs"},
			arity:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := Token(tt.action, tt.fields...)
			action, fields, err := ParseToken(raw, tt.arity)
			if err != nil {
				t.Fatalf("ParseToken(%q) error = %v", raw, err)
			}
			if action != tt.action {
				t.Errorf("action = %q, want %q", action, tt.action)
			}
			if len(fields) != tt.arity {
				t.Fatalf("fields = %v, want %d", fields, tt.arity)
			}
			for i, f := range tt.fields {
				if fields[i] != f {
					t.Errorf("field %d = %q, want %q", i, fields[i], f)
				}
			}
		})
	}
}

func TestParseTokenArityMismatch(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseToken("stop:1", 2); err == nil {
		t.Error("short token accepted")
	}
	if _, _, err := ParseToken("main_menu", 1); err == nil {
		t.Error("token without fields accepted at arity 1")
	}
}

func TestServerListAddressesByIndex(t *testing.T) {
	t.Parallel()

	servers := []config.PlexServer{{Name: "atlas"}, {Name: "borealis"}}
	msg := ServerList(servers)

	// one row per server plus the home row
	if len(msg.Keyboard) != 3 {
		t.Fatalf("keyboard rows = %d, want 3", len(msg.Keyboard))
	}
	if msg.Keyboard[0][0].Callback != "server:0" || msg.Keyboard[1][0].Callback != "server:1" {
		t.Errorf("server callbacks = %q, %q", msg.Keyboard[0][0].Callback, msg.Keyboard[1][0].Callback)
	}
}

func TestNowPlayingStopButtons(t *testing.T) {
	t.Parallel()

	snap := report.ServerSnapshot{
		Server: config.PlexServer{Name: "atlas"},
		Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{SessionID: "tr:4:abc", Username: "bruce", Title: "Heat", MediaKind: "movie"}),
		},
	}

	msg := NowPlaying(snap, 1)

	if got := msg.Keyboard[0][0].Callback; got != "stop:1:tr:4:abc" {
		t.Errorf("stop callback = %q", got)
	}
}

func TestCurrentStreamsPartialFailureInline(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate([]report.ServerSnapshot{
		{
			Server: config.PlexServer{Name: "atlas"},
			Sessions: []report.ClassifiedSession{
				report.Classify(report.RawSession{Username: "bruce", Title: "Heat", MediaKind: "movie"}),
			},
		},
		{
			Server:   config.PlexServer{Name: "borealis"},
			FetchErr: errors.New("dial tcp: i/o timeout"),
		},
	})

	msg := CurrentStreams(agg)

	if !strings.Contains(msg.Text, "Active users: 1") {
		t.Errorf("totals missing:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "⚠️ Could not reach borealis") {
		t.Errorf("failed server not surfaced inline:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "Server atlas (1 active users)") {
		t.Errorf("reachable server block missing:\n%s", msg.Text)
	}
}

// A session converting video and audio at once is still one transcoding
// user in the headline.
func TestCurrentStreamsBothTracksCountedOnce(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate([]report.ServerSnapshot{
		{
			Server: config.PlexServer{Name: "atlas"},
			Sessions: []report.ClassifiedSession{
				report.Classify(report.RawSession{
					Username: "bruce", Title: "Heat", MediaKind: "movie",
					TranscodeDecisions: []report.TranscodeDecision{
						{Track: report.TrackVideo, Decision: report.DecisionTranscode},
						{Track: report.TrackAudio, Decision: report.DecisionTranscode},
					},
				}),
			},
		},
	})

	msg := CurrentStreams(agg)
	if !strings.Contains(msg.Text, "Users transcoding: 1") {
		t.Errorf("transcoding headline wrong:\n%s", msg.Text)
	}
}

func TestTranscodingUsersIdle(t *testing.T) {
	t.Parallel()

	agg := report.Aggregate([]report.ServerSnapshot{
		{Server: config.PlexServer{Name: "atlas"}},
	})

	msg := TranscodingUsers(agg)
	if !strings.Contains(msg.Text, "Nobody is transcoding") {
		t.Errorf("idle text missing:\n%s", msg.Text)
	}
}

func TestMultiStreamsFlagsAddresses(t *testing.T) {
	t.Parallel()

	corr := report.Correlate([]report.ServerSnapshot{
		{Server: config.PlexServer{Name: "atlas"}, Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{Username: "clara", Title: "Heat", MediaKind: "movie", PlayerAddress: "10.0.0.5"}),
		}},
		{Server: config.PlexServer{Name: "borealis"}, Sessions: []report.ClassifiedSession{
			report.Classify(report.RawSession{Username: "clara", Title: "Ronin", MediaKind: "movie", PlayerAddress: "10.0.0.9"}),
		}},
	})

	msg := MultiStreams(corr)

	if !strings.Contains(msg.Text, "clara (2 streams) ⚠️ multiple addresses") {
		t.Errorf("multi-address flag missing:\n%s", msg.Text)
	}
}

func TestServerStatusMetricFailureHints(t *testing.T) {
	t.Parallel()

	base := ServerStatusData{
		Server:            config.PlexServer{Name: "atlas"},
		Identity:          &plex.Identity{Version: "1.40.0", Platform: "Linux", MachineIdentifier: "abc"},
		GlancesConfigured: true,
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "network", err: &glances.Error{Kind: glances.KindNetwork}, want: "Metrics host unreachable"},
		{name: "shape", err: &glances.Error{Kind: glances.KindShape, Field: "mem"}, want: "Unexpected metrics API response"},
		{
			name: "status",
			err:  &glances.Error{Kind: glances.KindStatus, Statuses: map[string]int{"cpu": 500, "mem": 200, "ip": 500, "uptime": 200}},
			want: "rejected 2 of the queries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := base
			d.MetricsErr = tt.err
			msg := ServerStatus(d)
			if !strings.Contains(msg.Text, tt.want) {
				t.Errorf("hint %q missing:\n%s", tt.want, msg.Text)
			}
		})
	}
}

func TestServerStatusOffline(t *testing.T) {
	t.Parallel()

	msg := ServerStatus(ServerStatusData{
		Server:      config.PlexServer{Name: "atlas"},
		IdentityErr: errors.New("connection refused"),
	})

	if !strings.Contains(msg.Text, "🔴 Offline") {
		t.Errorf("offline status missing:\n%s", msg.Text)
	}
}

func TestServerStatusNoGlancesConfig(t *testing.T) {
	t.Parallel()

	msg := ServerStatus(ServerStatusData{
		Server:   config.PlexServer{Name: "atlas"},
		Identity: &plex.Identity{Version: "1.40.0"},
	})

	if !strings.Contains(msg.Text, "No Glances configuration") {
		t.Errorf("missing-config marker absent:\n%s", msg.Text)
	}
}

func TestLibraryStats(t *testing.T) {
	t.Parallel()

	sections := []plex.LibrarySection{
		{Title: "Movies", Type: "movie", ItemCount: 1240},
		{Title: "TV Shows", Type: "show", ItemCount: 310},
	}

	msg := LibraryStats(config.PlexServer{Name: "atlas"}, 0, sections, nil)

	if !strings.Contains(msg.Text, "Items: 1240") || !strings.Contains(msg.Text, "Type: Shows") {
		t.Errorf("section detail missing:\n%s", msg.Text)
	}
}

func TestLibraryStatsUnknownCount(t *testing.T) {
	t.Parallel()

	sections := []plex.LibrarySection{
		{Title: "Movies", Type: "movie", CountErr: errors.New("status 500")},
		{Title: "TV Shows", Type: "show", ItemCount: 310},
	}

	msg := LibraryStats(config.PlexServer{Name: "atlas"}, 0, sections, nil)

	if !strings.Contains(msg.Text, "Items: unknown ⚠️") {
		t.Errorf("unknown count not marked:\n%s", msg.Text)
	}
	if !strings.Contains(msg.Text, "Items: 310") {
		t.Errorf("healthy section count missing:\n%s", msg.Text)
	}
}
