// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("server", "arkham").Msg("snapshot fetched")

	out := buf.String()
	if !strings.Contains(out, `"server":"arkham"`) {
		t.Errorf("output missing structured field: %s", out)
	}
	if !strings.Contains(out, `"message":"snapshot fetched"`) {
		t.Errorf("output missing message: %s", out)
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abcd1234")
	if got := CorrelationID(ctx); got != "abcd1234" {
		t.Errorf("CorrelationID() = %q, want %q", got, "abcd1234")
	}
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID(empty ctx) = %q, want empty", got)
	}
}

func TestNewCorrelationIDLength(t *testing.T) {
	id := NewCorrelationID()
	if len(id) != 8 {
		t.Errorf("NewCorrelationID() length = %d, want 8", len(id))
	}
	if id == NewCorrelationID() {
		t.Error("two correlation IDs should differ")
	}
}

func TestCtxIncludesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := WithCorrelationID(context.Background(), "deadbeef")
	Ctx(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"correlation_id":"deadbeef"`) {
		t.Errorf("log line missing correlation ID: %s", buf.String())
	}
}

func TestSlogHandlerForwardsToZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slogger := slog.New(NewSlogHandler())
	slogger.Warn("service backoff", slog.String("service", "bot-poller"), slog.Int("failures", 3))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("missing warn level: %s", out)
	}
	if !strings.Contains(out, `"service":"bot-poller"`) {
		t.Errorf("missing string attr: %s", out)
	}
	if !strings.Contains(out, `"failures":3`) {
		t.Errorf("missing int attr: %s", out)
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slogger := slog.New(NewSlogHandler()).WithGroup("suture")
	slogger.Info("restart", slog.String("service", "web"))

	if !strings.Contains(buf.String(), `"suture.service":"web"`) {
		t.Errorf("group prefix not applied: %s", buf.String())
	}
}
