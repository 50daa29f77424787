// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package glances

import (
	"errors"
	"testing"
)

func TestParseCPU(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{name: "bare object", body: `{"total": 33.3}`, want: 33.3},
		{name: "list wrapped", body: `[{"total": 12}]`, want: 12},
		{name: "zero total", body: `{"total": 0}`, want: 0},
		{name: "empty list", body: `[]`, wantErr: true},
		{name: "missing key", body: `{"idle": 90}`, wantErr: true},
		{name: "not json", body: `cpu`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseCPU([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCPU() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseCPU() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{name: "bare object", body: `{"used": 2, "total": 8}`, want: 25},
		{name: "list wrapped", body: `[{"used": 6, "total": 8}]`, want: 75},
		{name: "missing used", body: `{"total": 8}`, wantErr: true},
		{name: "missing total", body: `{"used": 2}`, wantErr: true},
		{name: "zero total", body: `{"used": 2, "total": 0}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseMem([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseMem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantPublic  string
		wantPrivate string
		wantErr     bool
	}{
		{
			name:        "both addresses",
			body:        `{"public_address": "203.0.113.1", "address": "10.0.0.4"}`,
			wantPublic:  "203.0.113.1",
			wantPrivate: "10.0.0.4",
		},
		{
			// A host with no public exposure is valid configuration,
			// not a malformed payload.
			name:        "private only",
			body:        `{"address": "10.0.0.4"}`,
			wantPublic:  "n/a",
			wantPrivate: "10.0.0.4",
		},
		{
			name:        "list wrapped",
			body:        `[{"public_address": "203.0.113.1", "address": "10.0.0.4"}]`,
			wantPublic:  "203.0.113.1",
			wantPrivate: "10.0.0.4",
		},
		{name: "unrecognized", body: `"10.0.0.4"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			public, private, err := parseIP([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIP() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if public != tt.wantPublic || private != tt.wantPrivate {
				t.Errorf("parseIP() = %q/%q, want %q/%q", public, private, tt.wantPublic, tt.wantPrivate)
			}
		})
	}
}

func TestParseUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "bare string", body: `"5 days, 2:01:02"`, want: "5 days, 2:01:02"},
		{name: "object", body: `{"uptime": "1:00:00"}`, want: "1:00:00"},
		{name: "string list", body: `["3:00:00"]`, want: "3:00:00"},
		{name: "object list", body: `[{"uptime": "4:00:00"}]`, want: "4:00:00"},
		{name: "number", body: `86400`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseUptime([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUptime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseUptime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeReportsFieldInError(t *testing.T) {
	t.Parallel()

	results := map[string]queryResult{
		"cpu":    {status: 200, body: []byte(`{"total": 1}`)},
		"mem":    {status: 200, body: []byte(`{"used": 1, "total": 2}`)},
		"ip":     {status: 200, body: []byte(`{"address": "10.0.0.1"}`)},
		"uptime": {status: 200, body: []byte(`[]`)},
	}
	_, err := normalize(results)

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("err = %v, want *glances.Error", err)
	}
	if gerr.Field != "uptime" {
		t.Errorf("Field = %q, want uptime", gerr.Field)
	}
}
