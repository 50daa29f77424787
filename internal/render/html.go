// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package render

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/sincrack/dualplex/internal/report"
)

// logoPNG is the decorative header image. The snapshot embeds it as a
// data URI so the document stays viewable offline; an empty asset only
// drops the header block, never the render.
//
//go:embed assets/logo.png
var logoPNG []byte

// Logo returns the embedded header image, shared by the HTML snapshot
// and the Telegram photo menus. Empty when the asset is absent.
func Logo() []byte {
	return logoPNG
}

//go:embed assets/streams.html.tmpl
var streamsTemplateText string

var streamsTemplate = template.Must(template.New("streams").Parse(streamsTemplateText))

// htmlStream is one session row of the snapshot document.
type htmlStream struct {
	Title       string
	Username    string
	Type        string
	Progress    int64
	Player      string
	Transcoding bool
	ServerName  string
}

// htmlServer is one per-server section.
type htmlServer struct {
	Name        string
	FetchErr    string
	Streams     []htmlStream
	Users       int
	Transcoding int
}

// htmlPage is the template root.
type htmlPage struct {
	LogoDataURI      template.URL
	GeneratedAt      string
	TotalUsers       int
	TotalTranscoding int
	Servers          []htmlServer
	TranscodingOnly  []htmlStream
}

// StreamsHTML renders the aggregate report as a single self-contained
// HTML document: summary tallies, per-server detail in server order, and
// a dedicated section for the sessions currently transcoding.
func StreamsHTML(agg report.AggregateReport, now time.Time) ([]byte, error) {
	page := htmlPage{
		GeneratedAt:      now.Format("2006-01-02 15:04:05"),
		TotalUsers:       agg.TotalUsers,
		TotalTranscoding: agg.TotalTranscoding,
	}
	if len(logoPNG) > 0 {
		page.LogoDataURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(logoPNG))
	}

	for _, snap := range agg.Snapshots {
		server := htmlServer{Name: snap.Server.Name}
		if !snap.OK() {
			server.FetchErr = snap.FetchErr.Error()
			page.Servers = append(page.Servers, server)
			continue
		}
		server.Users = len(snap.Sessions)
		for _, s := range snap.Sessions {
			stream := htmlStream{
				Title:       report.PresentableTitle(s.RawSession),
				Username:    s.Username,
				Type:        s.DisplayType,
				Progress:    s.ProgressMinutes,
				Player:      s.Player,
				Transcoding: s.IsTranscoding,
				ServerName:  snap.Server.Name,
			}
			server.Streams = append(server.Streams, stream)
			if s.IsTranscoding {
				server.Transcoding++
				page.TranscodingOnly = append(page.TranscodingOnly, stream)
			}
		}
		page.Servers = append(page.Servers, server)
	}

	var buf bytes.Buffer
	if err := streamsTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render streams document: %w", err)
	}
	return buf.Bytes(), nil
}
