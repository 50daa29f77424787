// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package report is the session-state aggregation engine: it fetches live
// playback snapshots from every configured Plex server, classifies each
// session, and reduces the snapshots to aggregate counts and a per-user
// cross-server correlation. Everything here is computed fresh per request
// and discarded after rendering; nothing is cached across interactions.
package report

import (
	"unicode"
	"unicode/utf8"

	"github.com/sincrack/dualplex/internal/models"
)

// TrackKind is the media track a transcode decision applies to.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// Transcode decision values as reported by Plex, normalized so that
// direct play is always "direct".
const (
	DecisionDirect    = "direct"
	DecisionCopy      = "copy"
	DecisionTranscode = "transcode"
)

// TranscodeDecision is one track's delivery decision.
type TranscodeDecision struct {
	Track    TrackKind
	Decision string
}

// RawSession is the canonical form of one active playback, independent of
// the Plex wire format.
//
// SessionID is unique within a server at a point in time only; it is not
// stable across the stream ending and restarting.
type RawSession struct {
	SessionID          string
	Username           string
	Title              string
	ParentTitle        string // series name when the session is an episode
	MediaKind          string // "movie", "episode", or any raw Plex kind
	PositionMillis     int64
	DurationMillis     int64
	Player             string
	PlayerAddress      string
	TranscodeDecisions []TranscodeDecision
}

// ClassifiedSession adds the derived human-facing fields to a RawSession.
type ClassifiedSession struct {
	RawSession

	DisplayType       string
	ProgressMinutes   int64
	IsTranscoding     bool
	TranscodingTracks []TrackKind
}

// FromPlexSession converts a wire session into a RawSession. Absent
// optional blocks (no user, no player, direct play) yield zero values and
// direct decisions rather than errors; the wire format marks them
// optional and sessions missing them are still real playbacks.
func FromPlexSession(s models.PlexSession) RawSession {
	raw := RawSession{
		SessionID:      s.SessionKey,
		Title:          s.Title,
		ParentTitle:    s.GrandparentTitle,
		MediaKind:      s.Type,
		PositionMillis: s.ViewOffset,
		DurationMillis: s.Duration,
	}
	if s.Session != nil && s.Session.ID != "" {
		raw.SessionID = s.Session.ID
	}
	if s.User != nil {
		raw.Username = s.User.Title
	}
	if s.Player != nil {
		raw.Player = s.Player.Title
		raw.PlayerAddress = s.Player.Address
	}
	raw.TranscodeDecisions = []TranscodeDecision{
		{Track: TrackVideo, Decision: normalizeDecision(decisionOf(s.TranscodeSession, TrackVideo))},
		{Track: TrackAudio, Decision: normalizeDecision(decisionOf(s.TranscodeSession, TrackAudio))},
	}
	return raw
}

func decisionOf(ts *models.PlexTranscodeSession, track TrackKind) string {
	if ts == nil {
		return ""
	}
	if track == TrackVideo {
		return ts.VideoDecision
	}
	return ts.AudioDecision
}

// normalizeDecision maps Plex's decision vocabulary onto ours: absent and
// "directplay" both mean direct delivery.
func normalizeDecision(d string) string {
	switch d {
	case "", "directplay", DecisionDirect:
		return DecisionDirect
	default:
		return d
	}
}

// Classify derives the display fields for one session. Pure; never fails.
func Classify(raw RawSession) ClassifiedSession {
	c := ClassifiedSession{
		RawSession:      raw,
		DisplayType:     DisplayType(raw.MediaKind),
		ProgressMinutes: raw.PositionMillis / 60000,
	}
	for _, d := range raw.TranscodeDecisions {
		if d.Decision == DecisionTranscode {
			c.IsTranscoding = true
			c.TranscodingTracks = append(c.TranscodingTracks, d.Track)
		}
	}
	return c
}

// DisplayType maps a raw media kind to its display label. This is the
// single definition used by every renderer; the label for an unknown kind
// is the raw kind with its first letter upper-cased, since the kind set
// is owned by Plex and not enumerable here.
func DisplayType(kind string) string {
	switch kind {
	case "movie":
		return "Movie"
	case "episode":
		return "Episode"
	case "":
		return "Unknown"
	default:
		r, size := utf8.DecodeRuneInString(kind)
		return string(unicode.ToUpper(r)) + kind[size:]
	}
}

// PresentableTitle is the title shown to the user: episodes pair the
// series name with the episode title, all other kinds use the title alone.
func PresentableTitle(raw RawSession) string {
	if raw.MediaKind == "episode" && raw.ParentTitle != "" {
		return raw.ParentTitle + " - " + raw.Title
	}
	return raw.Title
}

// Transcoding reports whether any track of the session is being
// server-side converted.
func (c ClassifiedSession) Transcoding(track TrackKind) bool {
	for _, t := range c.TranscodingTracks {
		if t == track {
			return true
		}
	}
	return false
}
