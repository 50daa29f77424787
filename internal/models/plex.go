// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package models holds the wire structures for the Plex Media Server REST
// API, limited to the endpoints DualPlex consumes:
//
//	GET /status/sessions             — active playback sessions
//	GET /library/sections            — library sections
//	GET /library/sections/{key}/refresh — trigger a section scan
//	GET /status/sessions/terminate   — stop a session
//	GET /identity                    — server identity
//
// Documentation: https://plexapi.dev and
// https://www.plexopedia.com/plex-media-server/api/
package models

// PlexSessionsResponse is the top-level response from GET /status/sessions.
type PlexSessionsResponse struct {
	MediaContainer PlexSessionsContainer `json:"MediaContainer"`
}

// PlexSessionsContainer wraps the active sessions array.
type PlexSessionsContainer struct {
	Size     int           `json:"size"`
	Metadata []PlexSession `json:"Metadata"`
}

// PlexSession is a single active playback session.
//
// SessionKey identifies the playback within the server's current process
// lifetime only; the Session.ID is what /status/sessions/terminate wants.
type PlexSession struct {
	SessionKey string `json:"sessionKey"`
	RatingKey  string `json:"ratingKey"`

	// Type is "movie", "episode", "track", "clip", ...
	// The set is owned by Plex and not enumerable here.
	Type             string `json:"type"`
	Title            string `json:"title"`
	GrandparentTitle string `json:"grandparentTitle,omitempty"` // show / artist
	ParentTitle      string `json:"parentTitle,omitempty"`      // season / album

	ViewOffset int64 `json:"viewOffset"` // playback position, milliseconds
	Duration   int64 `json:"duration"`   // total duration, milliseconds

	User             *PlexSessionUser      `json:"User,omitempty"`
	Player           *PlexSessionPlayer    `json:"Player,omitempty"`
	Session          *PlexSessionDetail    `json:"Session,omitempty"`
	TranscodeSession *PlexTranscodeSession `json:"TranscodeSession,omitempty"` // nil on direct play
}

// PlexSessionUser identifies who is watching.
type PlexSessionUser struct {
	ID    int    `json:"id"`
	Title string `json:"title"` // username
}

// PlexSessionPlayer describes the playback client.
type PlexSessionPlayer struct {
	Address  string `json:"address"` // network origin of the client
	Device   string `json:"device"`
	Platform string `json:"platform"`
	Product  string `json:"product"`
	State    string `json:"state"`
	Title    string `json:"title"` // device friendly name
	Local    bool   `json:"local"`
}

// PlexSessionDetail carries the terminate-able session identifier.
type PlexSessionDetail struct {
	ID        string `json:"id"`
	Bandwidth int    `json:"bandwidth,omitempty"`
	Location  string `json:"location,omitempty"` // "lan" or "wan"
}

// PlexTranscodeSession holds the per-track transcode decisions for a
// session being converted server-side.
type PlexTranscodeSession struct {
	Key              string  `json:"key"`
	VideoDecision    string  `json:"videoDecision"`    // "transcode", "copy", "directplay"
	AudioDecision    string  `json:"audioDecision"`    // "transcode", "copy", "directplay"
	SubtitleDecision string  `json:"subtitleDecision"` // "transcode", "copy", "burn"
	Progress         float64 `json:"progress"`
	Speed            float64 `json:"speed"`
	Throttled        bool    `json:"throttled"`
	Container        string  `json:"container"`
	VideoCodec       string  `json:"videoCodec"`
	AudioCodec       string  `json:"audioCodec"`
}

// PlexLibrarySectionsResponse is the response from GET /library/sections.
type PlexLibrarySectionsResponse struct {
	MediaContainer PlexLibrarySectionsContainer `json:"MediaContainer"`
}

// PlexLibrarySectionsContainer wraps the section directory list.
type PlexLibrarySectionsContainer struct {
	Size      int                  `json:"size"`
	Directory []PlexLibrarySection `json:"Directory,omitempty"`
}

// PlexLibrarySection is one library ("Movies", "TV Shows", ...).
type PlexLibrarySection struct {
	Key        string `json:"key"`  // used in /library/sections/{key}/refresh
	Title      string `json:"title"`
	Type       string `json:"type"` // "movie", "show", "artist", "photo"
	Refreshing bool   `json:"refreshing,omitempty"`
}

// PlexSectionItemsResponse is the response from
// GET /library/sections/{key}/all (size query only).
type PlexSectionItemsResponse struct {
	MediaContainer PlexSectionItemsContainer `json:"MediaContainer"`
}

// PlexSectionItemsContainer exposes the item count of a section.
type PlexSectionItemsContainer struct {
	Size      int `json:"size"`
	TotalSize int `json:"totalSize,omitempty"`
}

// PlexIdentityResponse is the response from GET /identity.
type PlexIdentityResponse struct {
	MediaContainer PlexIdentityContainer `json:"MediaContainer"`
}

// PlexIdentityContainer wraps server identity information.
type PlexIdentityContainer struct {
	MachineIdentifier string `json:"machineIdentifier"`
	Version           string `json:"version"`
	Platform          string `json:"platform,omitempty"`
	FriendlyName      string `json:"friendlyName,omitempty"`
}
