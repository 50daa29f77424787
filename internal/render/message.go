// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package render

import (
	"fmt"
	"strings"
)

// Message is one outgoing chat message: Markdown text plus an inline
// keyboard organized into rows.
type Message struct {
	Text     string
	Keyboard [][]Button
}

// Button is one inline keyboard button carrying an opaque callback token.
type Button struct {
	Label    string
	Callback string
}

// Callback actions. These travel inside button tokens and are wire state:
// renaming one invalidates the buttons of every message already sent.
const (
	ActionMainMenu     = "main_menu"
	ActionServerList   = "view_servers"
	ActionServer       = "server"
	ActionRefresh      = "update"
	ActionPlaying      = "playing"
	ActionStatus       = "status"
	ActionStats        = "stats"
	ActionStop         = "stop"
	ActionStreams      = "current_streams"
	ActionTranscoding  = "transcoding_users"
	ActionMultiStreams = "multi_streams"
	ActionHelp         = "help"
)

// tokenDelimiter separates the segments of a callback token.
const tokenDelimiter = ":"

// Token builds a callback token: the action plus optional fields joined
// by the delimiter. Fields may themselves contain the delimiter as long
// as only the last one does; ParseToken hands the remainder back intact.
func Token(action string, fields ...string) string {
	if len(fields) == 0 {
		return action
	}
	return action + tokenDelimiter + strings.Join(fields, tokenDelimiter)
}

// ParseToken splits a callback token into its action and exactly arity
// fields. Everything after the first arity-1 field delimiters belongs to
// the final field, so session identifiers containing the delimiter
// survive the round trip.
func ParseToken(raw string, arity int) (action string, fields []string, err error) {
	parts := strings.SplitN(raw, tokenDelimiter, arity+1)
	if len(parts) != arity+1 {
		return "", nil, fmt.Errorf("callback token %q: want %d fields, have %d", raw, arity, len(parts)-1)
	}
	return parts[0], parts[1:], nil
}

// Action returns the action segment of a token without consuming fields.
func Action(raw string) string {
	action, _, _ := strings.Cut(raw, tokenDelimiter)
	return action
}
