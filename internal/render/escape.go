// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package render produces the two report presentations: Telegram menu
// messages with inline keyboards, and the self-contained HTML snapshot.
// All renderers consume the normalized report types; none of them fetch.
//
// Escaping rule: every dynamic value is passed through EscapeMarkdown at
// the single point it is interpolated into a message. Helpers receive
// already-escaped parts and never escape again; applying the rule in one
// place is what keeps double-escaping out.
package render

import "strings"

// markdownEscaper escapes the characters the Telegram "Markdown" parse
// mode reserves.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes Telegram Markdown reserved characters in s.
// Apply exactly once, at interpolation time.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
