// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/glances"
	"github.com/sincrack/dualplex/internal/plex"
	"github.com/sincrack/dualplex/internal/report"
)

// MainMenu is the top-level menu.
func MainMenu() Message {
	return Message{
		Text: "Welcome to Dual Plex Control! 🎉\n" +
			"Ready to run your servers? 😎\n" +
			"What would you like to do today?",
		Keyboard: [][]Button{
			{{Label: "🖥️ View servers", Callback: Token(ActionServerList)}},
			{{Label: "🎬 Current streams", Callback: Token(ActionStreams)}},
			{{Label: "🔄 Transcoding users", Callback: Token(ActionTranscoding)}},
			{{Label: "👥 Multi-stream users", Callback: Token(ActionMultiStreams)}},
			{{Label: "ℹ️ Help", Callback: Token(ActionHelp)}},
		},
	}
}

// ServerList offers one button per configured server, addressed by its
// position in the configured order.
func ServerList(servers []config.PlexServer) Message {
	msg := Message{Text: "Pick the server to manage! 👑"}
	for i, server := range servers {
		msg.Keyboard = append(msg.Keyboard, []Button{{
			Label:    "🏙️ Server " + server.Name,
			Callback: Token(ActionServer, strconv.Itoa(i)),
		}})
	}
	msg.Keyboard = append(msg.Keyboard, navHome())
	return msg
}

// ServerMenu is the per-server action menu.
func ServerMenu(server config.PlexServer, index int) Message {
	idx := strconv.Itoa(index)
	return Message{
		Text: fmt.Sprintf("What would you like to do on %s? ✨", EscapeMarkdown(server.Name)),
		Keyboard: [][]Button{
			{{Label: "🔄 Refresh libraries", Callback: Token(ActionRefresh, idx)}},
			{{Label: "👀 Now playing", Callback: Token(ActionPlaying, idx)}},
			{{Label: "📊 Server status", Callback: Token(ActionStatus, idx)}},
			{{Label: "📚 Library stats", Callback: Token(ActionStats, idx)}},
			{{Label: "🔙 Back to servers", Callback: Token(ActionServerList)}},
			navHome(),
		},
	}
}

// LibrariesRefreshed reports the outcome of a full-library refresh.
func LibrariesRefreshed(server config.PlexServer, index int, err error) Message {
	name := EscapeMarkdown(server.Name)
	var text string
	if err != nil {
		text = fmt.Sprintf("⚠️ Library refresh failed on %s: %s", name, EscapeMarkdown(err.Error()))
	} else {
		text = fmt.Sprintf("Boom! 💥 Libraries refreshed on %s. Your content is fresher than ever! 🌟", name)
	}
	return Message{Text: text, Keyboard: navServer(index)}
}

// NowPlaying lists the sessions of one server, one stop button per
// session so an operator can terminate a stream from the report that
// listed it.
func NowPlaying(snap report.ServerSnapshot, index int) Message {
	name := EscapeMarkdown(snap.Server.Name)
	msg := Message{Keyboard: navServer(index)}

	if !snap.OK() {
		msg.Text = fmt.Sprintf("⚠️ Could not reach %s: %s", name, EscapeMarkdown(snap.FetchErr.Error()))
		return msg
	}
	if len(snap.Sessions) == 0 {
		msg.Text = fmt.Sprintf("😴 %s looks idle. Nothing is playing right now!", name)
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 Action on %s! Here is what's playing:\n\n", name)
	var stopRows [][]Button
	for _, s := range snap.Sessions {
		writeSession(&b, s)
		b.WriteString("\n")
		stopRows = append(stopRows, []Button{{
			Label:    "⏹ Stop: " + PresentableLabel(s),
			Callback: Token(ActionStop, strconv.Itoa(index), s.SessionID),
		}})
	}
	msg.Text = b.String()
	msg.Keyboard = append(stopRows, msg.Keyboard...)
	return msg
}

// SessionStopped reports the outcome of a stop request.
func SessionStopped(server config.PlexServer, index int, err error) Message {
	name := EscapeMarkdown(server.Name)
	var text string
	if err != nil {
		text = fmt.Sprintf("⚠️ Could not stop the stream on %s: %s", name, EscapeMarkdown(err.Error()))
	} else {
		text = fmt.Sprintf("⏹ Stream stopped on %s.", name)
	}
	return Message{Text: text, Keyboard: navServer(index)}
}

// CurrentStreams is the fleet-wide playback report: totals up top, then
// one block per server in configured order. Failed servers stay listed
// inline with their error.
func CurrentStreams(agg report.AggregateReport) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Active users: %d\n", agg.TotalUsers)
	fmt.Fprintf(&b, "Users transcoding: %d\n\n", agg.TotalTranscoding)
	b.WriteString("🎬 Current playback across the servers:\n\n")

	for _, snap := range agg.Snapshots {
		name := EscapeMarkdown(snap.Server.Name)
		if !snap.OK() {
			fmt.Fprintf(&b, "⚠️ Could not reach %s: %s\n\n", name, EscapeMarkdown(snap.FetchErr.Error()))
			continue
		}
		fmt.Fprintf(&b, "Server %s (%d active users):\n", name, len(snap.Sessions))
		if len(snap.Sessions) == 0 {
			b.WriteString("No active playback.\n\n")
			continue
		}
		for _, s := range snap.Sessions {
			writeSession(&b, s)
			if s.IsTranscoding {
				b.WriteString("🔄 Transcoding: yes\n")
			} else {
				b.WriteString("🔄 Transcoding: no\n")
			}
			b.WriteString("\n")
		}
	}

	return Message{Text: b.String(), Keyboard: [][]Button{navHome()}}
}

// TranscodingUsers lists only the sessions being server-side converted,
// split into video and audio totals.
func TranscodingUsers(agg report.AggregateReport) Message {
	if agg.TotalTranscoding == 0 && !anyFetchErr(agg) {
		return Message{
			Text:     "😴 Nobody is transcoding right now.",
			Keyboard: [][]Button{navHome()},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transcoding video: %d users\n", agg.TotalTranscodingVideo)
	fmt.Fprintf(&b, "Transcoding audio: %d users\n\n", agg.TotalTranscodingAudio)
	b.WriteString("🔄 Users transcoding:\n\n")

	for _, snap := range agg.Snapshots {
		name := EscapeMarkdown(snap.Server.Name)
		if !snap.OK() {
			fmt.Fprintf(&b, "⚠️ Could not reach %s: %s\n\n", name, EscapeMarkdown(snap.FetchErr.Error()))
			continue
		}
		transcoding := false
		for _, s := range snap.Sessions {
			if !s.IsTranscoding {
				continue
			}
			if !transcoding {
				fmt.Fprintf(&b, "Server %s:\n", name)
				transcoding = true
			}
			writeSession(&b, s)
			fmt.Fprintf(&b, "🔄 Transcoding: %s\n\n", trackLabel(s.TranscodingTracks))
		}
		if !transcoding {
			fmt.Fprintf(&b, "Server %s: nobody transcoding.\n\n", name)
		}
	}

	return Message{Text: b.String(), Keyboard: [][]Button{navHome()}}
}

// MultiStreams is the simultaneous-stream report: users with two or more
// active sessions, with a warning when the streams originate from more
// than one address.
func MultiStreams(corr report.MultiStreamCorrelation) Message {
	if len(corr.Usernames) == 0 {
		return Message{
			Text:     "✅ Nobody has more than one active stream.",
			Keyboard: [][]Button{navHome()},
		}
	}

	var b strings.Builder
	b.WriteString("👥 Users with multiple simultaneous streams:\n\n")
	for _, username := range corr.Usernames {
		refs := corr.ByUsername[username]
		fmt.Fprintf(&b, "👤 %s (%d streams)", EscapeMarkdown(username), len(refs))
		if corr.MultiAddress(username) {
			b.WriteString(" ⚠️ multiple addresses")
		}
		b.WriteString("\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "  • %s on %s from %s (%s)\n",
				EscapeMarkdown(ref.Title),
				EscapeMarkdown(ref.ServerName),
				EscapeMarkdown(ref.PlayerAddress),
				EscapeMarkdown(ref.DisplayType))
		}
		b.WriteString("\n")
	}

	return Message{Text: b.String(), Keyboard: [][]Button{navHome()}}
}

// ServerStatusData collects the independently fetched pieces of one
// server status report. Each piece fails on its own; the renderer shows
// whatever arrived and marks the rest.
type ServerStatusData struct {
	Server config.PlexServer
	Index  int

	Identity    *plex.Identity
	IdentityErr error

	// Metrics is nil when the host has no Glances configuration or the
	// fetch failed; GlancesConfigured distinguishes the two.
	GlancesConfigured bool
	Metrics           *glances.HostMetrics
	MetricsErr        error

	ActiveStreams int

	Libraries    []plex.LibrarySection
	LibrariesErr error
}

// ServerStatus renders the per-server status report.
func ServerStatus(d ServerStatusData) Message {
	name := EscapeMarkdown(d.Server.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Server status for %s:\n\n", name)

	if d.IdentityErr != nil {
		b.WriteString("Status: 🔴 Offline\n")
		fmt.Fprintf(&b, "⚠️ Could not reach the server: %s\n", EscapeMarkdown(d.IdentityErr.Error()))
		return Message{Text: b.String(), Keyboard: navServer(d.Index)}
	}

	b.WriteString("Status: 🟢 Online\n")
	fmt.Fprintf(&b, "Version: %s\n", EscapeMarkdown(d.Identity.Version))
	fmt.Fprintf(&b, "Platform: %s\n", EscapeMarkdown(d.Identity.Platform))
	fmt.Fprintf(&b, "Identifier: %s\n", EscapeMarkdown(d.Identity.MachineIdentifier))
	if d.Identity.FriendlyName != "" {
		fmt.Fprintf(&b, "Friendly name: %s\n", EscapeMarkdown(d.Identity.FriendlyName))
	}

	b.WriteString("\n")
	writeHostMetrics(&b, d)

	fmt.Fprintf(&b, "\nActive streams: %d\n", d.ActiveStreams)

	if d.LibrariesErr != nil {
		fmt.Fprintf(&b, "\n⚠️ Could not list libraries: %s\n", EscapeMarkdown(d.LibrariesErr.Error()))
	} else if len(d.Libraries) > 0 {
		b.WriteString("\nLibraries:\n")
		for _, lib := range d.Libraries {
			fmt.Fprintf(&b, "- %s\n", EscapeMarkdown(lib.Title))
		}
	}

	return Message{Text: b.String(), Keyboard: navServer(d.Index)}
}

// writeHostMetrics renders the Glances block, phrasing failures by kind
// so the operator can tell an unreachable host from a misbehaving API.
func writeHostMetrics(b *strings.Builder, d ServerStatusData) {
	if !d.GlancesConfigured {
		fmt.Fprintf(b, "⚠️ No Glances configuration for server %s\n", EscapeMarkdown(d.Server.Name))
		return
	}
	if d.MetricsErr != nil {
		var gerr *glances.Error
		switch {
		case errors.As(d.MetricsErr, &gerr) && gerr.Kind == glances.KindNetwork:
			b.WriteString("⚠️ Metrics host unreachable\n")
		case errors.As(d.MetricsErr, &gerr) && gerr.Kind == glances.KindStatus:
			fmt.Fprintf(b, "⚠️ Metrics host rejected %d of the queries\n", gerr.FailingCount())
		default:
			b.WriteString("⚠️ Unexpected metrics API response\n")
		}
		return
	}
	fmt.Fprintf(b, "💻 CPU usage: %.1f%%\n", d.Metrics.CPUPercent)
	fmt.Fprintf(b, "🧠 RAM usage: %.1f%%\n", d.Metrics.MemPercent)
	fmt.Fprintf(b, "🌐 Public IP: %s\n", EscapeMarkdown(d.Metrics.PublicIP))
	fmt.Fprintf(b, "🏠 Private IP: %s\n", EscapeMarkdown(d.Metrics.PrivateIP))
	fmt.Fprintf(b, "⏱️ Uptime: %s\n", EscapeMarkdown(d.Metrics.Uptime))
}

// LibraryStats lists the sections of one server with their item counts.
func LibraryStats(server config.PlexServer, index int, sections []plex.LibrarySection, err error) Message {
	name := EscapeMarkdown(server.Name)
	msg := Message{Keyboard: navServer(index)}

	if err != nil {
		msg.Text = fmt.Sprintf("⚠️ Could not read libraries on %s: %s", name, EscapeMarkdown(err.Error()))
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Libraries on %s:\n\n", name)
	for _, s := range sections {
		fmt.Fprintf(&b, "📁 %s:\n", EscapeMarkdown(s.Title))
		fmt.Fprintf(&b, "   - Type: %s\n", EscapeMarkdown(sectionTypeLabel(s.Type)))
		if s.CountErr != nil {
			b.WriteString("   - Items: unknown ⚠️\n\n")
		} else {
			fmt.Fprintf(&b, "   - Items: %d\n\n", s.ItemCount)
		}
	}
	msg.Text = b.String()
	return msg
}

// Help describes what each menu entry does.
func Help() Message {
	return Message{
		Text: "🦸 Welcome to the Dual Plex Control help center!\n\n" +
			"A quick guide to what I can do:\n\n" +
			"🖥️ View servers: lists your Plex servers.\n" +
			"🔄 Refresh libraries: refreshes every library on one server.\n" +
			"👀 Now playing: shows what a server is playing right now, with a stop button per stream.\n" +
			"📊 Server status: version, platform and host metrics for one server.\n" +
			"📚 Library stats: the libraries of one server with item counts.\n" +
			"🎬 Current streams: every active stream across all servers.\n" +
			"🔄 Transcoding users: the users currently transcoding, split by track.\n" +
			"👥 Multi-stream users: users streaming from several places at once.\n\n" +
			"Ping @SinCracK if you need a hand! 🎉",
		Keyboard: [][]Button{navHome()},
	}
}

// PresentableLabel is the short plain-text label for a session, used on
// buttons where Markdown is not interpreted.
func PresentableLabel(s report.ClassifiedSession) string {
	return report.PresentableTitle(s.RawSession)
}

// writeSession appends the shared per-session lines. All dynamic values
// escape here, once.
func writeSession(b *strings.Builder, s report.ClassifiedSession) {
	fmt.Fprintf(b, "👤 User: %s\n", EscapeMarkdown(s.Username))
	fmt.Fprintf(b, "🎥 Title: %s\n", EscapeMarkdown(report.PresentableTitle(s.RawSession)))
	fmt.Fprintf(b, "📺 Type: %s\n", EscapeMarkdown(s.DisplayType))
	fmt.Fprintf(b, "⏳ Progress: %d minutes\n", s.ProgressMinutes)
}

func trackLabel(tracks []report.TrackKind) string {
	if len(tracks) == 0 {
		return "unknown"
	}
	labels := make([]string, 0, len(tracks))
	for _, t := range tracks {
		switch t {
		case report.TrackVideo:
			labels = append(labels, "Video")
		case report.TrackAudio:
			labels = append(labels, "Audio")
		}
	}
	return strings.Join(labels, " and ")
}

func sectionTypeLabel(kind string) string {
	switch kind {
	case "movie":
		return "Movies"
	case "show":
		return "Shows"
	case "artist":
		return "Music"
	case "photo":
		return "Photos"
	default:
		return report.DisplayType(kind)
	}
}

func anyFetchErr(agg report.AggregateReport) bool {
	for _, snap := range agg.Snapshots {
		if !snap.OK() {
			return true
		}
	}
	return false
}

func navHome() []Button {
	return []Button{{Label: "🏠 Back to main menu", Callback: Token(ActionMainMenu)}}
}

func navServer(index int) [][]Button {
	return [][]Button{
		{{Label: "🔙 Back to server options", Callback: Token(ActionServer, strconv.Itoa(index))}},
		navHome(),
	}
}
