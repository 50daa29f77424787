// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package report

// AggregateReport is the fleet-wide reduction of one snapshot pass.
// Totals sum only over error-free snapshots; a failed snapshot still
// appears in Snapshots and PerServer so its error surfaces per-server.
type AggregateReport struct {
	TotalUsers            int
	TotalTranscodingVideo int
	TotalTranscodingAudio int

	// TotalTranscoding counts sessions with any track transcoding; a
	// session converting both tracks still counts once.
	TotalTranscoding int

	// Snapshots preserves configured server order for rendering.
	Snapshots []ServerSnapshot
	// PerServer indexes the same snapshots by server name.
	PerServer map[string]*ServerSnapshot
}

// Aggregate reduces the snapshots to fleet totals. Each session counts
// exactly once against exactly one server; snapshot order never changes
// the totals.
func Aggregate(snapshots []ServerSnapshot) AggregateReport {
	agg := AggregateReport{
		Snapshots: snapshots,
		PerServer: make(map[string]*ServerSnapshot, len(snapshots)),
	}
	for i := range snapshots {
		snap := &snapshots[i]
		agg.PerServer[snap.Server.Name] = snap
		if !snap.OK() {
			continue
		}
		agg.TotalUsers += len(snap.Sessions)
		for _, s := range snap.Sessions {
			if s.IsTranscoding {
				agg.TotalTranscoding++
			}
			if s.Transcoding(TrackVideo) {
				agg.TotalTranscodingVideo++
			}
			if s.Transcoding(TrackAudio) {
				agg.TotalTranscodingAudio++
			}
		}
	}
	return agg
}

// StreamRef locates one of a user's simultaneous streams.
type StreamRef struct {
	ServerName    string
	PlayerAddress string
	Title         string
	DisplayType   string
}

// MultiStreamCorrelation groups simultaneous sessions by username across
// all servers. Only usernames with at least two streams are retained;
// single-stream users belong in the plain aggregate counts, not here.
type MultiStreamCorrelation struct {
	ByUsername map[string][]StreamRef

	// Usernames lists the retained users in first-appearance order
	// (server list order, then session order) so renders are
	// deterministic.
	Usernames []string
}

// Correlate builds the multi-stream view from the snapshots. Two sessions
// of the same username on the same server count the same as two across
// servers; simultaneous-stream detection is uniform either way.
func Correlate(snapshots []ServerSnapshot) MultiStreamCorrelation {
	byUser := make(map[string][]StreamRef)
	var order []string

	for _, snap := range snapshots {
		if !snap.OK() {
			continue
		}
		for _, s := range snap.Sessions {
			if s.Username == "" {
				continue
			}
			if _, seen := byUser[s.Username]; !seen {
				order = append(order, s.Username)
			}
			byUser[s.Username] = append(byUser[s.Username], StreamRef{
				ServerName:    snap.Server.Name,
				PlayerAddress: s.PlayerAddress,
				Title:         PresentableTitle(s.RawSession),
				DisplayType:   s.DisplayType,
			})
		}
	}

	corr := MultiStreamCorrelation{ByUsername: make(map[string][]StreamRef)}
	for _, username := range order {
		refs := byUser[username]
		if len(refs) < 2 {
			continue
		}
		corr.ByUsername[username] = refs
		corr.Usernames = append(corr.Usernames, username)
	}
	return corr
}

// MultiAddress reports whether the username's streams originate from more
// than one distinct network address. Multiple addresses at once suggest
// account sharing; the finding is surfaced, never enforced.
func (c MultiStreamCorrelation) MultiAddress(username string) bool {
	refs := c.ByUsername[username]
	if len(refs) < 2 {
		return false
	}
	first := refs[0].PlayerAddress
	for _, ref := range refs[1:] {
		if ref.PlayerAddress != first {
			return true
		}
	}
	return false
}
