// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package glances

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a metrics fetch failure so callers can render a
// different hint for "server unreachable" than for "unexpected API
// response".
type Kind int

const (
	// KindNetwork is a transport-level failure: timeout, refused,
	// DNS. The Glances host is unreachable.
	KindNetwork Kind = iota

	// KindStatus means the host answered but one or more of the four
	// queries returned a non-success status in both API versions.
	KindStatus

	// KindShape means a query succeeded but its JSON matched none of
	// the known response shapes. Never silently treated as zero.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Error is a typed Glances failure.
type Error struct {
	Kind Kind

	// Field names the metric whose shape was unrecognized (KindShape).
	Field string

	// Statuses maps query name to HTTP status for KindStatus failures.
	Statuses map[string]int

	// cause is the underlying transport error for KindNetwork.
	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("glances unreachable: %v", e.cause)
	case KindStatus:
		failing := make([]string, 0, len(e.Statuses))
		for q, s := range e.Statuses {
			if s != 200 {
				failing = append(failing, fmt.Sprintf("%s=%d", q, s))
			}
		}
		sort.Strings(failing)
		return fmt.Sprintf("glances queries failed (%d): %s", len(failing), strings.Join(failing, ", "))
	case KindShape:
		return fmt.Sprintf("unrecognized %s response shape", e.Field)
	default:
		return "glances error"
	}
}

func (e *Error) Unwrap() error { return e.cause }

// FailingCount reports how many of the four queries failed, for
// KindStatus errors.
func (e *Error) FailingCount() int {
	n := 0
	for _, s := range e.Statuses {
		if s != 200 {
			n++
		}
	}
	return n
}
