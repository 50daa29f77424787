// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource feeds one batch of updates, then blocks until cancellation.
type fakeSource struct {
	batch   []Update
	offsets []int64
	fed     bool
}

func (s *fakeSource) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]Update, error) {
	s.offsets = append(s.offsets, offset)
	if !s.fed {
		s.fed = true
		return s.batch, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPollerAdvancesOffsetAndDispatches(t *testing.T) {
	f := newFixture(t)
	source := &fakeSource{batch: []Update{
		callback(5, User{ID: 5}, "main_menu"),
		{
			UpdateID: 2,
			CallbackQuery: &CallbackQuery{
				ID: "cb2", From: User{ID: 5}, Data: "help",
				Message: &ChatMessage{MessageID: 4, Chat: Chat{ID: 5}},
			},
		},
	}}
	poller := NewPoller(source, f.router, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := poller.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve() error = %v, want context deadline", err)
	}

	if len(f.gateway.edited) != 2 {
		t.Errorf("handled = %d updates, want 2", len(f.gateway.edited))
	}
	// Second poll must acknowledge past the highest update ID.
	if len(source.offsets) < 2 || source.offsets[1] != 3 {
		t.Errorf("offsets = %v, want second poll at 3", source.offsets)
	}
}
