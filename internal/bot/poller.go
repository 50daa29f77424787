// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"context"
	"time"

	"github.com/sincrack/dualplex/internal/logging"
)

// pollRetryDelay is the pause after a failed getUpdates call before the
// next long poll.
const pollRetryDelay = 3 * time.Second

// UpdateSource long-polls for inbound updates. Satisfied by *Client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller is the long-poll loop, run as a service under the supervision
// tree. Updates are handled strictly one at a time; an update is only
// acknowledged (via the offset) once its batch has been received, and a
// failed poll backs off instead of spinning.
type Poller struct {
	source      UpdateSource
	router      *Router
	pollTimeout time.Duration
}

// NewPoller creates the update poller.
func NewPoller(source UpdateSource, router *Router, pollTimeout time.Duration) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 50 * time.Second
	}
	return &Poller{source: source, router: router, pollTimeout: pollTimeout}
}

// Serve implements suture.Service. It returns only when ctx is done.
func (p *Poller) Serve(ctx context.Context) error {
	logger := logging.WithComponent("poller")
	logger.Info().Msg("Update poller started")

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("Poll failed")
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			uctx := logging.WithNewCorrelationID(ctx)
			p.router.HandleUpdate(uctx, u)
		}
	}
}

// String names the service in supervisor logs.
func (p *Poller) String() string {
	return "telegram-poller"
}
