// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/logging"
	"github.com/sincrack/dualplex/internal/metrics"
	"github.com/sincrack/dualplex/internal/render"
)

const unauthorizedText = "Sorry, you are not authorized to use this bot. Contact @SinCracK."

// Gateway is the outbound Bot API surface the router needs. Satisfied by
// *Client; tests substitute a recorder.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, msg render.Message) (*ChatMessage, error)
	SendPhoto(ctx context.Context, chatID int64, photo []byte, msg render.Message) (*ChatMessage, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, msg render.Message) error
	EditMessageCaption(ctx context.Context, chatID, messageID int64, msg render.Message) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// Router authorizes inbound updates and dispatches button presses to the
// report handlers. Every update is handled to completion before the next
// one starts; there is no per-chat state.
type Router struct {
	cfg      *config.Config
	gateway  Gateway
	handlers *Handlers
}

// NewRouter creates the update router.
func NewRouter(cfg *config.Config, gateway Gateway, handlers *Handlers) *Router {
	return &Router{cfg: cfg, gateway: gateway, handlers: handlers}
}

// HandleUpdate processes one inbound update end to end. Delivery errors
// are logged, never returned: one failed interaction must not take down
// the poll loop.
func (r *Router) HandleUpdate(ctx context.Context, u Update) {
	switch {
	case u.CallbackQuery != nil:
		r.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		r.handleMessage(ctx, u.Message)
	default:
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
	}
}

func (r *Router) handleMessage(ctx context.Context, m *ChatMessage) {
	if !r.authorized(m.Chat.ID, m.From) {
		metrics.UpdatesTotal.WithLabelValues("unauthorized").Inc()
		logging.Ctx(ctx).Warn().Str("chat_id", formatChatID(m.Chat.ID)).Msg("Unauthorized message")
		// The refusal goes out as plain text, without the menu logo.
		if _, err := r.gateway.SendMessage(ctx, m.Chat.ID, render.Message{Text: unauthorizedText}); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Refusal delivery failed")
		}
		return
	}

	command, _, _ := strings.Cut(m.Text, " ")
	switch command {
	case "/start", "/menu":
		metrics.UpdatesTotal.WithLabelValues("handled").Inc()
		r.deliver(ctx, m.Chat.ID, 0, r.handlers.MainMenu())
	default:
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
	}
}

func (r *Router) handleCallback(ctx context.Context, q *CallbackQuery) {
	if q.Message == nil {
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
		return
	}
	chatID := q.Message.Chat.ID

	if !r.authorized(chatID, &q.From) {
		metrics.UpdatesTotal.WithLabelValues("unauthorized").Inc()
		logging.Ctx(ctx).Warn().Str("chat_id", formatChatID(chatID)).Msg("Unauthorized callback")
		r.answer(ctx, q.ID, unauthorizedText)
		return
	}

	r.answer(ctx, q.ID, "")
	metrics.UpdatesTotal.WithLabelValues("handled").Inc()

	msg, ok := r.dispatch(ctx, q)
	if !ok {
		return
	}
	r.deliver(ctx, chatID, q.Message.MessageID, msg)
}

// dispatch resolves a callback token to a rendered message. ok is false
// when the token itself was answered (bad token, out-of-range server).
func (r *Router) dispatch(ctx context.Context, q *CallbackQuery) (render.Message, bool) {
	action := render.Action(q.Data)

	switch action {
	case render.ActionMainMenu:
		return r.handlers.MainMenu(), true
	case render.ActionServerList:
		return r.handlers.ServerList(), true
	case render.ActionStreams:
		return r.handlers.CurrentStreams(ctx), true
	case render.ActionTranscoding:
		return r.handlers.TranscodingUsers(ctx), true
	case render.ActionMultiStreams:
		return r.handlers.MultiStreams(ctx), true
	case render.ActionHelp:
		return r.handlers.Help(), true
	}

	// The remaining actions address a server by index.
	arity := 1
	if action == render.ActionStop {
		arity = 2
	}
	_, fields, err := render.ParseToken(q.Data, arity)
	if err != nil {
		logging.Ctx(ctx).Warn().Str("token", q.Data).Err(err).Msg("Malformed callback token")
		r.answer(ctx, q.ID, "That button is no longer valid ⚠️")
		return render.Message{}, false
	}

	server, index, ok := r.serverAt(fields[0])
	if !ok {
		logging.Ctx(ctx).Warn().Str("token", q.Data).Msg("Server index out of range")
		r.answer(ctx, q.ID, "Server not found ⚠️")
		return render.Message{}, false
	}

	switch action {
	case render.ActionServer:
		return r.handlers.ServerMenu(server, index), true
	case render.ActionRefresh:
		return r.handlers.RefreshLibraries(ctx, server, index), true
	case render.ActionPlaying:
		return r.handlers.NowPlaying(ctx, server, index), true
	case render.ActionStatus:
		return r.handlers.ServerStatus(ctx, server, index), true
	case render.ActionStats:
		return r.handlers.LibraryStats(ctx, server, index), true
	case render.ActionStop:
		return r.handlers.StopSession(ctx, server, index, fields[1]), true
	default:
		logging.Ctx(ctx).Warn().Str("token", q.Data).Msg("Unknown callback action")
		r.answer(ctx, q.ID, "That button is no longer valid ⚠️")
		return render.Message{}, false
	}
}

// serverAt resolves an index field against the configured server list
// with explicit bounds checking. Buttons outlive reports; a stale index
// answers NotFound instead of panicking.
func (r *Router) serverAt(field string) (config.PlexServer, int, bool) {
	index, err := strconv.Atoi(field)
	if err != nil {
		return config.PlexServer{}, 0, false
	}
	server, ok := r.cfg.ServerAt(index)
	return server, index, ok
}

// authorized accepts a sender on the chat allowlist or with the allowed
// username. The check runs before any handler; unauthorized senders get
// a refusal and nothing else.
func (r *Router) authorized(chatID int64, from *User) bool {
	for _, id := range r.cfg.Telegram.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	allowed := strings.TrimPrefix(r.cfg.Telegram.AllowedUsername, "@")
	if allowed != "" && from != nil && strings.EqualFold(from.Username, allowed) {
		return true
	}
	return false
}

// deliver edits the originating message in place when possible, falling
// back to a fresh message when editing fails (the original may be too
// old, or this is a command rather than a button press). Menus are photo
// messages, so caption editing comes first; the text edit covers a
// message that was delivered as plain text.
func (r *Router) deliver(ctx context.Context, chatID, messageID int64, msg render.Message) {
	if messageID != 0 {
		if err := r.gateway.EditMessageCaption(ctx, chatID, messageID, msg); err == nil {
			return
		}
		err := r.gateway.EditMessageText(ctx, chatID, messageID, msg)
		if err == nil {
			return
		}
		logging.Ctx(ctx).Debug().Err(err).Msg("Edit failed, sending fresh message")
	}
	r.send(ctx, chatID, msg)
}

// send delivers a menu as a photo with the text as its caption, dropping
// to a plain text message when the photo cannot be delivered (asset
// missing, caption too long, API refusal).
func (r *Router) send(ctx context.Context, chatID int64, msg render.Message) {
	if logo := render.Logo(); len(logo) > 0 {
		_, err := r.gateway.SendPhoto(ctx, chatID, logo, msg)
		if err == nil {
			return
		}
		logging.Ctx(ctx).Debug().Err(err).Msg("Photo delivery failed, sending plain text")
	}
	if _, err := r.gateway.SendMessage(ctx, chatID, msg); err != nil {
		logging.Ctx(ctx).Error().Str("chat_id", formatChatID(chatID)).Err(err).Msg("Message delivery failed")
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.gateway.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Callback answer failed")
	}
}
