// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package bot is the chat gateway: the Telegram Bot API client, the
// long-poll update loop, and the callback router that turns button
// presses into report handlers. Authorization lives entirely at this
// boundary; no handler runs for an unauthorized sender.
package bot

import "github.com/goccy/go-json"

// Update is one inbound Telegram update.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *ChatMessage   `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// ChatMessage is an inbound or sent chat message.
type ChatMessage struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies a Telegram chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// User identifies a Telegram account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// CallbackQuery is one button press, carrying the opaque token the
// button was created with.
type CallbackQuery struct {
	ID      string       `json:"id"`
	From    User         `json:"from"`
	Message *ChatMessage `json:"message,omitempty"`
	Data    string       `json:"data"`
}

// inlineKeyboardMarkup is the reply_markup payload for inline buttons.
type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

// inlineKeyboardButton is one button of an inline keyboard.
type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// apiResponse is the Bot API envelope common to all methods.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *responseParams `json:"parameters,omitempty"`
}

// responseParams carries flood-control detail on 429 responses.
type responseParams struct {
	RetryAfter int `json:"retry_after,omitempty"`
}
