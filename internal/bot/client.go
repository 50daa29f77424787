// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/sincrack/dualplex/internal/metrics"
	"github.com/sincrack/dualplex/internal/render"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a Bot API method failure.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Client calls the Telegram Bot API over plain HTTP.
//
// Outbound calls share a rate limiter sized to the Bot API's global
// budget (~30 messages per second) so a burst of interactions never
// trips flood control.
type Client struct {
	token   string
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter

	// httpClient carries no Timeout of its own: getUpdates holds the
	// connection open for the long-poll window, so each call is bounded
	// by its context deadline instead.
	httpClient *http.Client
}

// NewClient creates a Bot API client. timeout bounds each call except
// getUpdates, which adds the long-poll window on top.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
	}
}

// GetUpdates long-polls for inbound updates. offset acknowledges all
// updates below it; timeout is the server-side hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	seconds := int(timeout / time.Second)
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         seconds,
		"allowed_updates": []string{"message", "callback_query"},
	}

	// The long poll holds the connection open for the full window; give
	// it the window plus the ordinary call budget.
	ctx, cancel := context.WithTimeout(ctx, timeout+c.timeout)
	defer cancel()

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage posts a new message with Markdown text and the inline
// keyboard of msg.
func (c *Client) SendMessage(ctx context.Context, chatID int64, msg render.Message) (*ChatMessage, error) {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       msg.Text,
		"parse_mode": "Markdown",
	}
	if kb := keyboardMarkup(msg); kb != nil {
		payload["reply_markup"] = kb
	}

	var sent ChatMessage
	if err := c.call(ctx, "sendMessage", payload, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// SendPhoto posts a photo with the message text as its caption and the
// inline keyboard attached. Menus normally travel this way; callers fall
// back to SendMessage when photo delivery fails.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo []byte, msg render.Message) (*ChatMessage, error) {
	body, contentType, err := photoBody(chatID, photo, msg)
	if err != nil {
		return nil, err
	}

	var sent ChatMessage
	if err := c.invoke(ctx, "sendPhoto", body, contentType, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// photoBody builds the multipart sendPhoto request. The keyboard travels
// as a JSON-serialized reply_markup form field.
func photoBody(chatID int64, photo []byte, msg render.Message) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	w.WriteField("chat_id", strconv.FormatInt(chatID, 10))
	w.WriteField("caption", msg.Text)
	w.WriteField("parse_mode", "Markdown")
	if kb := keyboardMarkup(msg); kb != nil {
		raw, err := json.Marshal(kb)
		if err != nil {
			return nil, "", fmt.Errorf("telegram sendPhoto: marshal keyboard: %w", err)
		}
		w.WriteField("reply_markup", string(raw))
	}

	part, err := w.CreateFormFile("photo", "dualplex.png")
	if err != nil {
		return nil, "", fmt.Errorf("telegram sendPhoto: build form: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, "", fmt.Errorf("telegram sendPhoto: build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("telegram sendPhoto: build form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// EditMessageText rewrites an existing message in place, menu included.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, msg render.Message) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       msg.Text,
		"parse_mode": "Markdown",
	}
	if kb := keyboardMarkup(msg); kb != nil {
		payload["reply_markup"] = kb
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

// EditMessageCaption rewrites a photo message's caption and keyboard in
// place. Fails when the target message carries no caption, so callers
// retry via EditMessageText for plain-text messages.
func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, msg render.Message) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    msg.Text,
		"parse_mode": "Markdown",
	}
	if kb := keyboardMarkup(msg); kb != nil {
		payload["reply_markup"] = kb
	}
	return c.call(ctx, "editMessageCaption", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press, optionally with a
// toast text shown to the user.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

func keyboardMarkup(msg render.Message) *inlineKeyboardMarkup {
	if len(msg.Keyboard) == 0 {
		return nil
	}
	markup := &inlineKeyboardMarkup{}
	for _, row := range msg.Keyboard {
		buttons := make([]inlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineKeyboardButton{Text: b.Label, CallbackData: b.Callback})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}

// call invokes one JSON-bodied Bot API method.
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal payload: %w", method, err)
	}
	return c.invoke(ctx, method, body, "application/json", result)
}

// invoke sends one Bot API request. Flood-control responses (429) are
// retried once after the server-indicated pause; other API errors come
// back as *APIError.
func (c *Client) invoke(ctx context.Context, method string, body []byte, contentType string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	// getUpdates arrives with its long-poll deadline already set;
	// everything else gets the ordinary call budget here.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.post(ctx, method, body, contentType)
	if err != nil {
		metrics.TelegramCallsTotal.WithLabelValues(method, "error").Inc()
		return err
	}

	if resp.ErrorCode == http.StatusTooManyRequests {
		pause := time.Duration(1) * time.Second
		if resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
			pause = time.Duration(resp.Parameters.RetryAfter) * time.Second
		}
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			metrics.TelegramCallsTotal.WithLabelValues(method, "error").Inc()
			return ctx.Err()
		}
		if resp, err = c.post(ctx, method, body, contentType); err != nil {
			metrics.TelegramCallsTotal.WithLabelValues(method, "error").Inc()
			return err
		}
	}

	if !resp.OK {
		metrics.TelegramCallsTotal.WithLabelValues(method, "error").Inc()
		return &APIError{Method: method, Code: resp.ErrorCode, Description: resp.Description}
	}
	metrics.TelegramCallsTotal.WithLabelValues(method, "ok").Inc()

	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, body []byte, contentType string) (*apiResponse, error) {
	url := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: create request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		// The error string may embed the request URL, token included.
		return nil, fmt.Errorf("telegram %s: request failed: %w", method, redactToken(err, c.token))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("telegram %s: decode response (status %d): %w", method, httpResp.StatusCode, err)
	}
	return &resp, nil
}

// redactToken removes the bot token from transport errors so it never
// reaches logs or rendered output.
func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	msg := err.Error()
	redacted := bytes.ReplaceAll([]byte(msg), []byte(token), []byte("[redacted]"))
	if string(redacted) == msg {
		return err
	}
	return fmt.Errorf("%s", redacted)
}

// formatChatID renders a chat ID for logging.
func formatChatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
