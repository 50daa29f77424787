// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sincrack/dualplex/internal/render"
)

const testToken = "12345:TESTTOKENxyz"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(testToken, 2*time.Second)
	client.baseURL = server.URL
	return client
}

func TestSendMessagePayload(t *testing.T) {
	t.Parallel()

	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/sendMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok": true, "result": {"message_id": 77, "chat": {"id": 5}}}`))
	})

	msg := render.Message{
		Text: "hello",
		Keyboard: [][]render.Button{
			{{Label: "🏠 Home", Callback: "main_menu"}},
		},
	}
	sent, err := client.SendMessage(context.Background(), 5, msg)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if sent.MessageID != 77 {
		t.Errorf("MessageID = %d, want 77", sent.MessageID)
	}
	if got["parse_mode"] != "Markdown" {
		t.Errorf("parse_mode = %v", got["parse_mode"])
	}
	if got["reply_markup"] == nil {
		t.Error("reply_markup missing")
	}
}

func TestSendPhotoMultipartPayload(t *testing.T) {
	t.Parallel()

	photo := []byte{0x89, 'P', 'N', 'G'}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/sendPhoto" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := r.FormValue("chat_id"); got != "5" {
			t.Errorf("chat_id = %q", got)
		}
		if got := r.FormValue("caption"); got != "hello" {
			t.Errorf("caption = %q", got)
		}
		if got := r.FormValue("parse_mode"); got != "Markdown" {
			t.Errorf("parse_mode = %q", got)
		}
		if got := r.FormValue("reply_markup"); !strings.Contains(got, "main_menu") {
			t.Errorf("reply_markup = %q", got)
		}
		file, _, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("photo part missing: %v", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil || !bytes.Equal(data, photo) {
			t.Errorf("photo bytes = %v (err %v)", data, err)
		}
		w.Write([]byte(`{"ok": true, "result": {"message_id": 88, "chat": {"id": 5}}}`))
	})

	msg := render.Message{
		Text: "hello",
		Keyboard: [][]render.Button{
			{{Label: "🏠 Home", Callback: "main_menu"}},
		},
	}
	sent, err := client.SendPhoto(context.Background(), 5, photo, msg)
	if err != nil {
		t.Fatalf("SendPhoto() error = %v", err)
	}
	if sent.MessageID != 88 {
		t.Errorf("MessageID = %d, want 88", sent.MessageID)
	}
}

func TestEditMessageCaptionPayload(t *testing.T) {
	t.Parallel()

	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/editMessageCaption" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok": true, "result": true}`))
	})

	err := client.EditMessageCaption(context.Background(), 5, 77, render.Message{Text: "updated"})
	if err != nil {
		t.Fatalf("EditMessageCaption() error = %v", err)
	}
	if got["caption"] != "updated" || got["message_id"] != float64(77) {
		t.Errorf("payload = %v", got)
	}
}

func TestCallReturnsAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: message is not modified"}`))
	})

	err := client.EditMessageText(context.Background(), 5, 77, render.Message{Text: "same"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != 400 || apiErr.Method != "editMessageText" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestCallRetriesFloodControl(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"ok": false, "error_code": 429, "description": "Too Many Requests", "parameters": {"retry_after": 0}}`))
			return
		}
		w.Write([]byte(`{"ok": true, "result": {"message_id": 1, "chat": {"id": 5}}}`))
	})

	if _, err := client.SendMessage(context.Background(), 5, render.Message{Text: "hi"}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want retry after flood control", calls)
	}
}

func TestGetUpdates(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["offset"] != float64(41) {
			t.Errorf("offset = %v, want 41", payload["offset"])
		}
		w.Write([]byte(`{"ok": true, "result": [
			{"update_id": 41, "callback_query": {"id": "cb1", "from": {"id": 9}, "data": "server:0",
				"message": {"message_id": 3, "chat": {"id": 5}}}}
		]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 41, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if len(updates) != 1 || updates[0].CallbackQuery == nil {
		t.Fatalf("updates = %+v", updates)
	}
	if updates[0].CallbackQuery.Data != "server:0" {
		t.Errorf("callback data = %q", updates[0].CallbackQuery.Data)
	}
}

// Transport errors embed the request URL; the token must never survive
// into the error string.
func TestTransportErrorRedactsToken(t *testing.T) {
	t.Parallel()

	client := NewClient(testToken, 500*time.Millisecond)
	client.baseURL = "http://127.0.0.1:1"

	_, err := client.SendMessage(context.Background(), 5, render.Message{Text: "hi"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Errorf("token leaked in error: %v", err)
	}
}
