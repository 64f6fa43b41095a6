package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/couplehq/couplet/internal/bot"
)

type recordedCall struct {
	method  string
	payload map[string]any
}

// fakeAPI records Bot API calls and answers them all with ok=true.
type fakeAPI struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode %s payload: %v", method, err)
		}

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{method: method, payload: payload})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"ok":true,"result":true}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})
}

func (f *fakeAPI) callsTo(method string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, call := range f.calls {
		if call.method == method {
			out = append(out, call)
		}
	}
	return out
}

type scriptedHandler struct {
	lastEvent bot.Event
	effects   []bot.Effect
}

func (h *scriptedHandler) HandleEvent(_ context.Context, ev bot.Event) ([]bot.Effect, error) {
	h.lastEvent = ev
	return h.effects, nil
}

func newTestGateway(t *testing.T, handler EventHandler) (*Gateway, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	return New(NewClient("test-token", server.URL), handler), api
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		command string
		payload string
		ok      bool
	}{
		{"/start", "start", "", true},
		{"/start invite_abc", "start", "invite_abc", true},
		{"/reset@couplet_bot", "reset", "", true},
		{"/balance", "balance", "", true},
		{"plain text", "", "", false},
		{"/", "", "", false},
	}

	for _, tc := range tests {
		command, payload, ok := parseCommand(tc.text)
		if command != tc.command || payload != tc.payload || ok != tc.ok {
			t.Errorf("parseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.text, command, payload, ok, tc.command, tc.payload, tc.ok)
		}
	}
}

func TestMapUpdateTextMessage(t *testing.T) {
	t.Parallel()

	ev, src, ok := mapUpdate(update{
		UpdateID: 1,
		Message: &message{
			MessageID: 42,
			From:      &peer{ID: 7, FirstName: "Alice"},
			Chat:      chat{ID: 7},
			Text:      "back massage",
		},
	})
	if !ok {
		t.Fatal("expected update mapped")
	}
	if ev.Kind != bot.EventText || ev.ChatID != "7" || ev.Payload != "back massage" || ev.DisplayName != "Alice" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if src.chatID != 7 || src.messageID != 42 || src.callbackID != "" {
		t.Fatalf("unexpected origin %+v", src)
	}
}

func TestMapUpdateStartWithPayload(t *testing.T) {
	t.Parallel()

	ev, _, ok := mapUpdate(update{
		Message: &message{
			Chat: chat{ID: 7},
			Text: "/start invite_token-01",
		},
	})
	if !ok || ev.Kind != bot.EventStart || ev.Payload != "invite_token-01" {
		t.Fatalf("unexpected event %+v (ok=%v)", ev, ok)
	}
}

func TestMapUpdateCallback(t *testing.T) {
	t.Parallel()

	ev, src, ok := mapUpdate(update{
		CallbackQuery: &callbackQuery{
			ID:      "cb-1",
			From:    peer{ID: 7, FirstName: "Alice"},
			Message: &message{MessageID: 42, Chat: chat{ID: 7}},
			Data:    "accept_id-09",
		},
	})
	if !ok || ev.Kind != bot.EventAction || ev.Payload != "accept_id-09" {
		t.Fatalf("unexpected event %+v (ok=%v)", ev, ok)
	}
	if src.callbackID != "cb-1" || src.messageID != 42 {
		t.Fatalf("unexpected origin %+v", src)
	}
}

func TestMapUpdateIgnoresEmpty(t *testing.T) {
	t.Parallel()

	if _, _, ok := mapUpdate(update{UpdateID: 3}); ok {
		t.Fatal("expected empty update dropped")
	}
}

func TestHandleUpdateDeliversEffects(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{effects: []bot.Effect{
		{Kind: bot.EffectReply, Text: "hello", Keyboard: &bot.Keyboard{
			Rows: [][]bot.Button{{{Label: "Balance"}}},
		}},
		{Kind: bot.EffectSend, ChatID: "99", Text: "for your partner"},
	}}
	gateway, api := newTestGateway(t, handler)

	gateway.handleUpdate(context.Background(), update{
		UpdateID: 1,
		Message: &message{
			MessageID: 10,
			Chat:      chat{ID: 7},
			Text:      "hi",
		},
	})

	sends := api.callsTo("sendMessage")
	if len(sends) != 2 {
		t.Fatalf("expected 2 sendMessage calls, got %d", len(sends))
	}
	if got := sends[0].payload["chat_id"].(float64); got != 7 {
		t.Fatalf("expected reply to chat 7, got %v", got)
	}
	if _, ok := sends[0].payload["reply_markup"]; !ok {
		t.Fatal("expected reply markup on first send")
	}
	if got := sends[1].payload["chat_id"].(float64); got != 99 {
		t.Fatalf("expected partner send to chat 99, got %v", got)
	}
}

func TestHandleUpdateAnswersCallbackAndEdits(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{effects: []bot.Effect{
		{Kind: bot.EffectEditMessage, Text: "accepted"},
	}}
	gateway, api := newTestGateway(t, handler)

	gateway.handleUpdate(context.Background(), update{
		UpdateID: 2,
		CallbackQuery: &callbackQuery{
			ID:      "cb-1",
			From:    peer{ID: 7},
			Message: &message{MessageID: 42, Chat: chat{ID: 7}},
			Data:    "accept_id-01",
		},
	})

	if answers := api.callsTo("answerCallbackQuery"); len(answers) != 1 {
		t.Fatalf("expected 1 answerCallbackQuery, got %d", len(answers))
	}
	edits := api.callsTo("editMessageText")
	if len(edits) != 1 {
		t.Fatalf("expected 1 editMessageText, got %d", len(edits))
	}
	if got := edits[0].payload["message_id"].(float64); got != 42 {
		t.Fatalf("expected edit of message 42, got %v", got)
	}
}

func TestDeliverDropsNonNumericChat(t *testing.T) {
	t.Parallel()

	gateway, api := newTestGateway(t, &scriptedHandler{})

	err := gateway.deliver(context.Background(), origin{chatID: 7}, bot.Effect{
		Kind: bot.EffectSend, ChatID: "not-a-number", Text: "x",
	})
	if err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
	if len(api.callsTo("sendMessage")) != 0 {
		t.Fatal("expected no API call for invalid chat id")
	}
}
