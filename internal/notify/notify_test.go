package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleNotification() AlertNotification {
	return AlertNotification{
		Question:    "Will X happen",
		Outcome:     "Yes",
		Price:       0.10,
		SizeUSD:     6000,
		Wallet:      "0x1234567890abcdef1234567890abcdef12345678",
		Signals:     []string{"FRESH_WALLET_BIG_BET", "SIZE_ANOMALY"},
		Confidence:  55,
		Sensitivity: "MEDIUM-HIGH",
	}
}

func TestTelegramSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(nil, "token", "chat-1")
	tg.baseURL = srv.URL

	if err := tg.Send(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got["chat_id"] != "chat-1" {
		t.Errorf("chat_id = %v", got["chat_id"])
	}
	text, _ := got["text"].(string)
	for _, want := range []string{"55/100", "Will X happen", "$6000.00", "10.0¢", "FRESH_WALLET_BIG_BET, SIZE_ANOMALY"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestTelegramDisabledIsNoop(t *testing.T) {
	tg := NewTelegram(nil, "", "")
	if err := tg.Send(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("disabled notifier returned error: %v", err)
	}
}

func TestTelegramErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram(nil, "token", "chat-1")
	tg.baseURL = srv.URL

	if err := tg.Send(context.Background(), sampleNotification()); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestDiscordEmbed(t *testing.T) {
	embed := buildEmbed(sampleNotification())

	if embed.Description != "Will X happen" {
		t.Errorf("description = %s", embed.Description)
	}
	if len(embed.Fields) != 7 {
		t.Fatalf("got %d fields, want 7", len(embed.Fields))
	}
	if embed.Fields[0].Value != "55/100" {
		t.Errorf("confidence field = %s", embed.Fields[0].Value)
	}
	// Addresses shorten for display.
	if wallet := embed.Fields[5].Value; strings.Contains(wallet, "7890abcdef1234") {
		t.Errorf("wallet not shortened: %s", wallet)
	}
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Send(context.Context, AlertNotification) error {
	s.calls++
	return s.err
}

func TestMultiIsolatesFailures(t *testing.T) {
	failing := &stubNotifier{err: errors.New("boom")}
	healthy := &stubNotifier{}

	multi := NewMulti(nil, failing, healthy)
	if err := multi.Send(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("multi returned error: %v", err)
	}
	if failing.calls != 1 || healthy.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.calls, healthy.calls)
	}
}
