package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const telegramAPIURL = "https://api.telegram.org/bot%s/%s"

// Telegram sends alerts through the Telegram bot API.
type Telegram struct {
	log     *zap.Logger
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram creates a Telegram notifier. An empty token disables it.
func NewTelegram(log *zap.Logger, token, chatID string) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	if token == "" {
		log.Warn("telegram token not set, telegram alerts disabled")
	}
	return &Telegram{
		log:    log,
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the alert message. A disabled notifier is a no-op.
func (t *Telegram) Send(ctx context.Context, n AlertNotification) error {
	if t.token == "" || t.chatID == "" {
		return nil
	}

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       buildMessage(n),
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := t.baseURL
	if url == "" {
		url = fmt.Sprintf(telegramAPIURL, t.token, "sendMessage")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api returned status %d", resp.StatusCode)
	}

	t.log.Info("sent telegram alert",
		zap.String("wallet", shortAddress(n.Wallet)),
		zap.String("market", n.Question))
	return nil
}

// buildMessage renders the alert in Telegram Markdown.
func buildMessage(n AlertNotification) string {
	var sb strings.Builder

	sb.WriteString("🚨 *POSSIBLE INFORMED TRADING*\n\n")
	sb.WriteString(fmt.Sprintf("Confidence: *%d/100*\n", n.Confidence))
	sb.WriteString(fmt.Sprintf("Sensitivity: %s\n\n", n.Sensitivity))
	sb.WriteString(fmt.Sprintf("Market: %s\n", escapeMarkdown(n.Question)))
	sb.WriteString(fmt.Sprintf("Outcome: %s\n", escapeMarkdown(n.Outcome)))
	sb.WriteString(fmt.Sprintf("Price: %.1f¢\n", n.Price*100))
	sb.WriteString(fmt.Sprintf("Trade Size: $%.2f\n\n", n.SizeUSD))
	sb.WriteString(fmt.Sprintf("Wallet: `%s`\n", n.Wallet))
	sb.WriteString(fmt.Sprintf("Signals: %s", strings.Join(n.Signals, ", ")))

	return sb.String()
}

// escapeMarkdown escapes special characters for Telegram Markdown.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
