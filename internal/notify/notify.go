// Package notify delivers fired alerts to messaging channels. Delivery
// failures are logged and never retried; the alert record is already
// durable by the time a notifier runs.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// AlertNotification is the channel-agnostic payload of a fired alert.
type AlertNotification struct {
	Question    string
	Outcome     string
	Price       float64
	SizeUSD     float64
	Wallet      string
	Signals     []string // fired order
	Confidence  int
	Sensitivity string
}

// Notifier delivers one alert notification.
type Notifier interface {
	Send(ctx context.Context, n AlertNotification) error
}

// Multi fans one notification out to every configured channel. A
// failing channel never blocks the others.
type Multi struct {
	notifiers []Notifier
	log       *zap.Logger
}

// NewMulti creates a fan-out notifier. A nil logger disables logging.
func NewMulti(log *zap.Logger, notifiers ...Notifier) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{notifiers: notifiers, log: log}
}

var _ Notifier = (*Multi)(nil)

// Send delivers to all channels, logging per-channel failures. It never
// returns an error.
func (m *Multi) Send(ctx context.Context, n AlertNotification) error {
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			m.log.Error("alert notification failed",
				zap.String("wallet", n.Wallet),
				zap.Error(err))
		}
	}
	return nil
}

func shortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-6:]
}
