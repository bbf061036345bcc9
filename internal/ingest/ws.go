package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// Websocket reconnect policy.
const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2
	readTimeout    = 70 * time.Second
	writeTimeout   = 10 * time.Second
)

// Listener streams live trades from the exchange websocket into a
// channel, reconnecting with exponential backoff. It is the realtime
// alternative to FeedClient polling; both feed the same normalization
// boundary.
type Listener struct {
	url    string
	out    chan<- *domain.Trade
	log    *zap.Logger
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewListener creates a websocket listener writing normalized trades to
// out. A nil logger disables logging.
func NewListener(url string, out chan<- *domain.Trade, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{
		url: url,
		out: out,
		log: log,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Run connects and reads until the context is cancelled, reconnecting
// on any error. It never returns a connection error; transient failures
// are logged and retried.
func (l *Listener) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		if err := l.connect(ctx); err != nil {
			l.log.Warn("websocket connect failed", zap.Error(err), zap.Duration("backoff", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = initialBackoff

		if err := l.readLoop(ctx); err != nil && ctx.Err() == nil {
			l.log.Warn("websocket read failed", zap.Error(err))
		}
		l.close()
	}
}

func (l *Listener) connect(ctx context.Context) error {
	conn, resp, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	// Subscribe to the trade channel.
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(map[string]any{"type": "subscribe", "channel": "trades"}); err != nil {
		l.close()
		return err
	}

	l.log.Info("websocket connected", zap.String("url", l.url))
	return nil
}

func (l *Listener) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.mu.Lock()
		conn := l.conn
		l.mu.Unlock()
		if conn == nil {
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		trades, err := Parse(message)
		if err != nil {
			l.log.Debug("unparseable websocket message", zap.Error(err))
			continue
		}
		for _, t := range trades {
			select {
			case l.out <- t:
			case <-ctx.Done():
				return ctx.Err()
			default:
				l.log.Warn("trade channel full, dropping trade", zap.String("trade_id", t.TradeID))
			}
		}
	}
}

// Close tears down the current connection. Run exits once its context
// is cancelled.
func (l *Listener) Close() {
	l.close()
}

func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= backoffFactor
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
