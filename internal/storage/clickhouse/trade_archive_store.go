package clickhouse

import (
	"context"
	"fmt"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// TradeArchiveStore appends normalized trades to the trade_archive
// table. ReplacingMergeTree absorbs re-ingested duplicates, so writes
// are safe to repeat across restarts.
type TradeArchiveStore struct {
	conn *Conn
}

// NewTradeArchiveStore creates a new TradeArchiveStore.
func NewTradeArchiveStore(conn *Conn) *TradeArchiveStore {
	return &TradeArchiveStore{conn: conn}
}

// InsertBulk archives a batch of trades.
func (s *TradeArchiveStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			trade_id, tx_hash, wallet, market_id, question, category,
			outcome, side, price, size_usd, ts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare trade archive batch: %w", err)
	}

	for _, t := range trades {
		err := batch.Append(
			t.TradeID, t.TxHash, t.Wallet, t.MarketID, t.Question, t.Category,
			t.Outcome, t.Side, t.Price, t.SizeUSD, t.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append trade %s to archive batch: %w", t.TradeID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send trade archive batch: %w", err)
	}
	return nil
}
