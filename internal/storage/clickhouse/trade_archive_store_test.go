package clickhouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

func TestTradeArchiveStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeArchiveStore(conn)
	ctx := context.Background()

	var trades []*domain.Trade
	for i := 0; i < 5; i++ {
		trades = append(trades, &domain.Trade{
			TradeID:   fmt.Sprintf("trade-%d", i),
			TxHash:    fmt.Sprintf("0xhash%d", i),
			Wallet:    "0xWALLET",
			MarketID:  "market-1",
			Question:  "Will X happen",
			Category:  "POLITICS",
			Outcome:   "Yes",
			Side:      domain.SideBuy,
			Price:     0.10,
			SizeUSD:   1000,
			Timestamp: int64(1700000000 + i),
		})
	}

	require.NoError(t, store.InsertBulk(ctx, trades))

	var count uint64
	err := conn.QueryRow(ctx, `SELECT count() FROM trade_archive WHERE market_id = 'market-1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	var wallet, outcome string
	var price float64
	err = conn.QueryRow(ctx, `
		SELECT wallet, outcome, price FROM trade_archive
		WHERE trade_id = 'trade-0'
	`).Scan(&wallet, &outcome, &price)
	require.NoError(t, err)
	assert.Equal(t, "0xWALLET", wallet)
	assert.Equal(t, "Yes", outcome)
	assert.Equal(t, 0.10, price)
}

func TestTradeArchiveStore_InsertBulkEmpty(t *testing.T) {
	store := NewTradeArchiveStore(nil)
	assert.NoError(t, store.InsertBulk(context.Background(), nil))
}
