package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

func testPosition(id string, entryTS int64) *domain.Position {
	return &domain.Position{
		PositionID:  id,
		Wallet:      "0xWALLET",
		MarketID:    "market-1",
		Outcome:     "Yes",
		EntryPrice:  0.10,
		EntryAmount: 1000,
		EntryTime:   entryTS,
		Status:      domain.PositionOpen,
	}
}

func TestPositionStore_InsertAndOpenByKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	// Oldest first regardless of insert order.
	require.NoError(t, store.Insert(ctx, testPosition("pos-b", 1700000200)))
	require.NoError(t, store.Insert(ctx, testPosition("pos-a", 1700000100)))

	open, err := store.OpenByKey(ctx, "0xWALLET", "market-1", "Yes")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "pos-a", open[0].PositionID)
	assert.Equal(t, "pos-b", open[1].PositionID)
	assert.Equal(t, domain.PositionOpen, open[0].Status)
	assert.Nil(t, open[0].ExitPrice)

	open, err = store.OpenByKey(ctx, "0xWALLET", "market-1", "No")
	require.NoError(t, err)
	assert.Empty(t, open, "different outcome")
}

func TestPositionStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("pos-dup", 1700000000)))
	err := store.Insert(ctx, testPosition("pos-dup", 1700000000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPositionStore_Close(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("pos-close", 1700000000)))
	require.NoError(t, store.Close(ctx, "pos-close", 0.80, 1700000000+7200, 7000, 2))

	open, err := store.OpenByKey(ctx, "0xWALLET", "market-1", "Yes")
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := store.ClosedByWalletMarket(ctx, "0xWALLET", "market-1")
	require.NoError(t, err)
	require.Len(t, closed, 1)
	p := closed[0]
	assert.Equal(t, domain.PositionClosed, p.Status)
	require.NotNil(t, p.ExitPrice)
	assert.Equal(t, 0.80, *p.ExitPrice)
	require.NotNil(t, p.ProfitLoss)
	assert.Equal(t, 7000.0, *p.ProfitLoss)
	require.NotNil(t, p.HoldHours)
	assert.Equal(t, 2.0, *p.HoldHours)
}

func TestPositionStore_CloseTwice(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("pos-once", 1700000000)))
	require.NoError(t, store.Close(ctx, "pos-once", 0.80, 1700007200, 7000, 2))

	err := store.Close(ctx, "pos-once", 0.90, 1700010800, 8000, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPositionStore_ClosedByExitRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testPosition("pos-in", 1700000000)))
	require.NoError(t, store.Insert(ctx, testPosition("pos-out", 1700000000)))
	require.NoError(t, store.Close(ctx, "pos-in", 0.50, 1700005000, 0, 1))
	require.NoError(t, store.Close(ctx, "pos-out", 0.50, 1700090000, 0, 25))

	closed, err := store.ClosedByExitRange(ctx, "market-1", 1700000000, 1700010000)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "pos-in", closed[0].PositionID)
}
