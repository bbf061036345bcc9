package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

func testAlert(id string, firedTS int64) *domain.Alert {
	signals := []string{"SIZE_ANOMALY", "FRESH_WALLET_BIG_BET"}
	return &domain.Alert{
		AlertID:     id,
		Wallet:      "0xWALLET",
		MarketID:    "market-1",
		Question:    "Will X happen",
		Outcome:     "Yes",
		FiredPrice:  0.12,
		FiredTime:   firedTS,
		SizeUSD:     6000,
		Signals:     signals,
		SignalKey:   domain.SignalKey(signals),
		Confidence:  55,
		Sensitivity: "MEDIUM-HIGH",
		Status:      domain.AlertPending,
	}
}

func TestAlertStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	alert := testAlert("alert-001", 1700000000)
	require.NoError(t, store.Insert(ctx, alert))

	retrieved, err := store.GetByID(ctx, "alert-001")
	require.NoError(t, err)

	assert.Equal(t, alert.AlertID, retrieved.AlertID)
	assert.Equal(t, alert.Wallet, retrieved.Wallet)
	assert.Equal(t, alert.MarketID, retrieved.MarketID)
	assert.Equal(t, alert.Signals, retrieved.Signals)
	assert.Equal(t, alert.SignalKey, retrieved.SignalKey)
	assert.Equal(t, alert.Confidence, retrieved.Confidence)
	assert.Equal(t, alert.Sensitivity, retrieved.Sensitivity)
	assert.Equal(t, domain.AlertPending, retrieved.Status)
	assert.Nil(t, retrieved.PeakPrice)
	assert.Nil(t, retrieved.ProfitLoss)
}

func TestAlertStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	alert := testAlert("alert-dup", 1700000000)
	require.NoError(t, store.Insert(ctx, alert))

	err := store.Insert(ctx, alert)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAlertStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAlertStore_PendingOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	// Insert out of fired order.
	require.NoError(t, store.Insert(ctx, testAlert("alert-b", 1700000200)))
	require.NoError(t, store.Insert(ctx, testAlert("alert-a", 1700000100)))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "alert-a", pending[0].AlertID)
	assert.Equal(t, "alert-b", pending[1].AlertID)
}

func TestAlertStore_UpdatePeakAndResolve(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testAlert("alert-res", 1700000000)))
	require.NoError(t, store.UpdatePeak(ctx, "alert-res", 0.45, 1700003600))

	res := domain.AlertResolution{
		Outcome:         "Yes",
		ResolvedTime:    1700000000 + 48*3600,
		HoursToOutcome:  48,
		PriceChange:     0.88,
		PeakPriceChange: 0.33,
		ProfitLoss:      88,
		IsCorrect:       true,
	}
	require.NoError(t, store.Resolve(ctx, "alert-res", res))

	retrieved, err := store.GetByID(ctx, "alert-res")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResolved, retrieved.Status)
	require.NotNil(t, retrieved.PeakPrice)
	assert.Equal(t, 0.45, *retrieved.PeakPrice)
	require.NotNil(t, retrieved.ResolvedOutcome)
	assert.Equal(t, "Yes", *retrieved.ResolvedOutcome)
	require.NotNil(t, retrieved.ProfitLoss)
	assert.Equal(t, 88.0, *retrieved.ProfitLoss)
	require.NotNil(t, retrieved.IsCorrect)
	assert.True(t, *retrieved.IsCorrect)

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	resolved, err := store.Resolved(ctx)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestAlertStore_ResolveTwice(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testAlert("alert-once", 1700000000)))

	res := domain.AlertResolution{Outcome: "Yes", ResolvedTime: 1700100000, ProfitLoss: 50, IsCorrect: true}
	require.NoError(t, store.Resolve(ctx, "alert-once", res))

	err := store.Resolve(ctx, "alert-once", domain.AlertResolution{Outcome: "No", ProfitLoss: -50})
	assert.ErrorIs(t, err, storage.ErrAlreadyResolved)

	// The first resolution must survive the rejected second write.
	retrieved, err := store.GetByID(ctx, "alert-once")
	require.NoError(t, err)
	require.NotNil(t, retrieved.ProfitLoss)
	assert.Equal(t, 50.0, *retrieved.ProfitLoss)
}

func TestAlertStore_ResolveMissing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)

	err := store.Resolve(context.Background(), "missing", domain.AlertResolution{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAlertStore_UpdatePeakOnResolved(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testAlert("alert-frozen", 1700000000)))
	require.NoError(t, store.Resolve(ctx, "alert-frozen", domain.AlertResolution{Outcome: "Yes"}))

	err := store.UpdatePeak(ctx, "alert-frozen", 0.99, 1700100000)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAlertStore_RecentlyFired(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAlertStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testAlert("alert-recent", 1700000000)))

	fired, err := store.RecentlyFired(ctx, "0xWALLET", "market-1", 1700000000-3600)
	require.NoError(t, err)
	assert.True(t, fired)

	fired, err = store.RecentlyFired(ctx, "0xWALLET", "market-1", 1700000001)
	require.NoError(t, err)
	assert.False(t, fired, "cutoff after fire time")

	fired, err = store.RecentlyFired(ctx, "0xWALLET", "market-2", 0)
	require.NoError(t, err)
	assert.False(t, fired, "different market")
}
