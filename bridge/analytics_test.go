package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostablebridge/types"
)

func seedAnalyticsStore(t *testing.T) *MemStore {
	t.Helper()
	store := NewMemStore()
	now := time.Now()

	require.NoError(t, store.Create(context.Background(), &types.BridgeTransaction{
		ID:        "tx-done",
		Amount:    decimal.NewFromInt(1000),
		BridgeFee: decimal.NewFromInt(10),
		Status:    types.StatusCompleted,
		CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.Create(context.Background(), &types.BridgeTransaction{
		ID:        "tx-failed",
		Amount:    decimal.NewFromInt(2000),
		BridgeFee: decimal.NewFromInt(20),
		Status:    types.StatusFailed,
		CreatedAt: now.Add(-2 * time.Hour),
	}))
	return store
}

func TestBridgeAnalyticsAggregates(t *testing.T) {
	agg := NewAggregator(seedAnalyticsStore(t))

	got, err := agg.BridgeAnalytics(context.Background(), types.RangeDay)
	require.NoError(t, err)

	assert.Equal(t, types.RangeDay, got.TimeRange)
	assert.Equal(t, 2, got.TotalTransactions)
	assert.Equal(t, 1, got.SuccessfulTransactions)
	assert.Equal(t, 1, got.FailedTransactions)
	assert.Equal(t, 0, got.PendingTransactions)
	assert.InDelta(t, 0.5, got.SuccessRate, 0.0001)
	assert.True(t, got.TotalVolume.Equal(decimal.NewFromInt(3000)), "volume %s", got.TotalVolume)
	assert.True(t, got.TotalFees.Equal(decimal.NewFromInt(30)), "fees %s", got.TotalFees)
}

func TestBridgeAnalyticsCountsPending(t *testing.T) {
	store := seedAnalyticsStore(t)
	require.NoError(t, store.Create(context.Background(), &types.BridgeTransaction{
		ID:        "tx-inflight",
		Amount:    decimal.NewFromInt(500),
		BridgeFee: decimal.NewFromInt(5),
		Status:    types.StatusSourceConfirmed,
		CreatedAt: time.Now().Add(-time.Minute),
	}))

	got, err := NewAggregator(store).BridgeAnalytics(context.Background(), types.RangeWeek)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalTransactions)
	assert.Equal(t, 1, got.PendingTransactions)
	assert.InDelta(t, 1.0/3.0, got.SuccessRate, 0.0001)
}

func TestBridgeAnalyticsExcludesOldTransactions(t *testing.T) {
	store := seedAnalyticsStore(t)
	require.NoError(t, store.Create(context.Background(), &types.BridgeTransaction{
		ID:        "tx-ancient",
		Amount:    decimal.NewFromInt(9999),
		BridgeFee: decimal.NewFromInt(99),
		Status:    types.StatusCompleted,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))

	got, err := NewAggregator(store).BridgeAnalytics(context.Background(), types.RangeDay)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalTransactions)
	assert.True(t, got.TotalVolume.Equal(decimal.NewFromInt(3000)))
}

func TestBridgeAnalyticsEmptyWindow(t *testing.T) {
	got, err := NewAggregator(NewMemStore()).BridgeAnalytics(context.Background(), types.RangeMonth)
	require.NoError(t, err)

	assert.Equal(t, 0, got.TotalTransactions)
	assert.Equal(t, 0.0, got.SuccessRate)
	assert.True(t, got.TotalVolume.IsZero())
	assert.True(t, got.TotalFees.IsZero())
}

func TestBridgeAnalyticsRejectsUnknownRange(t *testing.T) {
	_, err := NewAggregator(NewMemStore()).BridgeAnalytics(context.Background(), types.TimeRange("year"))
	assert.Error(t, err)
}
