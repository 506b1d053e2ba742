package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

// Aggregator computes time-windowed statistics over the transaction history.
// Aggregates are derived on demand from the store, never persisted.
type Aggregator struct {
	store TransactionStore
}

func NewAggregator(store TransactionStore) *Aggregator {
	return &Aggregator{store: store}
}

func windowFor(rng types.TimeRange) (time.Duration, error) {
	switch rng {
	case types.RangeDay:
		return 24 * time.Hour, nil
	case types.RangeWeek:
		return 7 * 24 * time.Hour, nil
	case types.RangeMonth:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown time range %q", rng)
	}
}

// BridgeAnalytics aggregates over transactions created within the window
// ending now. An empty window yields a zero-valued result, not an error.
func (a *Aggregator) BridgeAnalytics(ctx context.Context, rng types.TimeRange) (types.BridgeAnalytics, error) {
	window, err := windowFor(rng)
	if err != nil {
		return types.BridgeAnalytics{}, err
	}

	txs, err := a.store.List(ctx, TxFilter{Since: time.Now().Add(-window)})
	if err != nil {
		return types.BridgeAnalytics{}, fmt.Errorf("listing transactions: %w", err)
	}

	out := types.BridgeAnalytics{
		TimeRange:   rng,
		TotalVolume: decimal.Zero,
		TotalFees:   decimal.Zero,
	}
	for _, tx := range txs {
		out.TotalTransactions++
		out.TotalVolume = out.TotalVolume.Add(tx.Amount)
		out.TotalFees = out.TotalFees.Add(tx.BridgeFee)
		switch tx.Status {
		case types.StatusCompleted:
			out.SuccessfulTransactions++
		case types.StatusFailed:
			out.FailedTransactions++
		default:
			out.PendingTransactions++
		}
	}
	if out.TotalTransactions > 0 {
		out.SuccessRate = float64(out.SuccessfulTransactions) / float64(out.TotalTransactions)
	}
	return out, nil
}
