package bridge

import (
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

// EstimatorConfig tunes fee, latency and yield math.
type EstimatorConfig struct {
	BaseFee           decimal.Decimal
	FeeBasisPoints    int64
	ProcessingLatency time.Duration
	// StrategyRateBps is the annualized yield rate of the externally
	// configured strategy, in basis points.
	StrategyRateBps int64
}

// Estimator quotes fee, time and yield for a transfer. Pure: no side effects,
// same inputs produce the same quote.
type Estimator struct {
	registry *Registry
	cfg      EstimatorConfig
}

func NewEstimator(registry *Registry, cfg EstimatorConfig) *Estimator {
	return &Estimator{registry: registry, cfg: cfg}
}

// EstimateBridgeTime is confirmation wait on the source chain, fixed bridge
// processing latency and confirmation wait on the destination chain.
func (e *Estimator) EstimateBridgeTime(sourceChain, destinationChain string) (time.Duration, error) {
	src, err := e.registry.Get(sourceChain)
	if err != nil {
		return 0, err
	}
	dst, err := e.registry.Get(destinationChain)
	if err != nil {
		return 0, err
	}

	wait := src.AvgBlockTime*time.Duration(src.RequiredConfirmations) +
		e.cfg.ProcessingLatency +
		dst.AvgBlockTime*time.Duration(dst.RequiredConfirmations)
	return wait, nil
}

const secondsPerYear = 365 * 24 * 3600

func (e *Estimator) GetBridgeEstimate(sourceChain, destinationChain string, amount decimal.Decimal) (types.BridgeEstimate, error) {
	eta, err := e.EstimateBridgeTime(sourceChain, destinationChain)
	if err != nil {
		return types.BridgeEstimate{}, err
	}

	// fee grows monotonically with amount: base + proportional component
	fee := e.cfg.BaseFee.Add(
		amount.Mul(decimal.NewFromInt(e.cfg.FeeBasisPoints)).Div(decimal.NewFromInt(10000)),
	)

	// yield accrued during the bridge window: amount × rate × (t / year)
	yield := amount.
		Mul(decimal.NewFromInt(e.cfg.StrategyRateBps)).
		Div(decimal.NewFromInt(10000)).
		Mul(decimal.NewFromFloat(eta.Seconds())).
		Div(decimal.NewFromInt(secondsPerYear))

	return types.BridgeEstimate{
		Fee:            fee,
		EstimatedTime:  eta,
		EstimatedYield: yield,
	}, nil
}
