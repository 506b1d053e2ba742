package bridge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

// Options wires external ports and tunables into a Service.
type Options struct {
	Chains    map[string]types.ChainConfig
	Pools     []types.LiquidityPool
	Store     TransactionStore
	Cache     Cache
	Notifier  Notifier
	Directory ValidatorDirectory
	Reader    ChainReader

	Estimator         EstimatorConfig
	Consensus         ConsensusConfig
	Monitor           MonitorConfig
	RebalanceInterval time.Duration
}

// Service owns the engine components and their in-memory state. Lifecycle is
// explicit: construct, Start, Stop.
type Service struct {
	Registry  *Registry
	Estimator *Estimator
	Pools     *PoolManager
	Consensus *Coordinator
	Hub       *Hub
	Monitor   *Monitor
	Analytics *Aggregator

	store TransactionStore
}

func NewService(opts Options) *Service {
	registry := NewRegistry(opts.Chains)
	pools := NewPoolManager(opts.Pools, opts.RebalanceInterval)
	consensus := NewCoordinator(opts.Directory, opts.Cache, opts.Consensus)
	hub := NewHub()

	return &Service{
		Registry:  registry,
		Estimator: NewEstimator(registry, opts.Estimator),
		Pools:     pools,
		Consensus: consensus,
		Hub:       hub,
		Monitor:   NewMonitor(opts.Store, pools, consensus, hub, opts.Notifier, opts.Reader, registry, opts.Monitor),
		Analytics: NewAggregator(opts.Store),
		store:     opts.Store,
	}
}

func (s *Service) Start() {
	s.Monitor.Start()
}

func (s *Service) Stop() {
	s.Monitor.Stop()
}

// BridgeRequest initiates a cross-chain transfer. SourceTxHash carries the
// deposit observed on the source chain when the caller already has it.
type BridgeRequest struct {
	SourceChain      string          `json:"sourceChain"`
	DestinationChain string          `json:"destinationChain"`
	Amount           decimal.Decimal `json:"amount"`
	DestAddress      string          `json:"destAddress"`
	SourceTxHash     string          `json:"sourceTxHash,omitempty"`
	PaymentID        string          `json:"paymentId,omitempty"`
}

// InitiateBridge runs the pre-flight checks and creates the transaction
// record. When liquidity is unavailable it returns the structured
// availability answer instead of a transaction; that is a business outcome,
// not an error.
func (s *Service) InitiateBridge(ctx context.Context, req BridgeRequest) (*types.BridgeTransaction, *types.Availability, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("bridge amount must be positive, got %s", req.Amount)
	}

	estimate, err := s.Estimator.GetBridgeEstimate(req.SourceChain, req.DestinationChain, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	avail := s.Pools.CheckAvailability(req.SourceChain, req.DestinationChain, req.Amount)
	if !avail.Available {
		return nil, &avail, nil
	}

	pool, err := s.Pools.PoolForRoute(req.SourceChain, req.DestinationChain)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Pools.Reserve(pool.ID, req.Amount); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	tx := &types.BridgeTransaction{
		ID:               uuid.New().String(),
		SourceChain:      req.SourceChain,
		DestinationChain: req.DestinationChain,
		Amount:           req.Amount,
		BridgeFee:        estimate.Fee,
		Status:           types.StatusInitiated,
		EstimatedTime:    estimate.EstimatedTime,
		CreatedAt:        now,
		UpdatedAt:        now,
		PaymentID:        req.PaymentID,
		DestAddress:      req.DestAddress,
		SourceTxHash:     req.SourceTxHash,
		PoolID:           pool.ID,
	}

	if err := s.store.Create(ctx, tx); err != nil {
		if rerr := s.Pools.Release(pool.ID, req.Amount); rerr != nil {
			log.Printf("Error releasing reservation after failed create for %s: %v", tx.ID, rerr)
		}
		return nil, nil, fmt.Errorf("creating bridge transaction: %w", err)
	}

	return tx, nil, nil
}

// GetTransaction looks a transaction up in the store. (nil, nil) when absent.
func (s *Service) GetTransaction(ctx context.Context, id string) (*types.BridgeTransaction, error) {
	return s.store.Find(ctx, id)
}
