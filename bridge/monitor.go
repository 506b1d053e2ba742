package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

// MonitorConfig tunes the periodic sweep.
type MonitorConfig struct {
	SweepInterval time.Duration
	// ExternalTimeout bounds every cache/store/chain call a sweep makes.
	ExternalTimeout time.Duration
	// MaxConsensusAttempts before a transaction is failed.
	MaxConsensusAttempts int
}

// Monitor drives the per-transaction state machine
// INITIATED → BRIDGE_PENDING → SOURCE_CONFIRMED → DESTINATION_PENDING →
// COMPLETED, with FAILED reachable from any non-terminal state. Every
// transition refreshes UpdatedAt, is persisted, published to the hub, and on
// terminal states settles or releases the liquidity reservation and sends a
// notification.
type Monitor struct {
	store     TransactionStore
	pools     *PoolManager
	consensus *Coordinator
	hub       *Hub
	notifier  Notifier
	chains    ChainReader
	registry  *Registry
	cfg       MonitorConfig

	mu      sync.Mutex
	running bool
	stopch  chan struct{}
	wg      sync.WaitGroup
}

func NewMonitor(store TransactionStore, pools *PoolManager, consensus *Coordinator, hub *Hub, notifier Notifier, chains ChainReader, registry *Registry, cfg MonitorConfig) *Monitor {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Second
	}
	if cfg.ExternalTimeout <= 0 {
		cfg.ExternalTimeout = 15 * time.Second
	}
	if cfg.MaxConsensusAttempts <= 0 {
		cfg.MaxConsensusAttempts = 3
	}
	return &Monitor{
		store:     store,
		pools:     pools,
		consensus: consensus,
		hub:       hub,
		notifier:  notifier,
		chains:    chains,
		registry:  registry,
		cfg:       cfg,
	}
}

// Start launches the periodic sweep. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopch = make(chan struct{})
	m.wg.Add(1)
	go m.loop(m.stopch)
}

// Stop signals the sweep loop and waits for any in-flight sweep to finish.
// No further sweep executes after Stop returns. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	close(m.stopch)
	m.wg.Wait()
	m.running = false
}

func (m *Monitor) loop(stopch chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopch:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ExternalTimeout)
			m.SynchronizeChainState(ctx)
			cancel()
		}
	}
}

// SynchronizeChainState reconciles every in-flight transaction against its
// on-chain observations and consensus outcome. Store read failures are
// logged and retried next sweep; an empty set is a no-op.
func (m *Monitor) SynchronizeChainState(ctx context.Context) error {
	inflight, err := m.store.List(ctx, TxFilter{Statuses: []types.TxStatus{
		types.StatusInitiated,
		types.StatusBridgePending,
		types.StatusSourceConfirmed,
		types.StatusDestinationPending,
	}})
	if err != nil {
		log.Printf("Error listing in-flight transactions, retrying next sweep: %v", err)
		return nil
	}

	for _, tx := range inflight {
		m.advance(ctx, tx)
	}
	return nil
}

func (m *Monitor) advance(ctx context.Context, tx *types.BridgeTransaction) {
	switch tx.Status {
	case types.StatusInitiated:
		m.transition(ctx, tx, types.StatusBridgePending, "bridge transfer dispatched")

	case types.StatusBridgePending:
		if tx.SourceTxHash == "" {
			return // deposit not observed yet
		}
		if m.confirmed(ctx, tx.SourceChain, tx.SourceTxHash) {
			m.transition(ctx, tx, types.StatusSourceConfirmed, "source chain confirmed")
		}

	case types.StatusSourceConfirmed:
		m.runConsensus(ctx, tx)

	case types.StatusDestinationPending:
		if tx.DestTxHash == "" {
			return // destination release not executed yet
		}
		if m.confirmed(ctx, tx.DestinationChain, tx.DestTxHash) {
			m.transition(ctx, tx, types.StatusCompleted, "destination chain confirmed")
		}
	}
}

func (m *Monitor) confirmed(ctx context.Context, chainID, txHash string) bool {
	chain, err := m.registry.Get(chainID)
	if err != nil {
		log.Printf("Error resolving chain %s: %v", chainID, err)
		return false
	}
	conf, err := m.chains.Confirmations(ctx, chainID, txHash)
	if err != nil {
		log.Printf("Error reading confirmations for %s on %s: %v", txHash, chainID, err)
		return false
	}
	return conf >= chain.RequiredConfirmations
}

func (m *Monitor) runConsensus(ctx context.Context, tx *types.BridgeTransaction) {
	payload := []byte(fmt.Sprintf("%s|%s|%s|%s", tx.SourceChain, tx.DestinationChain, tx.Amount.String(), tx.SourceTxHash))

	result, err := m.consensus.RequestConsensus(ctx, tx.ID, payload)
	if err == nil && result.ConsensusReached {
		tx.Consensus = &result
		m.transition(ctx, tx, types.StatusDestinationPending, "validator consensus reached")
		return
	}

	if err != nil && !errors.Is(err, ErrConsensus) {
		log.Printf("Error requesting consensus for %s: %v", tx.ID, err)
		return
	}

	// retryable: either the cache write failed or quorum was not met
	tx.ConsensusAttempts++
	if tx.ConsensusAttempts >= m.cfg.MaxConsensusAttempts {
		m.fail(ctx, tx, "validator consensus not reached after retries")
		return
	}

	tx.UpdatedAt = time.Now()
	if uerr := m.store.Update(ctx, tx, tx.Status); uerr != nil {
		log.Printf("Error persisting consensus attempt count for %s: %v", tx.ID, uerr)
	}
	log.Printf("Consensus attempt %d/%d for %s not conclusive, retrying next sweep", tx.ConsensusAttempts, m.cfg.MaxConsensusAttempts, tx.ID)
}

func (m *Monitor) fail(ctx context.Context, tx *types.BridgeTransaction, reason string) {
	tx.FailureReason = reason
	m.transition(ctx, tx, types.StatusFailed, reason)
}

func (m *Monitor) transition(ctx context.Context, tx *types.BridgeTransaction, next types.TxStatus, message string) {
	prev := tx.Status
	now := time.Now()

	tx.Status = next
	tx.UpdatedAt = now
	if next == types.StatusCompleted {
		tx.CompletedAt = &now
	}

	if err := m.store.Update(ctx, tx, prev); err != nil {
		// back out, the sweep reloads and retries next cycle
		tx.Status = prev
		tx.CompletedAt = nil
		log.Printf("Error persisting transition %s → %s for %s: %v", prev, next, tx.ID, err)
		return
	}

	m.hub.Publish(types.TransactionUpdate{
		TransactionID: tx.ID,
		Status:        next,
		Message:       message,
		Timestamp:     now,
	})

	if next.Terminal() {
		m.finalize(tx)
	}
}

func (m *Monitor) finalize(tx *types.BridgeTransaction) {
	if tx.PoolID != "" {
		var err error
		if tx.Status == types.StatusCompleted {
			err = m.pools.Settle(tx.PoolID, tx.Amount)
		} else {
			err = m.pools.Release(tx.PoolID, tx.Amount)
		}
		if err != nil {
			if errors.Is(err, ErrLiquidityInvariant) {
				log.Printf("LIQUIDITY INVARIANT VIOLATION finalizing %s: %v", tx.ID, err)
			} else {
				log.Printf("Error adjusting pool %s for %s: %v", tx.PoolID, tx.ID, err)
			}
		}
	}

	var err error
	if tx.Status == types.StatusCompleted {
		err = m.notifier.SendBridgeCompletion(tx)
	} else {
		err = m.notifier.SendBridgeFailure(tx, tx.FailureReason)
	}
	if err != nil {
		log.Printf("Error sending notification for %s: %v", tx.ID, err)
	}
}

// Metrics computes current monitoring aggregates from the transaction set and
// active pools.
func (m *Monitor) Metrics(ctx context.Context) types.MonitoringMetrics {
	metrics := types.MonitoringMetrics{
		TotalVolume:          decimal.Zero,
		LiquidityUtilization: decimal.Zero,
		LastUpdated:          time.Now(),
	}

	txs, err := m.store.List(ctx, TxFilter{})
	if err != nil {
		log.Printf("Error listing transactions for metrics: %v", err)
		return metrics
	}

	var processing time.Duration
	for _, tx := range txs {
		metrics.TotalTransactions++
		metrics.TotalVolume = metrics.TotalVolume.Add(tx.Amount)
		switch tx.Status {
		case types.StatusCompleted:
			metrics.SuccessfulTransactions++
			if tx.CompletedAt != nil {
				processing += tx.CompletedAt.Sub(tx.CreatedAt)
			}
		case types.StatusFailed:
			metrics.FailedTransactions++
		}
	}
	if metrics.SuccessfulTransactions > 0 {
		metrics.AverageProcessingTime = processing / time.Duration(metrics.SuccessfulTransactions)
	}

	active := 0
	sum := decimal.Zero
	for _, p := range m.pools.ListPools() {
		if !p.IsActive {
			continue
		}
		active++
		sum = sum.Add(p.UtilizationRate)
	}
	if active > 0 {
		metrics.LiquidityUtilization = sum.Div(decimal.NewFromInt(int64(active)))
	}

	return metrics
}
