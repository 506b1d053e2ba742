package bridge

import (
	"context"
	"time"

	"gostablebridge/types"
)

// External collaborators. Implementations live outside the engine (redis,
// chain RPC) or in-process for tests; the engine only depends on these
// contracts.

// TxFilter narrows a transaction listing. Zero value matches everything.
type TxFilter struct {
	Statuses []types.TxStatus
	Since    time.Time
}

// TransactionStore is the durable record of bridge transactions.
type TransactionStore interface {
	Create(ctx context.Context, tx *types.BridgeTransaction) error
	// Find returns (nil, nil) when the id is unknown.
	Find(ctx context.Context, id string) (*types.BridgeTransaction, error)
	List(ctx context.Context, filter TxFilter) ([]*types.BridgeTransaction, error)
	// Update persists tx under its current status; prev is the status the
	// record held before this mutation so status-keyed backends can move it.
	Update(ctx context.Context, tx *types.BridgeTransaction, prev types.TxStatus) error
}

// Cache is a best-effort short-lived store. It may fail or be empty at any
// time and is never authoritative. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Del(key string) error
}

// Notifier delivers terminal-state notices. Failures are logged by callers
// and never escalated.
type Notifier interface {
	SendBridgeCompletion(tx *types.BridgeTransaction) error
	SendBridgeFailure(tx *types.BridgeTransaction, reason string) error
}

// ValidatorDirectory supplies the validator set and their attestation
// capability. Without a live validator network attestations are
// deterministically simulated.
type ValidatorDirectory interface {
	Validators() []types.Validator
	Attest(ctx context.Context, v types.Validator, txID string, payload []byte) (string, error)
}

// ChainReader reports how many confirmations a transaction has on a chain.
type ChainReader interface {
	Confirmations(ctx context.Context, chainID, txHash string) (int, error)
}
