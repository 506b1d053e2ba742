package bridge

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gostablebridge/types"
)

// MemStore is an in-memory TransactionStore used by tests and standalone
// runs. The redis package provides the durable production implementation.
type MemStore struct {
	mu  sync.RWMutex
	txs map[string]types.BridgeTransaction
}

var _ TransactionStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{txs: make(map[string]types.BridgeTransaction)}
}

func (s *MemStore) Create(ctx context.Context, tx *types.BridgeTransaction) error {
	if tx == nil || tx.ID == "" {
		return errors.New("transaction must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; ok {
		return errors.New("transaction already exists: " + tx.ID)
	}
	s.txs[tx.ID] = *tx
	return nil
}

func (s *MemStore) Find(ctx context.Context, id string) (*types.BridgeTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *MemStore) List(ctx context.Context, filter TxFilter) ([]*types.BridgeTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.BridgeTransaction
	for _, tx := range s.txs {
		if !matchFilter(tx, filter) {
			continue
		}
		tx := tx
		out = append(out, &tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, tx *types.BridgeTransaction, prev types.TxStatus) error {
	if tx == nil || tx.ID == "" {
		return errors.New("transaction must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; !ok {
		return errors.New("transaction not found: " + tx.ID)
	}
	s.txs[tx.ID] = *tx
	return nil
}

func matchFilter(tx types.BridgeTransaction, filter TxFilter) bool {
	if !filter.Since.IsZero() && tx.CreatedAt.Before(filter.Since) {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, st := range filter.Statuses {
		if tx.Status == st {
			return true
		}
	}
	return false
}
