package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

var testChains = map[string]types.ChainConfig{
	"ethereum": {
		ChainID:               "ethereum",
		Name:                  "Ethereum",
		NativeCurrency:        "ETH",
		IsTestnet:             false,
		AvgBlockTime:          12 * time.Second,
		RequiredConfirmations: 3,
	},
	"polygon": {
		ChainID:               "polygon",
		Name:                  "Polygon",
		NativeCurrency:        "MATIC",
		IsTestnet:             false,
		AvgBlockTime:          2 * time.Second,
		RequiredConfirmations: 5,
	},
	"sepolia": {
		ChainID:               "sepolia",
		Name:                  "Sepolia",
		NativeCurrency:        "ETH",
		IsTestnet:             true,
		AvgBlockTime:          12 * time.Second,
		RequiredConfirmations: 1,
	},
}

func testPool(id string) types.LiquidityPool {
	return types.LiquidityPool{
		ID:                 id,
		SourceChain:        "ethereum",
		DestinationChain:   "polygon",
		Token:              "USDC",
		SourceBalance:      decimal.NewFromInt(100_000),
		DestinationBalance: decimal.NewFromInt(100_000),
		RebalanceThreshold: decimal.NewFromFloat(0.7),
		MinLiquidity:       decimal.NewFromInt(10_000),
		MaxLiquidity:       decimal.NewFromInt(500_000),
		IsActive:           true,
	}
}

type stubCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	failSet bool
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("cache backend down")
	}
	body, ok := c.data[key]
	if !ok {
		return nil, nil
	}
	return body, nil
}

func (c *stubCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache backend down")
	}
	c.data[key] = value
	return nil
}

func (c *stubCache) Del(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type stubDirectory struct {
	set       []types.Validator
	attestErr error
	// block holds attestations until released, for coalescing tests
	block chan struct{}
	calls atomic.Int32
}

func activeValidators(n int) []types.Validator {
	set := make([]types.Validator, 0, n)
	for i := 0; i < n; i++ {
		set = append(set, types.Validator{
			ID:         fmt.Sprintf("validator-%d", i+1),
			Address:    fmt.Sprintf("0x%040d", i+1),
			IsActive:   true,
			Reputation: 0.9,
		})
	}
	return set
}

func (d *stubDirectory) Validators() []types.Validator {
	out := make([]types.Validator, len(d.set))
	copy(out, d.set)
	return out
}

func (d *stubDirectory) Attest(ctx context.Context, v types.Validator, txID string, payload []byte) (string, error) {
	d.calls.Add(1)
	if d.block != nil {
		<-d.block
	}
	if d.attestErr != nil {
		return "", d.attestErr
	}
	return "sig:" + v.ID + ":" + txID, nil
}

type stubNotifier struct {
	mu          sync.Mutex
	completions []string
	failures    []string
}

func (n *stubNotifier) SendBridgeCompletion(tx *types.BridgeTransaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completions = append(n.completions, tx.ID)
	return nil
}

func (n *stubNotifier) SendBridgeFailure(tx *types.BridgeTransaction, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, tx.ID)
	return nil
}

func (n *stubNotifier) completed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.completions...)
}

func (n *stubNotifier) failed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failures...)
}

type stubReader struct {
	mu   sync.Mutex
	conf map[string]int
	err  error
}

func newStubReader() *stubReader {
	return &stubReader{conf: make(map[string]int)}
}

func (r *stubReader) setConfirmations(chainID, txHash string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conf[chainID+"|"+txHash] = n
}

func (r *stubReader) Confirmations(ctx context.Context, chainID, txHash string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return r.conf[chainID+"|"+txHash], nil
}

// failingStore wraps a MemStore and fails selected operations.
type failingStore struct {
	*MemStore
	failList   bool
	failCreate bool
	listCalls  atomic.Int32
}

func (s *failingStore) List(ctx context.Context, filter TxFilter) ([]*types.BridgeTransaction, error) {
	s.listCalls.Add(1)
	if s.failList {
		return nil, errors.New("store unavailable")
	}
	return s.MemStore.List(ctx, filter)
}

func (s *failingStore) Create(ctx context.Context, tx *types.BridgeTransaction) error {
	if s.failCreate {
		return errors.New("store unavailable")
	}
	return s.MemStore.Create(ctx, tx)
}
