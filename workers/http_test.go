package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostablebridge/bridge"
	"gostablebridge/types"
	"gostablebridge/validators"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.data[key]
	if !ok {
		return nil, nil
	}
	return body, nil
}

func (c *memCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Del(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type zeroReader struct{}

func (zeroReader) Confirmations(ctx context.Context, chainID, txHash string) (int, error) {
	return 0, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *bridge.Service) {
	t.Helper()

	svc := bridge.NewService(bridge.Options{
		Chains: map[string]types.ChainConfig{
			"ethereum": {ChainID: "ethereum", Name: "Ethereum", NativeCurrency: "ETH",
				AvgBlockTime: 12 * time.Second, RequiredConfirmations: 3},
			"polygon": {ChainID: "polygon", Name: "Polygon", NativeCurrency: "MATIC",
				AvgBlockTime: 2 * time.Second, RequiredConfirmations: 5},
		},
		Pools: []types.LiquidityPool{{
			ID:                 "pool-eth-poly",
			SourceChain:        "ethereum",
			DestinationChain:   "polygon",
			Token:              "USDC",
			SourceBalance:      decimal.NewFromInt(100_000),
			DestinationBalance: decimal.NewFromInt(100_000),
			RebalanceThreshold: decimal.NewFromFloat(0.7),
			MinLiquidity:       decimal.NewFromInt(10_000),
			MaxLiquidity:       decimal.NewFromInt(500_000),
			IsActive:           true,
		}},
		Store:    bridge.NewMemStore(),
		Cache:    &memCache{data: make(map[string][]byte)},
		Notifier: bridge.LogNotifier{},
		Directory: validators.NewDirectory([]types.Validator{
			{ID: "validator-1", Address: "0x71c7656ec7ab88b098defb751b7401b5f6d8976f", IsActive: true, Reputation: 0.95},
			{ID: "validator-2", Address: "0x2546BcD3c84621e976D8185a91A922aE77ECEc30", IsActive: true, Reputation: 0.9},
		}),
		Reader: zeroReader{},
		Estimator: bridge.EstimatorConfig{
			BaseFee:           decimal.NewFromInt(5),
			FeeBasisPoints:    30,
			ProcessingLatency: 30 * time.Second,
			StrategyRateBps:   400,
		},
	})

	srv := httptest.NewServer(Router(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

func getJSON(t *testing.T, srv *httptest.Server, path string, wantCode int, out interface{}) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body interface{}, wantCode int, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var state struct {
		Status string `json:"status"`
	}
	getJSON(t, srv, "/state", http.StatusOK, &state)
	assert.Equal(t, "ok", state.Status)
}

func TestChainsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var chains []types.ChainConfig
	getJSON(t, srv, "/chains", http.StatusOK, &chains)
	require.Len(t, chains, 2)
	assert.Equal(t, "ethereum", chains[0].ChainID)
}

func TestEstimateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var estimate types.BridgeEstimate
	getJSON(t, srv, "/estimate?sourceChain=ethereum&destinationChain=polygon&amount=10000", http.StatusOK, &estimate)
	assert.True(t, estimate.Fee.Equal(decimal.NewFromInt(35)), "fee %s", estimate.Fee)
	assert.True(t, estimate.EstimatedTime > 0)

	getJSON(t, srv, "/estimate?sourceChain=ethereum&destinationChain=polygon&amount=-5", http.StatusBadRequest, nil)
	getJSON(t, srv, "/estimate?sourceChain=dogechain&destinationChain=polygon&amount=100", http.StatusBadRequest, nil)
}

func TestBridgeSubmitAndLookup(t *testing.T) {
	srv, _ := newTestServer(t)

	var tx types.BridgeTransaction
	postJSON(t, srv, "/bridge", map[string]interface{}{
		"sourceChain":      "ethereum",
		"destinationChain": "polygon",
		"amount":           "2500",
		"destAddress":      "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}, http.StatusCreated, &tx)
	assert.Equal(t, types.StatusInitiated, tx.Status)
	require.NotEmpty(t, tx.ID)

	var fetched types.BridgeTransaction
	getJSON(t, srv, "/bridge/"+tx.ID, http.StatusOK, &fetched)
	assert.Equal(t, tx.ID, fetched.ID)

	getJSON(t, srv, "/bridge/unknown-id", http.StatusNotFound, nil)
}

func TestBridgeSubmitRejectsBadAddress(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv, "/bridge", map[string]interface{}{
		"sourceChain":      "ethereum",
		"destinationChain": "polygon",
		"amount":           "2500",
		"destAddress":      "not-an-address",
	}, http.StatusBadRequest, nil)
}

func TestBridgeSubmitLiquidityShortfall(t *testing.T) {
	srv, _ := newTestServer(t)

	var avail types.Availability
	postJSON(t, srv, "/bridge", map[string]interface{}{
		"sourceChain":      "ethereum",
		"destinationChain": "polygon",
		"amount":           "250000",
		"destAddress":      "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}, http.StatusConflict, &avail)
	assert.False(t, avail.Available)
	assert.True(t, avail.SuggestedAmount.IsPositive())
}

func TestConsensusEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var result types.ConsensusResult
	postJSON(t, srv, "/consensus/tx-77", "ethereum|polygon|1000", http.StatusOK, &result)
	assert.True(t, result.ConsensusReached)
	assert.Equal(t, 2, result.ActualValidators)

	var cached types.ConsensusResult
	getJSON(t, srv, "/consensus/tx-77", http.StatusOK, &cached)
	assert.Equal(t, "tx-77", cached.TransactionID)

	getJSON(t, srv, "/consensus/tx-never-requested", http.StatusNotFound, nil)
}

func TestValidatorsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var set []types.Validator
	getJSON(t, srv, "/validators", http.StatusOK, &set)
	assert.Len(t, set, 2)
}

func TestSubscriptionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv, "/subscriptions", map[string]string{
		"transactionId": "tx-1",
		"subscriberId":  "sub-a",
	}, http.StatusOK, nil)

	var stats types.SubscriptionStats
	getJSON(t, srv, "/stats/subscriptions", http.StatusOK, &stats)
	assert.Equal(t, 1, stats.TotalSubscribers)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/subscriptions",
		bytes.NewReader([]byte(`{"transactionId":"tx-1","subscriberId":"sub-a"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, srv, "/stats/subscriptions", http.StatusOK, &stats)
	assert.Equal(t, 0, stats.TotalSubscribers)

	postJSON(t, srv, "/subscriptions", map[string]string{"transactionId": "tx-1"}, http.StatusBadRequest, nil)
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var analytics types.BridgeAnalytics
	getJSON(t, srv, "/analytics/day", http.StatusOK, &analytics)
	assert.Equal(t, types.RangeDay, analytics.TimeRange)

	getJSON(t, srv, "/analytics/year", http.StatusBadRequest, nil)
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) types.TransactionUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var update types.TransactionUpdate
	require.NoError(t, conn.ReadJSON(&update))
	return update
}

func TestWebSocketDuplicateSubscriberIDs(t *testing.T) {
	srv, svc := newTestServer(t)

	first := dialWS(t, srv, "transactionId=tx-9&subscriberId=shared")
	second := dialWS(t, srv, "transactionId=tx-9&subscriberId=shared")

	svc.Hub.Publish(types.TransactionUpdate{TransactionID: "tx-9", Status: types.StatusBridgePending})
	assert.Equal(t, types.StatusBridgePending, readUpdate(t, first).Status)
	assert.Equal(t, types.StatusBridgePending, readUpdate(t, second).Status)

	// one connection leaving must not tear the other down
	first.Close()
	require.Eventually(t, func() bool {
		return svc.Hub.Stats().TotalSubscribers == 1
	}, 2*time.Second, 10*time.Millisecond)

	svc.Hub.Publish(types.TransactionUpdate{TransactionID: "tx-9", Status: types.StatusSourceConfirmed})
	assert.Equal(t, types.StatusSourceConfirmed, readUpdate(t, second).Status)
}

func TestOptimizeLiquidityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var out map[string]int
	postJSON(t, srv, "/liquidity/optimize", nil, http.StatusOK, &out)
	assert.Equal(t, 0, out["rebalancedPools"]) // balanced pool needs no move
}
