package chainrpc

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ybbus/jsonrpc"

	"gostablebridge/bridge"
	"gostablebridge/types"
)

// cap on a single RPC round trip when the caller carries no deadline
const defaultRPCTimeout = 10 * time.Second

// Reader reports confirmation counts by querying each chain's JSON-RPC
// endpoints, failing over across the configured RPC list.
type Reader struct {
	registry *bridge.Registry
}

var _ bridge.ChainReader = (*Reader)(nil)

func NewReader(registry *bridge.Registry) *Reader {
	return &Reader{registry: registry}
}

// rpcClient builds a client whose HTTP round trips cannot outlive the
// caller's deadline.
func rpcClient(ctx context.Context, url string) jsonrpc.RPCClient {
	timeout := defaultRPCTimeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		if remaining < timeout {
			timeout = remaining
		}
	}
	return jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: timeout},
	})
}

func withClient[T any](ctx context.Context, chain types.ChainConfig, f func(client jsonrpc.RPCClient) (T, error)) (res T, err error) {
	for _, url := range chain.RPCList {
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}
		res, err = f(rpcClient(ctx, url))
		if err == nil {
			return
		}
		log.Printf("Error querying %s via %s: %s", chain.Name, url, err.Error())
	}
	return
}

type receipt struct {
	BlockNumber string `json:"blockNumber"`
}

// Confirmations returns how many blocks have been produced on top of the
// block containing txHash, inclusive. An unmined or unknown transaction has
// zero confirmations.
func (r *Reader) Confirmations(ctx context.Context, chainID, txHash string) (int, error) {
	chain, err := r.registry.Get(chainID)
	if err != nil {
		return 0, err
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	return withClient(ctx, chain, func(client jsonrpc.RPCClient) (int, error) {
		resp, err := client.Call("eth_getTransactionReceipt", txHash)
		if err != nil {
			return 0, err
		}
		if resp.Error != nil {
			return 0, fmt.Errorf("eth_getTransactionReceipt: %s", resp.Error.Message)
		}
		if resp.Result == nil {
			return 0, nil
		}

		var rcpt receipt
		if err := resp.GetObject(&rcpt); err != nil {
			return 0, err
		}
		if rcpt.BlockNumber == "" {
			return 0, nil
		}
		txBlock, err := hexutil.DecodeUint64(rcpt.BlockNumber)
		if err != nil {
			return 0, fmt.Errorf("malformed block number %q: %s", rcpt.BlockNumber, err.Error())
		}

		resp, err = client.Call("eth_blockNumber")
		if err != nil {
			return 0, err
		}
		if resp.Error != nil {
			return 0, fmt.Errorf("eth_blockNumber: %s", resp.Error.Message)
		}
		latestHex, err := resp.GetString()
		if err != nil {
			return 0, err
		}
		latest, err := hexutil.DecodeUint64(latestHex)
		if err != nil {
			return 0, fmt.Errorf("malformed block number %q: %s", latestHex, err.Error())
		}

		if latest < txBlock {
			return 0, nil
		}
		return int(latest-txBlock) + 1, nil
	})
}
