package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/bridge"
	"gostablebridge/chainrpc"
	"gostablebridge/config"
	"gostablebridge/redis"
	"gostablebridge/types"
	"gostablebridge/validators"
	"gostablebridge/workers"
)

func main() {
	log.Print("Starting stablecoin bridge orchestrator")

	f, err := os.OpenFile(fmt.Sprintf("logs/log_%s.txt", time.Now().Format("2006-01-02")), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file for writing: %v", err)
	}
	defer f.Close()

	log.SetOutput(f)

	config.Init()

	// connect to Redis, without the result cache and tx store do not continue
	redis.Init()

	registry := bridge.NewRegistry(config.Chains)

	svc := bridge.NewService(bridge.Options{
		Chains:    config.Chains,
		Pools:     seedPools(),
		Store:     redis.Store{},
		Cache:     redis.Backend{},
		Notifier:  bridge.LogNotifier{},
		Directory: validators.NewDirectory(config.ValidatorSeeds),
		Reader:    chainrpc.NewReader(registry),
		Estimator: bridge.EstimatorConfig{
			BaseFee:           decimal.NewFromFloat(config.Config.Bridge.BaseFee),
			FeeBasisPoints:    int64(config.Config.Bridge.FeeBasisPoints),
			ProcessingLatency: time.Duration(config.Config.Bridge.ProcessingSeconds) * time.Second,
			StrategyRateBps:   int64(config.Config.Bridge.StrategyRateBps),
		},
		Consensus: bridge.ConsensusConfig{
			QuorumNumerator:   config.Config.Consensus.QuorumNumerator,
			QuorumDenominator: config.Config.Consensus.QuorumDenominator,
			CacheTTL:          time.Duration(config.Config.Consensus.CacheTTLSeconds) * time.Second,
		},
		Monitor: bridge.MonitorConfig{
			SweepInterval:        time.Duration(config.Config.Monitor.SweepSeconds) * time.Second,
			MaxConsensusAttempts: config.Config.Consensus.MaxAttempts,
		},
		RebalanceInterval: time.Duration(config.Config.Monitor.RebalanceIntervalSeconds) * time.Second,
	})

	// two worker threads: the monitor sweep, and the API serving HTTP server
	// (serves as main worker thread)
	svc.Start()

	workers.Worker_HTTP(svc)

	svc.Stop()
	log.Print("Monitor stopped, exiting")
}

func seedPools() []types.LiquidityPool {
	pools := make([]types.LiquidityPool, 0, len(config.PoolSeeds))
	for _, s := range config.PoolSeeds {
		pools = append(pools, types.LiquidityPool{
			ID:                 s.ID,
			SourceChain:        s.SourceChain,
			DestinationChain:   s.DestinationChain,
			Token:              s.Token,
			SourceBalance:      decimal.NewFromFloat(s.SourceBalance),
			DestinationBalance: decimal.NewFromFloat(s.DestinationBalance),
			RebalanceThreshold: decimal.NewFromFloat(s.RebalanceThreshold),
			MinLiquidity:       decimal.NewFromFloat(s.MinLiquidity),
			MaxLiquidity:       decimal.NewFromFloat(s.MaxLiquidity),
			IsActive:           s.IsActive,
		})
	}
	return pools
}
