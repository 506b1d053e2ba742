package config

import (
	"time"

	"gostablebridge/types"
)

type Configuration struct {
	// Server config
	Server struct {
		UseSSL    bool   `yaml:"ssl"`
		Port      int    `yaml:"port"`
		RedisPort int    `yaml:"redis_port"`
		RedisHost string `yaml:"redis_host"`
	} `yaml:"server"`
	// Fee/time/yield estimation
	Bridge struct {
		BaseFee           float64 `yaml:"base_fee"`
		FeeBasisPoints    int     `yaml:"fee_basis_points"`
		ProcessingSeconds int     `yaml:"processing_seconds"`
		StrategyRateBps   int     `yaml:"strategy_rate_bps"`
	} `yaml:"bridge"`
	// Validator consensus
	Consensus struct {
		QuorumNumerator   int `yaml:"quorum_numerator"`
		QuorumDenominator int `yaml:"quorum_denominator"`
		CacheTTLSeconds   int `yaml:"cache_ttl_seconds"`
		MaxAttempts       int `yaml:"max_attempts"`
	} `yaml:"consensus"`
	// Transaction monitor
	Monitor struct {
		SweepSeconds             int `yaml:"sweep_seconds"`
		RebalanceIntervalSeconds int `yaml:"rebalance_interval_seconds"`
	} `yaml:"monitor"`
}

var Config Configuration

// fallbacks applied when config.yml leaves a tunable at zero
const (
	DefaultFeeBasisPoints    = 10
	DefaultProcessingSeconds = 120
	DefaultQuorumNumerator   = 2
	DefaultQuorumDenominator = 3
	DefaultCacheTTLSeconds   = 300
	DefaultMaxAttempts       = 3
	DefaultSweepSeconds      = 10
	DefaultRebalanceSeconds  = 60
)

// Chains is the static catalog of supported networks,
// both mainnets and testnets. Keyed by chain id.
var Chains = map[string]types.ChainConfig{
	"ethereum": {
		ChainID:               "ethereum",
		Name:                  "Ethereum",
		NativeCurrency:        "ETH",
		BlockExplorer:         "https://etherscan.io",
		IsTestnet:             false,
		AvgBlockTime:          12 * time.Second,
		RequiredConfirmations: 12,
		RPCList:               []string{"https://eth.drpc.org", "https://eth.llamarpc.com"},
	},
	"polygon": {
		ChainID:               "polygon",
		Name:                  "Polygon",
		NativeCurrency:        "MATIC",
		BlockExplorer:         "https://polygonscan.com",
		IsTestnet:             false,
		AvgBlockTime:          2 * time.Second,
		RequiredConfirmations: 30,
		RPCList:               []string{"https://polygon.drpc.org", "https://polygon.llamarpc.com"},
	},
	"arbitrum": {
		ChainID:               "arbitrum",
		Name:                  "Arbitrum",
		NativeCurrency:        "ETH",
		BlockExplorer:         "https://arbiscan.io",
		IsTestnet:             false,
		AvgBlockTime:          1 * time.Second,
		RequiredConfirmations: 20,
		RPCList:               []string{"https://rpc.ankr.com/arbitrum", "https://arbitrum.llamarpc.com"},
	},
	"base": {
		ChainID:               "base",
		Name:                  "Base",
		NativeCurrency:        "ETH",
		BlockExplorer:         "https://basescan.org",
		IsTestnet:             false,
		AvgBlockTime:          2 * time.Second,
		RequiredConfirmations: 15,
		RPCList:               []string{"https://base.drpc.org", "https://base.llamarpc.com"},
	},
	"sepolia": {
		ChainID:               "sepolia",
		Name:                  "Sepolia",
		NativeCurrency:        "ETH",
		BlockExplorer:         "https://sepolia.etherscan.io",
		IsTestnet:             true,
		AvgBlockTime:          12 * time.Second,
		RequiredConfirmations: 3,
		RPCList:               []string{"https://sepolia.drpc.org"},
	},
}

// one pool per (source, destination, token) route
type PoolSeed struct {
	ID                 string
	SourceChain        string
	DestinationChain   string
	Token              string
	SourceBalance      float64
	DestinationBalance float64
	RebalanceThreshold float64
	MinLiquidity       float64
	MaxLiquidity       float64
	IsActive           bool
}

var PoolSeeds = []PoolSeed{
	{"pool-eth-poly-usdc", "ethereum", "polygon", "USDC", 500_000, 500_000, 0.7, 50_000, 2_000_000, true},
	{"pool-poly-eth-usdc", "polygon", "ethereum", "USDC", 400_000, 400_000, 0.7, 50_000, 2_000_000, true},
	{"pool-eth-arb-usdc", "ethereum", "arbitrum", "USDC", 300_000, 300_000, 0.7, 25_000, 1_000_000, true},
	{"pool-arb-base-usdc", "arbitrum", "base", "USDC", 250_000, 250_000, 0.75, 25_000, 1_000_000, true},
	{"pool-base-eth-usdc", "base", "ethereum", "USDC", 250_000, 250_000, 0.75, 25_000, 1_000_000, true},
}

// ValidatorSeeds is the semi-static attestation set. Reputation is managed
// externally, this process only reads it.
var ValidatorSeeds = []types.Validator{
	{ID: "validator-1", Address: "0x1111111111111111111111111111111111111111", IsActive: true, Reputation: 0.98},
	{ID: "validator-2", Address: "0x2222222222222222222222222222222222222222", IsActive: true, Reputation: 0.95},
	{ID: "validator-3", Address: "0x3333333333333333333333333333333333333333", IsActive: true, Reputation: 0.97},
	{ID: "validator-4", Address: "0x4444444444444444444444444444444444444444", IsActive: true, Reputation: 0.92},
	{ID: "validator-5", Address: "0x5555555555555555555555555555555555555555", IsActive: false, Reputation: 0.61},
}

// RedisStatusSets maps a transaction status to the redis set holding the keys
// of every transaction currently in that status.
var RedisStatusSets = map[types.TxStatus]string{
	types.StatusInitiated:          "bridgetx:initiated",
	types.StatusBridgePending:      "bridgetx:bridgepending",
	types.StatusSourceConfirmed:    "bridgetx:sourceconfirmed",
	types.StatusDestinationPending: "bridgetx:destinationpending",
	types.StatusCompleted:          "bridgetx:completed",
	types.StatusFailed:             "bridgetx:failed",
}
