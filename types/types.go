package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxStatus is the lifecycle state of a bridge transaction.
// Terminal statuses are never mutated again.
type TxStatus string

const (
	StatusInitiated          TxStatus = "INITIATED"
	StatusBridgePending      TxStatus = "BRIDGE_PENDING"
	StatusSourceConfirmed    TxStatus = "SOURCE_CONFIRMED"
	StatusDestinationPending TxStatus = "DESTINATION_PENDING"
	StatusCompleted          TxStatus = "COMPLETED"
	StatusFailed             TxStatus = "FAILED"
)

// AllStatuses in state machine order, FAILED last.
var AllStatuses = []TxStatus{
	StatusInitiated,
	StatusBridgePending,
	StatusSourceConfirmed,
	StatusDestinationPending,
	StatusCompleted,
	StatusFailed,
}

func (s TxStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ChainConfig describes one supported network. Loaded at process start,
// immutable afterwards; keyed by ChainID, Name is a unique secondary lookup.
type ChainConfig struct {
	ChainID               string        `json:"chainId"`
	Name                  string        `json:"name"`
	NativeCurrency        string        `json:"nativeCurrency"`
	BlockExplorer         string        `json:"blockExplorer"`
	IsTestnet             bool          `json:"isTestnet"`
	AvgBlockTime          time.Duration `json:"avgBlockTime"`
	RequiredConfirmations int           `json:"requiredConfirmations"`
	RPCList               []string      `json:"-"`
}

// LiquidityPool tracks the two-sided balance of one bridge route.
// One pool per (sourceChain, destinationChain, token) triple.
type LiquidityPool struct {
	ID                 string          `json:"id"`
	SourceChain        string          `json:"sourceChain"`
	DestinationChain   string          `json:"destinationChain"`
	Token              string          `json:"token"`
	SourceBalance      decimal.Decimal `json:"sourceBalance"`
	DestinationBalance decimal.Decimal `json:"destinationBalance"`
	Reserved           decimal.Decimal `json:"reserved"`
	UtilizationRate    decimal.Decimal `json:"utilizationRate"`
	RebalanceThreshold decimal.Decimal `json:"rebalanceThreshold"`
	MinLiquidity       decimal.Decimal `json:"minLiquidity"`
	MaxLiquidity       decimal.Decimal `json:"maxLiquidity"`
	IsActive           bool            `json:"isActive"`
}

// BridgeTransaction is a single cross-chain transfer tracked to completion.
type BridgeTransaction struct {
	ID                string           `json:"transactionId"`
	SourceChain       string           `json:"sourceChain"`
	DestinationChain  string           `json:"destinationChain"`
	Amount            decimal.Decimal  `json:"amount"`
	BridgeFee         decimal.Decimal  `json:"bridgeFee"`
	Status            TxStatus         `json:"status"`
	EstimatedTime     time.Duration    `json:"estimatedTime"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	PaymentID         string           `json:"paymentId,omitempty"`
	DestAddress       string           `json:"destAddress,omitempty"`
	SourceTxHash      string           `json:"sourceTxHash,omitempty"` // deposit received by the bridge
	DestTxHash        string           `json:"destTxHash,omitempty"`   // release executed on destination
	PoolID            string           `json:"poolId,omitempty"`
	ConsensusAttempts int              `json:"consensusAttempts,omitempty"`
	FailureReason     string           `json:"failureReason,omitempty"`
	Consensus         *ConsensusResult `json:"consensus,omitempty"`
}

// ValidatorSignature is one attestation collected during consensus.
type ValidatorSignature struct {
	ValidatorID string    `json:"validatorId"`
	Signature   string    `json:"signature"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConsensusResult certifies (or refuses to certify) a bridge transaction.
type ConsensusResult struct {
	TransactionID       string               `json:"transactionId"`
	ConsensusReached    bool                 `json:"consensusReached"`
	ValidatorSignatures []ValidatorSignature `json:"validatorSignatures"`
	RequiredValidators  int                  `json:"requiredValidators"`
	ActualValidators    int                  `json:"actualValidators"`
	Timestamp           time.Time            `json:"timestamp"`
}

// Validator is a member of the attestation set. Reputation is adjusted
// externally and read-only here.
type Validator struct {
	ID         string  `json:"id"`
	Address    string  `json:"address"`
	IsActive   bool    `json:"isActive"`
	Reputation float64 `json:"reputation"`
}

// BridgeEstimate is the pre-flight fee/time/yield quote.
type BridgeEstimate struct {
	Fee            decimal.Decimal `json:"fee"`
	EstimatedTime  time.Duration   `json:"estimatedTime"`
	EstimatedYield decimal.Decimal `json:"estimatedYield"`
}

// Availability is the structured answer to a liquidity check. Unavailability
// is an expected business outcome, not an error.
type Availability struct {
	Available         bool            `json:"available"`
	SuggestedAmount   decimal.Decimal `json:"suggestedAmount"`
	EstimatedWaitTime time.Duration   `json:"estimatedWaitTime"`
}

// TransactionUpdate is what the hub fans out on every state transition.
type TransactionUpdate struct {
	TransactionID string    `json:"transactionId"`
	Status        TxStatus  `json:"status"`
	Message       string    `json:"message,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type SubscriptionStats struct {
	TotalTransactions                int       `json:"totalTransactions"`
	TotalSubscribers                 int       `json:"totalSubscribers"`
	AverageSubscribersPerTransaction float64   `json:"averageSubscribersPerTransaction"`
	LastUpdated                      time.Time `json:"lastUpdated"`
}

type MonitoringMetrics struct {
	TotalTransactions      int             `json:"totalTransactions"`
	SuccessfulTransactions int             `json:"successfulTransactions"`
	FailedTransactions     int             `json:"failedTransactions"`
	AverageProcessingTime  time.Duration   `json:"averageProcessingTime"`
	TotalVolume            decimal.Decimal `json:"totalVolume"`
	LiquidityUtilization   decimal.Decimal `json:"liquidityUtilization"`
	LastUpdated            time.Time       `json:"lastUpdated"`
}

// TimeRange selects the analytics window ending now.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

type BridgeAnalytics struct {
	TimeRange              TimeRange       `json:"timeRange"`
	TotalTransactions      int             `json:"totalTransactions"`
	SuccessfulTransactions int             `json:"successfulTransactions"`
	FailedTransactions     int             `json:"failedTransactions"`
	PendingTransactions    int             `json:"pendingTransactions"`
	SuccessRate            float64         `json:"successRate"`
	TotalVolume            decimal.Decimal `json:"totalVolume"`
	TotalFees              decimal.Decimal `json:"totalFees"`
}
