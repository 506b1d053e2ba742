package bridge

import "errors"

var (
	// ErrChainNotFound is returned when an unknown chain id or name is queried.
	ErrChainNotFound = errors.New("chain not found")

	// ErrPoolNotFound is returned for an unknown pool id or route.
	ErrPoolNotFound = errors.New("liquidity pool not found")

	// ErrLiquidityInvariant signals an accounting bug: a mutation that would
	// drive a balance negative or past its capacity bound. The violating call
	// leaves pool state unchanged; callers must not swallow this.
	ErrLiquidityInvariant = errors.New("liquidity invariant violation")

	// ErrConsensus is returned when validator consensus cannot be certified,
	// e.g. the result cache rejects the write. Retryable.
	ErrConsensus = errors.New("failed to achieve validator consensus")
)
