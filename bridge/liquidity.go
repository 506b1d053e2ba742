package bridge

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gostablebridge/types"
)

// PoolManager tracks per-route liquidity. Mutations run under a per-pool
// mutex and are all-or-nothing: a call that would break a balance bound
// fails with ErrLiquidityInvariant and changes nothing.
type PoolManager struct {
	pools             map[string]*managedPool
	routes            map[string]string // "src|dst" -> pool id
	order             []string
	rebalanceInterval time.Duration
}

type managedPool struct {
	mu sync.Mutex
	p  types.LiquidityPool
}

func NewPoolManager(pools []types.LiquidityPool, rebalanceInterval time.Duration) *PoolManager {
	if rebalanceInterval <= 0 {
		rebalanceInterval = time.Minute
	}
	m := &PoolManager{
		pools:             make(map[string]*managedPool, len(pools)),
		routes:            make(map[string]string, len(pools)),
		rebalanceInterval: rebalanceInterval,
	}
	for _, p := range pools {
		p.UtilizationRate = utilization(p)
		m.pools[p.ID] = &managedPool{p: p}
		m.routes[routeKey(p.SourceChain, p.DestinationChain)] = p.ID
		m.order = append(m.order, p.ID)
	}
	sort.Strings(m.order)
	return m
}

func routeKey(src, dst string) string {
	return src + "|" + dst
}

// utilization = used / capacity, where used is the liquidity no longer free
// on the destination side (funds accrued on the source side plus outstanding
// reservations).
func utilization(p types.LiquidityPool) decimal.Decimal {
	capacity := p.SourceBalance.Add(p.DestinationBalance)
	if capacity.IsZero() {
		return decimal.Zero
	}
	return p.SourceBalance.Add(p.Reserved).Div(capacity)
}

// ListPools returns snapshot copies; safe to mutate.
func (m *PoolManager) ListPools() []types.LiquidityPool {
	out := make([]types.LiquidityPool, 0, len(m.order))
	for _, id := range m.order {
		mp := m.pools[id]
		mp.mu.Lock()
		out = append(out, mp.p)
		mp.mu.Unlock()
	}
	return out
}

// PoolForRoute resolves the pool serving a (source, destination) pair.
func (m *PoolManager) PoolForRoute(sourceChain, destinationChain string) (types.LiquidityPool, error) {
	id, ok := m.routes[routeKey(sourceChain, destinationChain)]
	if !ok {
		return types.LiquidityPool{}, fmt.Errorf("%w: route %s -> %s", ErrPoolNotFound, sourceChain, destinationChain)
	}
	mp := m.pools[id]
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.p, nil
}

// CheckAvailability answers whether amount can be serviced right now. It never
// errors: an unknown route or drained pool is a structured "unavailable" with
// the largest currently servable amount and a positive wait estimate.
func (m *PoolManager) CheckAvailability(sourceChain, destinationChain string, amount decimal.Decimal) types.Availability {
	id, ok := m.routes[routeKey(sourceChain, destinationChain)]
	if !ok {
		return types.Availability{
			Available:         false,
			SuggestedAmount:   decimal.Zero,
			EstimatedWaitTime: m.rebalanceInterval,
		}
	}

	mp := m.pools[id]
	mp.mu.Lock()
	p := mp.p
	mp.mu.Unlock()

	free := p.DestinationBalance.Sub(p.Reserved)
	if free.IsNegative() {
		free = decimal.Zero
	}

	if p.IsActive && amount.IsPositive() && free.GreaterThanOrEqual(amount) {
		return types.Availability{
			Available:       true,
			SuggestedAmount: amount,
		}
	}

	suggested := free
	if amount.LessThan(suggested) {
		suggested = amount
	}
	if suggested.IsNegative() || !p.IsActive {
		// an inactive pool services nothing, whatever its balance
		suggested = decimal.Zero
	}
	return types.Availability{
		Available:         false,
		SuggestedAmount:   suggested,
		EstimatedWaitTime: m.estimateWait(p, amount.Sub(free)),
	}
}

// estimateWait projects how long rebalancing needs to free the shortfall,
// in whole rebalance intervals, at least one.
func (m *PoolManager) estimateWait(p types.LiquidityPool, shortfall decimal.Decimal) time.Duration {
	perCycle := p.SourceBalance.Sub(p.MinLiquidity)
	if !shortfall.IsPositive() || !perCycle.IsPositive() {
		return m.rebalanceInterval
	}
	cycles := shortfall.Div(perCycle).Ceil().IntPart()
	if cycles < 1 {
		cycles = 1
	}
	return time.Duration(cycles) * m.rebalanceInterval
}

// Reserve earmarks destination-side liquidity for an in-flight transfer.
func (m *PoolManager) Reserve(poolID string, amount decimal.Decimal) error {
	mp, ok := m.pools[poolID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("%w: non-positive reserve %s on pool %s", ErrLiquidityInvariant, amount, poolID)
	}
	if !mp.p.IsActive {
		return fmt.Errorf("%w: reserve on inactive pool %s", ErrLiquidityInvariant, poolID)
	}
	reserved := mp.p.Reserved.Add(amount)
	if reserved.GreaterThan(mp.p.DestinationBalance) {
		return fmt.Errorf("%w: reserve %s exceeds free liquidity on pool %s", ErrLiquidityInvariant, amount, poolID)
	}

	mp.p.Reserved = reserved
	mp.p.UtilizationRate = utilization(mp.p)
	return nil
}

// Release drops an outstanding reservation, e.g. when a transfer fails.
func (m *PoolManager) Release(poolID string, amount decimal.Decimal) error {
	mp, ok := m.pools[poolID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("%w: non-positive release %s on pool %s", ErrLiquidityInvariant, amount, poolID)
	}
	if amount.GreaterThan(mp.p.Reserved) {
		return fmt.Errorf("%w: release %s exceeds reserved %s on pool %s", ErrLiquidityInvariant, amount, mp.p.Reserved, poolID)
	}

	mp.p.Reserved = mp.p.Reserved.Sub(amount)
	mp.p.UtilizationRate = utilization(mp.p)
	return nil
}

// Settle converts a reservation into an executed transfer: the destination
// side pays out and the matching deposit accrues on the source side.
//
// The MinLiquidity floor is not enforced here: the funds were committed when
// the reservation was accepted, and refusing the payout now would strand an
// executed transfer. The destination side may therefore pass below the floor
// until the next rebalance cycle restores it.
func (m *PoolManager) Settle(poolID string, amount decimal.Decimal) error {
	mp, ok := m.pools[poolID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("%w: non-positive settle %s on pool %s", ErrLiquidityInvariant, amount, poolID)
	}
	if amount.GreaterThan(mp.p.Reserved) {
		return fmt.Errorf("%w: settle %s exceeds reserved %s on pool %s", ErrLiquidityInvariant, amount, mp.p.Reserved, poolID)
	}
	if amount.GreaterThan(mp.p.DestinationBalance) {
		return fmt.Errorf("%w: settle %s exceeds destination balance on pool %s", ErrLiquidityInvariant, amount, poolID)
	}
	source := mp.p.SourceBalance.Add(amount)
	if source.GreaterThan(mp.p.MaxLiquidity) {
		return fmt.Errorf("%w: settle %s overflows source balance past max on pool %s", ErrLiquidityInvariant, amount, poolID)
	}

	mp.p.Reserved = mp.p.Reserved.Sub(amount)
	mp.p.DestinationBalance = mp.p.DestinationBalance.Sub(amount)
	mp.p.SourceBalance = source
	mp.p.UtilizationRate = utilization(mp.p)
	return nil
}

// OptimizeAllocation rebalances every pool whose utilization exceeds its
// threshold, moving funds from the oversupplied source side back toward the
// destination side up to MaxLiquidity and never below MinLiquidity on the
// donor. Idempotent: with no intervening activity a second run moves nothing.
// Returns the number of pools adjusted.
func (m *PoolManager) OptimizeAllocation() int {
	moved := 0
	for _, id := range m.order {
		mp := m.pools[id]
		mp.mu.Lock()
		if mp.p.IsActive && m.rebalancePool(mp) {
			moved++
		}
		mp.mu.Unlock()
	}
	return moved
}

// caller holds mp.mu
func (m *PoolManager) rebalancePool(mp *managedPool) bool {
	if utilization(mp.p).LessThanOrEqual(mp.p.RebalanceThreshold) {
		return false
	}

	capacity := mp.p.SourceBalance.Add(mp.p.DestinationBalance)
	target := capacity.Div(decimal.NewFromInt(2))
	move := mp.p.SourceBalance.Sub(target)

	if donorRoom := mp.p.SourceBalance.Sub(mp.p.MinLiquidity); move.GreaterThan(donorRoom) {
		move = donorRoom
	}
	if destRoom := mp.p.MaxLiquidity.Sub(mp.p.DestinationBalance); move.GreaterThan(destRoom) {
		move = destRoom
	}
	if !move.IsPositive() {
		return false
	}

	mp.p.SourceBalance = mp.p.SourceBalance.Sub(move)
	mp.p.DestinationBalance = mp.p.DestinationBalance.Add(move)
	mp.p.UtilizationRate = utilization(mp.p)
	return true
}
