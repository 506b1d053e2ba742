package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"gostablebridge/types"
)

// ConsensusConfig tunes quorum and result caching.
type ConsensusConfig struct {
	// quorum threshold = ceil(Numerator/Denominator × active validators),
	// never below one.
	QuorumNumerator   int
	QuorumDenominator int
	CacheTTL          time.Duration
}

// Coordinator collects validator attestations for a transaction and decides
// consensus. Concurrent requests for the same transaction id converge on a
// single computation.
type Coordinator struct {
	directory ValidatorDirectory
	cache     Cache
	cfg       ConsensusConfig
	group     singleflight.Group
}

func NewCoordinator(directory ValidatorDirectory, cache Cache, cfg ConsensusConfig) *Coordinator {
	if cfg.QuorumNumerator <= 0 || cfg.QuorumDenominator <= 0 {
		cfg.QuorumNumerator, cfg.QuorumDenominator = 2, 3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Coordinator{directory: directory, cache: cache, cfg: cfg}
}

func consensusKey(txID string) string {
	return "consensus:" + txID
}

// ActiveValidators returns validators with IsActive set, in directory order.
func (c *Coordinator) ActiveValidators() []types.Validator {
	all := c.directory.Validators()
	active := make([]types.Validator, 0, len(all))
	for _, v := range all {
		if v.IsActive {
			active = append(active, v)
		}
	}
	return active
}

// RequestConsensus polls the active validator set for attestations and caches
// the outcome. A quorum shortfall is a valid (not reached) result; failure to
// persist the result is a hard, retryable ErrConsensus. At most one
// computation runs per transaction id at any time.
func (c *Coordinator) RequestConsensus(ctx context.Context, txID string, payload []byte) (types.ConsensusResult, error) {
	v, err, _ := c.group.Do(txID, func() (interface{}, error) {
		return c.computeConsensus(ctx, txID, payload)
	})
	if err != nil {
		return types.ConsensusResult{}, err
	}
	return v.(types.ConsensusResult), nil
}

func (c *Coordinator) computeConsensus(ctx context.Context, txID string, payload []byte) (types.ConsensusResult, error) {
	active := c.ActiveValidators()

	required := (len(active)*c.cfg.QuorumNumerator + c.cfg.QuorumDenominator - 1) / c.cfg.QuorumDenominator
	if required < 1 {
		required = 1
	}

	sigs := make([]types.ValidatorSignature, 0, len(active))
	for _, val := range active {
		sig, err := c.directory.Attest(ctx, val, txID, payload)
		if err != nil {
			log.Printf("Validator %s attestation failed for %s: %v", val.ID, txID, err)
			continue
		}
		sigs = append(sigs, types.ValidatorSignature{
			ValidatorID: val.ID,
			Signature:   sig,
			Timestamp:   time.Now(),
		})
	}

	result := types.ConsensusResult{
		TransactionID:       txID,
		ConsensusReached:    len(sigs) >= required,
		ValidatorSignatures: sigs,
		RequiredValidators:  required,
		ActualValidators:    len(active),
		Timestamp:           time.Now(),
	}

	body, err := json.Marshal(result)
	if err != nil {
		return types.ConsensusResult{}, fmt.Errorf("%w: cannot marshal result: %v", ErrConsensus, err)
	}
	if err := c.cache.Set(consensusKey(txID), body, c.cfg.CacheTTL); err != nil {
		log.Printf("Error caching consensus result for %s: %v", txID, err)
		return types.ConsensusResult{}, fmt.Errorf("%w: cache write failed: %v", ErrConsensus, err)
	}

	return result, nil
}

// GetValidationResult reads a cached result. Cache misses and cache failures
// both degrade to nil; the cache is never authoritative.
func (c *Coordinator) GetValidationResult(txID string) *types.ConsensusResult {
	body, err := c.cache.Get(consensusKey(txID))
	if err != nil {
		log.Printf("Error reading consensus cache for %s: %v", txID, err)
		return nil
	}
	if body == nil {
		return nil
	}

	var result types.ConsensusResult
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Error unmarshalling cached consensus result for %s: %v", txID, err)
		return nil
	}
	return &result
}
