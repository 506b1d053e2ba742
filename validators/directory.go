package validators

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"gostablebridge/types"
)

// Directory is the semi-static validator set. In absence of a live validator
// network, attestations are deterministic Keccak digests over the validator
// identity and the transaction payload, so results are reproducible in tests.
type Directory struct {
	set []types.Validator
}

func NewDirectory(seed []types.Validator) *Directory {
	set := make([]types.Validator, len(seed))
	for i, v := range seed {
		v.Address = common.HexToAddress(v.Address).Hex()
		set[i] = v
	}
	return &Directory{set: set}
}

// Validators returns a copy of the full set, active and inactive.
func (d *Directory) Validators() []types.Validator {
	out := make([]types.Validator, len(d.set))
	copy(out, d.set)
	return out
}

// Attest produces the validator's signature over the transaction payload.
// Inactive validators refuse to sign.
func (d *Directory) Attest(ctx context.Context, v types.Validator, txID string, payload []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !v.IsActive {
		return "", fmt.Errorf("validator %s is not active", v.ID)
	}

	digest := crypto.Keccak256(
		[]byte(v.ID),
		common.HexToAddress(v.Address).Bytes(),
		[]byte(txID),
		payload,
	)
	return hexutil.Encode(digest), nil
}
