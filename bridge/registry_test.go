package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryListAllChainsValid(t *testing.T) {
	r := NewRegistry(testChains)

	chains := r.List()
	require.Len(t, chains, len(testChains))

	for _, c := range chains {
		assert.Greater(t, c.AvgBlockTime.Seconds(), 0.0, "chain %s must have positive block time", c.ChainID)
		assert.GreaterOrEqual(t, c.RequiredConfirmations, 1, "chain %s", c.ChainID)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(testChains)

	c, err := r.Get("ethereum")
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", c.Name)
	assert.False(t, c.IsTestnet)

	byName, err := r.GetByName("Polygon")
	require.NoError(t, err)
	assert.Equal(t, "polygon", byName.ChainID)

	testnet, err := r.Get("sepolia")
	require.NoError(t, err)
	assert.True(t, testnet.IsTestnet)
}

func TestRegistryUnknownChain(t *testing.T) {
	r := NewRegistry(testChains)

	_, err := r.Get("dogecoin")
	assert.ErrorIs(t, err, ErrChainNotFound)

	_, err = r.GetByName("Dogecoin")
	assert.ErrorIs(t, err, ErrChainNotFound)
}
