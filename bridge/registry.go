package bridge

import (
	"fmt"
	"sort"

	"gostablebridge/types"
)

// Registry is the static catalog of supported networks. Immutable after
// construction, safe for concurrent reads.
type Registry struct {
	byID   map[string]types.ChainConfig
	byName map[string]types.ChainConfig
	order  []string
}

func NewRegistry(chains map[string]types.ChainConfig) *Registry {
	r := &Registry{
		byID:   make(map[string]types.ChainConfig, len(chains)),
		byName: make(map[string]types.ChainConfig, len(chains)),
	}
	for id, c := range chains {
		r.byID[id] = c
		r.byName[c.Name] = c
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)
	return r
}

// List returns all supported networks, mainnets and testnets alike.
func (r *Registry) List() []types.ChainConfig {
	out := make([]types.ChainConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) Get(id string) (types.ChainConfig, error) {
	c, ok := r.byID[id]
	if !ok {
		return types.ChainConfig{}, fmt.Errorf("%w: %s", ErrChainNotFound, id)
	}
	return c, nil
}

func (r *Registry) GetByName(name string) (types.ChainConfig, error) {
	c, ok := r.byName[name]
	if !ok {
		return types.ChainConfig{}, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return c, nil
}
