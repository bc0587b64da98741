package assets

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Location is a simplified multilocation. Parents counts consensus system
// boundaries; two parents means the asset originates outside the relay
// ecosystem entirely (a bridged asset).
type Location struct {
	Parents  int    `toml:"parents" json:"parents"`
	Interior string `toml:"interior" json:"interior"`
}

// Asset describes one asset as registered on one chain.
type Asset struct {
	Symbol             string
	Decimals           uint8
	Native             bool
	ExistentialDeposit *big.Int
	Location           *Location
}

// IsBridged reports whether the asset originates outside the relay ecosystem.
func (a Asset) IsBridged() bool {
	return a.Location != nil && a.Location.Parents >= 2
}

// CurrencySpec identifies what the caller wants to move: an asset symbol and
// a plank-denominated amount.
type CurrencySpec struct {
	Symbol string
	Amount *big.Int
}

// Registry maps chain names to the assets registered on them.
type Registry struct {
	byChain map[string][]Asset
}

// NewRegistry builds a registry from per-chain asset lists.
func NewRegistry(byChain map[string][]Asset) *Registry {
	return &Registry{byChain: byChain}
}

// FindAsset resolves an asset symbol on a chain.
func (r *Registry) FindAsset(chain, symbol string) (Asset, error) {
	for _, a := range r.byChain[chain] {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("asset %s not registered on %s", symbol, chain)
}

// NativeAsset returns the chain's native asset.
func (r *Registry) NativeAsset(chain string) (Asset, error) {
	for _, a := range r.byChain[chain] {
		if a.Native {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("no native asset registered on %s", chain)
}

// FindAssetOnDest resolves how the origin's asset is known on the destination
// chain. Falls back to a symbol match when the destination has no entry with
// a matching location.
func (r *Registry) FindAssetOnDest(origin, dest, symbol string) (Asset, error) {
	src, err := r.FindAsset(origin, symbol)
	if err != nil {
		return Asset{}, err
	}
	if src.Location != nil {
		for _, a := range r.byChain[dest] {
			if a.Location != nil && *a.Location == *src.Location {
				return a, nil
			}
		}
	}
	return r.FindAsset(dest, symbol)
}

// Symbols lists the asset symbols registered on a chain.
func (r *Registry) Symbols(chain string) []string {
	out := make([]string, 0, len(r.byChain[chain]))
	for _, a := range r.byChain[chain] {
		out = append(out, a.Symbol)
	}
	return out
}

// IsNativeTo reports whether the symbol is the native asset of the chain.
func (r *Registry) IsNativeTo(chain, symbol string) bool {
	a, err := r.NativeAsset(chain)
	return err == nil && a.Symbol == symbol
}

// ParseAmount converts a human-denominated amount ("1.5") into plancks for
// the given asset. Returns an error on negative amounts or excess precision.
func ParseAmount(human string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", human, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", human)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", human, decimals)
	}
	return scaled.BigInt(), nil
}
