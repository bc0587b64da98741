package engine

import (
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// Side says which end of a leg a padded fee will be charged on. Relay to
// parachain legs pad the two sides very differently.
type Side int

const (
	SideOrigin Side = iota
	SideDestination
)

// mythosFlatFee is the fixed origin fee override for Mythos routes that do
// not terminate on Ethereum, denominated in MYTH plancks (18 decimals).
var mythosFlatFee = big.NewInt(3_000_000_000_000_000)

// PadFee pads a raw payment-info fee for the from -> to leg. Payment info
// systematically undershoots what XCM execution actually charges, and by how
// much depends on the tiers involved.
func PadFee(raw *big.Int, from, to chains.Chain, side Side) *big.Int {
	if raw == nil {
		return nil
	}
	switch {
	case from.Name == chains.Mythos && to.Name != chains.Ethereum:
		return new(big.Int).Set(mythosFlatFee)
	case from.IsSystem() && to.Tier == chains.TierParachain:
		return mulRatio(raw, 40, 1)
	case from.IsRelay() && to.Tier == chains.TierParachain:
		if side == SideOrigin {
			return mulRatio(raw, 16, 5)
		}
		return mulRatio(raw, 30, 1)
	default:
		return mulRatio(raw, 13, 10)
	}
}

// PadByPercent grows amount by percent, rounding down. Zero stays zero.
func PadByPercent(amount *big.Int, percent int64) *big.Int {
	if amount == nil {
		return nil
	}
	return mulRatio(amount, 100+percent, 100)
}

func mulRatio(amount *big.Int, num, den int64) *big.Int {
	r := new(big.Int).Mul(amount, big.NewInt(num))
	return r.Quo(r, big.NewInt(den))
}
