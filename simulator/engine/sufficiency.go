package engine

import (
	"context"
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// sufficiency reports whether an account can still exist after the transfer
// settles on one chain. A nil result means the question is undecidable: fees
// are paid in a different asset, or the moved asset is not the chain's
// native one, so the native-balance arithmetic below would be meaningless.
//
// On the origin side the balance loses amount and fee; on the destination
// side it gains amount and loses fee. Either way the remainder must stay
// strictly above the existential deposit floor.
func (e *Engine) sufficiency(
	ctx context.Context,
	client Client,
	chain chains.Chain,
	asset assets.Asset,
	address string,
	amount, fee *big.Int,
	feeAsset string,
	side Side,
) *bool {
	if feeAsset != "" && feeAsset != asset.Symbol {
		return nil
	}
	if !e.reg.IsNativeTo(chain.Name, asset.Symbol) {
		return nil
	}
	if fee == nil || amount == nil {
		return nil
	}

	balance, err := client.Balance(ctx, address, asset)
	if err != nil {
		engineLog.Debug().Err(err).
			Str("chain", chain.Name).
			Str("address", address).
			Msg("balance query failed, sufficiency unknown")
		return nil
	}

	left := new(big.Int).Set(balance)
	if side == SideOrigin {
		left.Sub(left, amount)
	} else {
		left.Add(left, amount)
	}
	left.Sub(left, fee)
	if asset.ExistentialDeposit != nil {
		left.Sub(left, asset.ExistentialDeposit)
	}

	ok := left.Sign() > 0
	return &ok
}
