package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// destFeeParams describes one receiving leg: the chain being charged, the
// chain the message comes from, and what is being moved.
type destFeeParams struct {
	client          Client // connected to chain
	chain           chains.Chain
	prevChain       chains.Chain
	asset           assets.Asset
	currency        assets.CurrencySpec
	sender          string
	recipient       string
	forwardedXcm    RawXcm
	feeAsset        string
	disableFallback bool
	isDestination   bool
}

// destFeeResult carries the fee detail plus whatever the hop forwards on.
type destFeeResult struct {
	Detail       *FeeDetail
	ForwardedXcm RawXcm
	DestParaID   *uint32
}

// destFee resolves the fee charged on a receiving chain. Dry-run is the
// preferred source; chains that cannot dry-run, legs with nothing forwarded,
// and the Ethereum terminal leg fall back to a padded payment-info estimate
// of the reverse-direction transfer. A failed dry-run keeps its error on the
// detail; with fallback disabled the error is all the caller gets.
func (e *Engine) destFee(ctx context.Context, p destFeeParams) (*destFeeResult, error) {
	if !p.chain.SupportsDryRun || len(p.forwardedXcm) == 0 || p.chain.Name == chains.Ethereum {
		detail, err := e.reverseFeeEstimate(ctx, p)
		if err != nil {
			return nil, err
		}
		return &destFeeResult{Detail: detail}, nil
	}

	origin := originLocation(p.prevChain, p.chain)
	run, err := p.client.DryRunXcm(ctx, origin, p.forwardedXcm)
	if err != nil {
		return nil, fmt.Errorf("dry-run xcm on %s: %w", p.chain.Name, err)
	}

	if run.Success {
		detail := &FeeDetail{
			Chain:    p.chain.Name,
			Fee:      run.Fee,
			FeeType:  FeeTypeDryRun,
			Currency: p.asset.Symbol,
			Weight:   run.Weight,
		}
		if p.isDestination {
			detail.Sufficient = e.sufficiency(ctx, p.client, p.chain, p.asset,
				p.recipient, p.currency.Amount, run.Fee, p.feeAsset, SideDestination)
		}
		return &destFeeResult{
			Detail:       detail,
			ForwardedXcm: run.ForwardedXcm,
			DestParaID:   run.DestParaID,
		}, nil
	}

	if p.disableFallback {
		// error-only variant: no fee figure may accompany the error
		return &destFeeResult{Detail: &FeeDetail{
			Chain:          p.chain.Name,
			Currency:       p.asset.Symbol,
			DryRunError:    run.Reason,
			DryRunSubError: run.SubReason,
		}}, nil
	}

	detail, err := e.reverseFeeEstimate(ctx, p)
	if err != nil {
		return nil, err
	}
	detail.DryRunError = run.Reason
	detail.DryRunSubError = run.SubReason
	insufficient := false
	detail.Sufficient = &insufficient
	return &destFeeResult{Detail: detail}, nil
}

// reverseFeeEstimate prices a leg without executing it: it asks the charged
// chain for the payment info of the opposite-direction transfer and pads the
// result. Ethereum charges nothing on its own side.
func (e *Engine) reverseFeeEstimate(ctx context.Context, p destFeeParams) (*FeeDetail, error) {
	if p.chain.Name == chains.Ethereum {
		return &FeeDetail{
			Chain:    p.chain.Name,
			Fee:      big.NewInt(0),
			FeeType:  FeeTypeNoFeeRequired,
			Currency: p.asset.Symbol,
		}, nil
	}

	amount := p.currency.Amount
	if amount == nil || amount.Cmp(big.NewInt(2)) < 0 {
		// payment info rejects dust, the fee barely depends on amount
		amount = big.NewInt(2)
	}

	tx, err := e.builder.BuildTransfer(ctx, BuildParams{
		From:      p.chain.Name,
		To:        p.prevChain.Name,
		Sender:    p.recipient,
		Recipient: p.sender,
		Currency:  assets.CurrencySpec{Symbol: p.asset.Symbol, Amount: amount},
	})
	if err != nil {
		return nil, fmt.Errorf("build reverse transfer %s -> %s: %w", p.chain.Name, p.prevChain.Name, err)
	}

	raw, err := p.client.PaymentInfo(ctx, tx, p.recipient)
	if err != nil {
		return nil, fmt.Errorf("payment info on %s: %w", p.chain.Name, err)
	}

	detail := &FeeDetail{
		Chain:    p.chain.Name,
		Fee:      PadFee(raw, p.prevChain, p.chain, SideDestination),
		FeeType:  FeeTypePaymentInfo,
		Currency: p.asset.Symbol,
	}
	if p.isDestination {
		detail.Sufficient = e.sufficiency(ctx, p.client, p.chain, p.asset,
			p.recipient, p.currency.Amount, detail.Fee, p.feeAsset, SideDestination)
	}
	return detail, nil
}
