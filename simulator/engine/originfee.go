package engine

import (
	"context"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

type originFeeParams struct {
	client        Client // connected to origin
	tx            Tx
	origin        chains.Chain
	dest          chains.Chain
	asset         assets.Asset
	currency      assets.CurrencySpec
	sender        string
	feeAsset      string
	useRootOrigin bool
}

type originFeeResult struct {
	Detail       *FeeDetail
	ForwardedXcm RawXcm
	DestParaID   *uint32
}

// originFee resolves the fee the origin chain charges for submitting the
// transfer. A successful dry-run also yields the forwarded message the rest
// of the route is walked with; the payment-info paths yield none, which
// makes the caller fall back to direct destination pricing.
func (e *Engine) originFee(ctx context.Context, p originFeeParams) (*originFeeResult, error) {
	if !p.origin.SupportsDryRun {
		detail, err := e.originPaymentInfo(ctx, p)
		if err != nil {
			return nil, err
		}
		return &originFeeResult{Detail: detail}, nil
	}

	run, err := p.client.DryRunCall(ctx, p.tx, p.useRootOrigin)
	if err != nil {
		return nil, fmt.Errorf("dry-run call on %s: %w", p.origin.Name, err)
	}

	if run.Success {
		detail := &FeeDetail{
			Chain:    p.origin.Name,
			Fee:      run.Fee,
			FeeType:  FeeTypeDryRun,
			Currency: p.asset.Symbol,
			Weight:   run.Weight,
			Sufficient: e.sufficiency(ctx, p.client, p.origin, p.asset,
				p.sender, p.currency.Amount, run.Fee, p.feeAsset, SideOrigin),
		}
		return &originFeeResult{
			Detail:       detail,
			ForwardedXcm: run.ForwardedXcm,
			DestParaID:   run.DestParaID,
		}, nil
	}

	detail, err := e.originPaymentInfo(ctx, p)
	if err != nil {
		return nil, err
	}
	detail.DryRunError = run.Reason
	detail.DryRunSubError = run.SubReason
	insufficient := false
	detail.Sufficient = &insufficient
	return &originFeeResult{Detail: detail}, nil
}

func (e *Engine) originPaymentInfo(ctx context.Context, p originFeeParams) (*FeeDetail, error) {
	raw, err := p.client.PaymentInfo(ctx, p.tx, p.sender)
	if err != nil {
		return nil, fmt.Errorf("payment info on %s: %w", p.origin.Name, err)
	}
	fee := PadFee(raw, p.origin, p.dest, SideOrigin)
	return &FeeDetail{
		Chain:    p.origin.Name,
		Fee:      fee,
		FeeType:  FeeTypePaymentInfo,
		Currency: p.asset.Symbol,
		Sufficient: e.sufficiency(ctx, p.client, p.origin, p.asset,
			p.sender, p.currency.Amount, fee, p.feeAsset, SideOrigin),
	}, nil
}
