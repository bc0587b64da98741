package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"golang.org/x/sync/errgroup"
)

// EstimateTransferFee prices every leg of a transfer. Two estimation runs
// happen in parallel: the real run executes the caller's own transaction,
// the forced run searches amounts under the root origin until fees can be
// read even when the caller's amount would not execute. Fee figures come
// from the forced run, sufficiency verdicts from the real one.
func (e *Engine) EstimateTransferFee(ctx context.Context, p TransferParams) (*FeeEstimateResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}

	tx, err := e.builder.BuildTransfer(ctx, BuildParams{
		From:      p.Origin,
		To:        p.Destination,
		Sender:    p.Sender,
		Recipient: p.Recipient,
		Currency:  p.Currency,
	})
	if err != nil {
		if !errors.Is(err, ErrAmountTooLow) {
			return nil, fmt.Errorf("build transfer: %w", err)
		}
		// the caller's amount cannot even be built: no real run exists,
		// every sufficiency verdict is a hard no
		forced, ferr := e.forcedRun(ctx, p, nil)
		if ferr != nil {
			return nil, ferr
		}
		markAllInsufficient(forced)
		return forced, nil
	}

	var real, forced *FeeEstimateResult
	var realTooLow bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := e.estimateOnce(gctx, p, tx, false)
		if err != nil {
			// the gateway can also report amount-too-low mid-route; the
			// forced run still prices the route, the real verdict is a no
			if errors.Is(err, ErrAmountTooLow) {
				realTooLow = true
				return nil
			}
			return err
		}
		real = r
		return nil
	})
	g.Go(func() error {
		r, err := e.forcedRun(gctx, p, &tx)
		forced = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if realTooLow {
		markAllInsufficient(forced)
		return forced, nil
	}
	mergeSufficiency(forced, real)
	return forced, nil
}

// markAllInsufficient stamps a hard no on every verdict; used when the
// caller's own amount cannot execute at any point of the route.
func markAllInsufficient(r *FeeEstimateResult) {
	r.eachDetail(func(d *FeeDetail) {
		insufficient := false
		d.Sufficient = &insufficient
	})
}

// forcedRun wraps estimateOnce in the bypass amount search.
func (e *Engine) forcedRun(ctx context.Context, p TransferParams, initial *Tx) (*FeeEstimateResult, error) {
	factory := func(ctx context.Context, amount string, relative bool) (Tx, error) {
		bp := BuildParams{
			From:      p.Origin,
			To:        p.Destination,
			Sender:    p.Sender,
			Recipient: p.Recipient,
			Currency:  assets.CurrencySpec{Symbol: p.Currency.Symbol},
		}
		if relative {
			bp.RelativeAmount = amount
		} else {
			amt, ok := new(big.Int).SetString(amount, 10)
			if !ok {
				return Tx{}, fmt.Errorf("bad probe amount %q", amount)
			}
			bp.Currency.Amount = amt
		}
		return e.builder.BuildTransfer(ctx, bp)
	}
	simulate := func(ctx context.Context, tx Tx) (*FeeEstimateResult, error) {
		return e.estimateOnce(ctx, p, tx, true)
	}
	failureOf := func(r *FeeEstimateResult) string { return r.FailureReason }
	return RunWithRetries(ctx, factory, simulate, failureOf, initial, e.bypass)
}

// estimateOnce is one estimation pass with one transaction: origin fee,
// hop traversal, destination fallback when the walk stops short, and the
// Ethereum bridge and Mythos specials.
func (e *Engine) estimateOnce(ctx context.Context, p TransferParams, tx Tx, useRootOrigin bool) (*FeeEstimateResult, error) {
	origin, _ := e.dir.Get(p.Origin)
	dest, _ := e.dir.Get(p.Destination)
	asset, err := e.reg.FindAsset(p.Origin, p.Currency.Symbol)
	if err != nil {
		return nil, err
	}

	client := e.client.Clone()
	if err := client.Init(ctx, origin.Name); err != nil {
		return nil, fmt.Errorf("init client for %s: %w", origin.Name, err)
	}
	ofr, oerr := e.originFee(ctx, originFeeParams{
		client:        client,
		tx:            tx,
		origin:        origin,
		dest:          dest,
		asset:         asset,
		currency:      p.Currency,
		sender:        p.Sender,
		feeAsset:      p.FeeAsset,
		useRootOrigin: useRootOrigin,
	})
	if err := client.Disconnect(ctx); err != nil {
		engineLog.Warn().Err(err).Str("chain", origin.Name).Msg("disconnect failed")
	}
	if oerr != nil {
		return nil, oerr
	}

	result := &FeeEstimateResult{Origin: ofr.Detail, Hops: []Hop[*FeeDetail]{}}

	// nothing forwarded to walk: price the destination directly
	if ofr.Detail.DryRunError != "" || len(ofr.ForwardedXcm) == 0 {
		destDetail, err := e.destFeeDirect(ctx, p, origin, dest)
		if err != nil {
			return nil, err
		}
		result.Destination = destDetail
		return e.finish(ctx, p, origin, result)
	}

	trav, err := Traverse(ctx, TraversalConfig[*destFeeResult]{
		Client:            e.client,
		Dir:               e.dir,
		Reg:               e.reg,
		Origin:            p.Origin,
		Dest:              p.Destination,
		Swap:              p.Swap,
		Currency:          p.Currency,
		InitialXcm:        ofr.ForwardedXcm,
		InitialDestParaID: ofr.DestParaID,
		ProcessHop: func(ctx context.Context, hop HopContext) (*destFeeResult, error) {
			return e.destFee(ctx, destFeeParams{
				client:          hop.Client,
				chain:           hop.Chain,
				prevChain:       hop.PrevChain,
				asset:           hop.Asset,
				currency:        hop.Currency,
				sender:          p.Sender,
				recipient:       p.Recipient,
				forwardedXcm:    hop.ForwardedXcm,
				feeAsset:        p.FeeAsset,
				disableFallback: p.DisableFallback,
				isDestination:   hop.IsDestination,
			})
		},
		ShouldContinue: func(r *destFeeResult) bool { return r.Detail.DryRunError == "" },
		ExtractNext:    func(r *destFeeResult) (RawXcm, *uint32) { return r.ForwardedXcm, r.DestParaID },
	})
	if err != nil {
		return nil, err
	}

	for _, hop := range trav.Hops {
		result.Hops = append(result.Hops, Hop[*FeeDetail]{Chain: hop.Chain, Result: hop.Result.Detail})
	}
	if trav.AssetHub != nil {
		result.AssetHub = trav.AssetHub.Detail
	}
	if trav.BridgeHub != nil {
		result.BridgeHub = trav.BridgeHub.Detail
	}
	if trav.DestinationReached {
		result.Destination = trav.Destination.Detail
	} else if n := len(trav.Hops); n > 0 && trav.Hops[n-1].Result.Detail.DryRunError != "" {
		// walk failed mid-route, price the destination against the last
		// chain that actually processed something
		destDetail, err := e.destFeeDirect(ctx, p, trav.LastProcessed, dest)
		if err != nil {
			return nil, err
		}
		result.Destination = destDetail
	} else {
		// the route ended cleanly before the destination: nothing was
		// forwarded there, so nothing executes or charges there
		result.Destination = noDestinationFee(dest.Name, p)
	}

	return e.finish(ctx, p, origin, result)
}

// finish applies the Ethereum specials and the failure summary.
func (e *Engine) finish(ctx context.Context, p TransferParams, origin chains.Chain, result *FeeEstimateResult) (*FeeEstimateResult, error) {
	if p.Destination == chains.Ethereum {
		if p.Origin == chains.Mythos {
			surcharge, err := e.mythosOriginFee(ctx, origin.Relay)
			if err != nil {
				return nil, err
			}
			if result.Origin != nil && result.Origin.Fee != nil {
				result.Origin.Fee = new(big.Int).Add(result.Origin.Fee, surcharge)
			}
		} else if err := e.addBridgeFees(ctx, origin.Relay, result); err != nil {
			return nil, err
		}
	}
	result.Summarize()
	return result, nil
}

// noDestinationFee is the detail of a destination no message reaches.
func noDestinationFee(chain string, p TransferParams) *FeeDetail {
	currency := p.Currency
	if p.Swap != nil {
		currency = p.Swap.CurrencyTo
	}
	sufficient := true
	return &FeeDetail{
		Chain:      chain,
		Fee:        big.NewInt(0),
		FeeType:    FeeTypeNoFeeRequired,
		Currency:   currency.Symbol,
		Sufficient: &sufficient,
	}
}

// destFeeDirect prices the destination without a forwarded message.
func (e *Engine) destFeeDirect(ctx context.Context, p TransferParams, prev, dest chains.Chain) (*FeeDetail, error) {
	currency := p.Currency
	if p.Swap != nil {
		currency = p.Swap.CurrencyTo
	}

	if dest.Name == chains.Ethereum {
		return &FeeDetail{
			Chain:    dest.Name,
			Fee:      big.NewInt(0),
			FeeType:  FeeTypeNoFeeRequired,
			Currency: currency.Symbol,
		}, nil
	}

	asset, err := e.reg.FindAssetOnDest(prev.Name, dest.Name, currency.Symbol)
	if err != nil {
		asset = assets.Asset{Symbol: currency.Symbol}
	}

	client := e.client.Clone()
	if err := client.Init(ctx, dest.Name); err != nil {
		return nil, fmt.Errorf("init client for %s: %w", dest.Name, err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			engineLog.Warn().Err(err).Str("chain", dest.Name).Msg("disconnect failed")
		}
	}()

	r, err := e.destFee(ctx, destFeeParams{
		client:          client,
		chain:           dest,
		prevChain:       prev,
		asset:           asset,
		currency:        currency,
		sender:          p.Sender,
		recipient:       p.Recipient,
		feeAsset:        p.FeeAsset,
		disableFallback: p.DisableFallback,
		isDestination:   true,
	})
	if err != nil {
		return nil, err
	}
	return r.Detail, nil
}

// eachDetail visits every fee detail in the result. Hub aliases share
// pointers with hops, so visiting them twice is harmless.
func (r *FeeEstimateResult) eachDetail(fn func(*FeeDetail)) {
	for _, d := range []*FeeDetail{r.Origin, r.AssetHub, r.BridgeHub, r.Destination} {
		if d != nil {
			fn(d)
		}
	}
	for _, hop := range r.Hops {
		if hop.Result != nil {
			fn(hop.Result)
		}
	}
}

// mergeSufficiency overwrites the forced run's sufficiency verdicts with the
// real run's. A slot or hop the real run never produced stays undecided.
func mergeSufficiency(forced, real *FeeEstimateResult) {
	for i := range forced.Hops {
		if i < len(real.Hops) && real.Hops[i].Chain == forced.Hops[i].Chain && real.Hops[i].Result != nil {
			forced.Hops[i].Result.Sufficient = real.Hops[i].Result.Sufficient
		} else if forced.Hops[i].Result != nil {
			forced.Hops[i].Result.Sufficient = nil
		}
	}
	copySufficiency(forced.Origin, real.Origin)
	copySufficiency(forced.AssetHub, real.AssetHub)
	copySufficiency(forced.BridgeHub, real.BridgeHub)
	copySufficiency(forced.Destination, real.Destination)
}

func copySufficiency(dst, src *FeeDetail) {
	if dst == nil {
		return
	}
	if src == nil {
		dst.Sufficient = nil
		return
	}
	dst.Sufficient = src.Sufficient
}
