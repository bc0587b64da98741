package engine

import (
	"context"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// HopContext is everything a hop processor gets to work with. Client is
// already connected to Chain and will be disconnected by the traversal once
// the processor returns.
type HopContext struct {
	Client            Client
	Chain             chains.Chain
	PrevChain         chains.Chain
	Asset             assets.Asset
	Currency          assets.CurrencySpec
	ForwardedXcm      RawXcm
	HasPassedExchange bool
	IsDestination     bool
}

// TraversalConfig drives a hop traversal. The three strategy funcs let the
// simulation and fee-estimation paths share the walking logic while
// producing different per-hop results.
type TraversalConfig[R any] struct {
	Client   Client
	Dir      *chains.Directory
	Reg      *assets.Registry
	Origin   string
	Dest     string
	Swap     *SwapLeg
	Currency assets.CurrencySpec

	InitialXcm        RawXcm
	InitialDestParaID *uint32

	// ProcessHop runs the hop and returns its result. An error here is
	// fatal; per-hop failures must be encoded in R instead.
	ProcessHop func(ctx context.Context, hop HopContext) (R, error)
	// ShouldContinue reports whether the walk may proceed past this result.
	ShouldContinue func(R) bool
	// ExtractNext yields the message and para id the result forwards to.
	ExtractNext func(R) (RawXcm, *uint32)
}

// TraversalResult collects the walked hops. AssetHub and BridgeHub alias
// entries of Hops; Destination is never in Hops.
type TraversalResult[R any] struct {
	Hops               []Hop[R]
	Destination        R
	DestinationReached bool
	AssetHub           R
	BridgeHub          R
	LastProcessed      chains.Chain
}

// Traverse walks a route chain by chain, following forwarded messages until
// the destination is reached, a hop refuses to continue, or nothing is
// forwarded anymore. An unresolvable next chain is a topology fault and
// aborts the walk with an error.
func Traverse[R any](ctx context.Context, cfg TraversalConfig[R]) (*TraversalResult[R], error) {
	origin, err := cfg.Dir.Get(cfg.Origin)
	if err != nil {
		return nil, err
	}

	res := &TraversalResult[R]{LastProcessed: origin}
	forwarded := cfg.InitialXcm
	nextPara := cfg.InitialDestParaID
	prev := origin
	// a swap on the origin chain itself happens before any hop is walked
	hasPassedExchange := cfg.Swap != nil && cfg.Origin == cfg.Swap.ExchangeChain

	for len(forwarded) > 0 && nextPara != nil {
		next, err := cfg.Dir.ResolveByParaID(prev.Relay, *nextPara)
		if err != nil {
			return nil, fmt.Errorf("next hop unresolvable from %s: %w", prev.Name, err)
		}

		isDest := next.Name == cfg.Dest &&
			(cfg.Swap == nil || hasPassedExchange || next.Name == cfg.Swap.ExchangeChain)

		currency := cfg.Currency
		if hasPassedExchange && cfg.Swap != nil {
			currency = cfg.Swap.CurrencyTo
		}
		asset := resolveHopAsset(cfg.Reg, prev.Name, next.Name, currency.Symbol)

		client := cfg.Client.Clone()
		if err := client.Init(ctx, next.Name); err != nil {
			return nil, fmt.Errorf("init client for %s: %w", next.Name, err)
		}
		result, hopErr := cfg.ProcessHop(ctx, HopContext{
			Client:            client,
			Chain:             next,
			PrevChain:         prev,
			Asset:             asset,
			Currency:          currency,
			ForwardedXcm:      forwarded,
			HasPassedExchange: hasPassedExchange,
			IsDestination:     isDest,
		})
		if err := client.Disconnect(ctx); err != nil {
			engineLog.Warn().Err(err).Str("chain", next.Name).Msg("disconnect failed")
		}
		if hopErr != nil {
			return nil, hopErr
		}

		res.LastProcessed = next
		if isDest {
			res.Destination = result
			res.DestinationReached = true
			break
		}

		res.Hops = append(res.Hops, Hop[R]{Chain: next.Name, Result: result})
		switch next.Name {
		case chains.AssetHubOf(next.Relay):
			res.AssetHub = result
		case chains.BridgeHubOf(next.Relay):
			res.BridgeHub = result
		}

		if cfg.Swap != nil && next.Name == cfg.Swap.ExchangeChain {
			hasPassedExchange = true
		}
		if !cfg.ShouldContinue(result) {
			break
		}
		forwarded, nextPara = cfg.ExtractNext(result)
		prev = next
	}

	return res, nil
}

// resolveHopAsset figures out how the moved asset is known on the hop chain.
// Bridged assets (two parents) are carried over hub chains as the relay
// native, so an unresolvable symbol falls back to the hop's native asset.
func resolveHopAsset(reg *assets.Registry, prev, next, symbol string) assets.Asset {
	a, err := reg.FindAssetOnDest(prev, next, symbol)
	if err == nil && !a.IsBridged() {
		return a
	}
	if native, nerr := reg.NativeAsset(next); nerr == nil {
		if err != nil || a.IsBridged() {
			return native
		}
	}
	return a
}
