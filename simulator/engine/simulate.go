package engine

import (
	"context"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// SimulateTransfer dry-runs a transfer end to end: the caller's extrinsic on
// the origin, then every forwarded message on the chains it reaches. Per-hop
// failures come back as data in the result; an error means the simulation
// itself could not run (bad input, broken topology, transport fault).
func (e *Engine) SimulateTransfer(ctx context.Context, p TransferParams) (*SimulationResult, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}
	origin, _ := e.dir.Get(p.Origin)

	tx, err := e.builder.BuildTransfer(ctx, BuildParams{
		From:      p.Origin,
		To:        p.Destination,
		Sender:    p.Sender,
		Recipient: p.Recipient,
		Currency:  p.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("build transfer: %w", err)
	}

	client := e.client.Clone()
	if err := client.Init(ctx, origin.Name); err != nil {
		return nil, fmt.Errorf("init client for %s: %w", origin.Name, err)
	}
	run, runErr := client.DryRunCall(ctx, tx, false)
	if err := client.Disconnect(ctx); err != nil {
		engineLog.Warn().Err(err).Str("chain", origin.Name).Msg("disconnect failed")
	}
	if runErr != nil {
		return nil, fmt.Errorf("dry-run call on %s: %w", origin.Name, runErr)
	}

	result := &SimulationResult{Origin: run, Hops: []Hop[*DryRunResult]{}}
	if !run.Success {
		result.FailureChain = "origin"
		result.FailureReason = run.Reason
		return result, nil
	}

	trav, err := Traverse(ctx, TraversalConfig[*DryRunResult]{
		Client:            e.client,
		Dir:               e.dir,
		Reg:               e.reg,
		Origin:            p.Origin,
		Dest:              p.Destination,
		Swap:              p.Swap,
		Currency:          p.Currency,
		InitialXcm:        run.ForwardedXcm,
		InitialDestParaID: run.DestParaID,
		ProcessHop: func(ctx context.Context, hop HopContext) (*DryRunResult, error) {
			return hop.Client.DryRunXcm(ctx, originLocation(hop.PrevChain, hop.Chain), hop.ForwardedXcm)
		},
		ShouldContinue: func(r *DryRunResult) bool { return r.Success },
		ExtractNext:    func(r *DryRunResult) (RawXcm, *uint32) { return r.ForwardedXcm, r.DestParaID },
	})
	if err != nil {
		return nil, err
	}

	result.Hops = append(result.Hops, trav.Hops...)
	result.AssetHub = trav.AssetHub
	result.BridgeHub = trav.BridgeHub
	if trav.DestinationReached {
		result.Destination = trav.Destination
	}
	if p.Destination == chains.Ethereum && p.Origin != chains.Mythos {
		if err := e.addBridgeFeesToDryRun(ctx, origin.Relay, result); err != nil {
			return nil, err
		}
	}
	result.Summarize()
	return result, nil
}

// validate rejects caller-input faults before any connection is made.
func (e *Engine) validate(p TransferParams) error {
	if _, err := e.dir.Get(p.Origin); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	if _, err := e.dir.Get(p.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if _, err := e.reg.FindAsset(p.Origin, p.Currency.Symbol); err != nil {
		return err
	}
	if p.Swap != nil {
		if _, err := e.dir.Get(p.Swap.ExchangeChain); err != nil {
			return fmt.Errorf("exchange chain: %w", err)
		}
		if p.Swap.CurrencyTo.Symbol == "" {
			return fmt.Errorf("swap leg needs a target currency")
		}
	}
	if p.Sender == "" || p.Recipient == "" {
		return fmt.Errorf("sender and recipient are required")
	}
	return nil
}
