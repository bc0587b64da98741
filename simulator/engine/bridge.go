package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// addBridgeFees folds the Ethereum export cost into the bridge hub's fee.
// The bridge hub dry-run only prices local execution; the delivery fee the
// bridge itself charges is quoted on the asset hub. Skipped when the bridge
// hub leg failed or was never reached, since there is nothing to add to.
// The bridge hub hop entry aliases the same detail, so both views stay
// fee-identical.
func (e *Engine) addBridgeFees(ctx context.Context, relay string, result *FeeEstimateResult) error {
	if result.BridgeHub == nil || result.BridgeHub.DryRunError != "" || result.BridgeHub.Fee == nil {
		return nil
	}

	client := e.client.Clone()
	if err := client.Init(ctx, chains.AssetHubOf(relay)); err != nil {
		return fmt.Errorf("init client for %s: %w", chains.AssetHubOf(relay), err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			engineLog.Warn().Err(err).Msg("disconnect failed")
		}
	}()

	fees, err := client.BridgeExportFees(ctx)
	if err != nil {
		return fmt.Errorf("bridge export fee quote: %w", err)
	}
	if len(fees) == 0 {
		return fmt.Errorf("bridge export fee quote is empty")
	}

	result.BridgeHub.Fee = new(big.Int).Add(result.BridgeHub.Fee, fees[0])
	return nil
}

// addBridgeFeesToDryRun is the simulation-side counterpart of addBridgeFees,
// folding the export cost into the bridge hub's dry-run fee.
func (e *Engine) addBridgeFeesToDryRun(ctx context.Context, relay string, result *SimulationResult) error {
	if result.BridgeHub == nil || !result.BridgeHub.Success || result.BridgeHub.Fee == nil {
		return nil
	}

	client := e.client.Clone()
	if err := client.Init(ctx, chains.AssetHubOf(relay)); err != nil {
		return fmt.Errorf("init client for %s: %w", chains.AssetHubOf(relay), err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			engineLog.Warn().Err(err).Msg("disconnect failed")
		}
	}()

	fees, err := client.BridgeExportFees(ctx)
	if err != nil {
		return fmt.Errorf("bridge export fee quote: %w", err)
	}
	if len(fees) == 0 {
		return fmt.Errorf("bridge export fee quote is empty")
	}

	result.BridgeHub.Fee = new(big.Int).Add(result.BridgeHub.Fee, fees[0])
	return nil
}

// mythosOriginFee prices the Ethereum bridge cost in MYTH. Mythos cannot pay
// the bridge in the relay native directly; the relay-denominated export quote
// is converted through the asset hub's AMM pools and padded to absorb price
// movement between estimation and execution.
func (e *Engine) mythosOriginFee(ctx context.Context, relay string) (*big.Int, error) {
	client := e.client.Clone()
	if err := client.Init(ctx, chains.AssetHubOf(relay)); err != nil {
		return nil, fmt.Errorf("init client for %s: %w", chains.AssetHubOf(relay), err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			engineLog.Warn().Err(err).Msg("disconnect failed")
		}
	}()

	fees, err := client.BridgeExportFees(ctx)
	if err != nil {
		return nil, fmt.Errorf("bridge export fee quote: %w", err)
	}
	total := big.NewInt(0)
	for _, f := range fees {
		total.Add(total, f)
	}

	native, err := e.reg.NativeAsset(relay)
	if err != nil {
		return nil, err
	}
	myth, err := e.reg.NativeAsset(chains.Mythos)
	if err != nil {
		return nil, err
	}

	quote, err := client.QuotePoolPrice(ctx, native.Symbol, myth.Symbol, total)
	if err != nil {
		return nil, fmt.Errorf("pool quote %s -> %s: %w", native.Symbol, myth.Symbol, err)
	}
	return PadByPercent(quote, 10), nil
}
