package engine_test

import (
	"context"
	"testing"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
	"github.com/zeebo/assert"
)

// The named slots outrank the hop list, in the fixed order origin, asset
// hub, bridge hub, destination. This ordering is part of the API contract;
// do not reorder it to match any one caller's traversal order.
func TestFailurePrecedenceNamedSlotsFirst(t *testing.T) {
	r := &engine.SimulationResult{
		Origin:      &engine.DryRunResult{Success: true},
		Destination: &engine.DryRunResult{Success: false, Reason: "NotHoldingFees"},
		Hops: []engine.Hop[*engine.DryRunResult]{
			{Chain: "Hydration", Result: &engine.DryRunResult{Success: false, Reason: "Filtered"}},
		},
	}
	r.Summarize()
	// the destination slot outranks hops even though the hop failed
	// earlier in traversal order
	assert.Equal(t, "destination", r.FailureChain)
	assert.Equal(t, "NotHoldingFees", r.FailureReason)
}

func TestFailurePrecedenceHubOrder(t *testing.T) {
	r := &engine.FeeEstimateResult{
		Origin:    &engine.FeeDetail{Chain: "Polkadot"},
		AssetHub:  &engine.FeeDetail{Chain: "AssetHubPolkadot", DryRunError: "Filtered"},
		BridgeHub: &engine.FeeDetail{Chain: "BridgeHubPolkadot", DryRunError: "Trapped"},
	}
	r.Summarize()
	assert.Equal(t, "assetHub", r.FailureChain)
	assert.Equal(t, "Filtered", r.FailureReason)

	r.AssetHub.DryRunError = ""
	r.Summarize()
	assert.Equal(t, "bridgeHub", r.FailureChain)
	assert.Equal(t, "Trapped", r.FailureReason)
}

func TestFailureSummaryThroughSimulation(t *testing.T) {
	// the asset hub hop fails mid-route; its named slot wins the summary
	client := newFakeClient(map[string]*chainScript{
		"Hydration": {dryRunCall: &engine.DryRunResult{
			Success: true, Fee: bigInt(500),
			ForwardedXcm: engine.RawXcm("to-assethub"), DestParaID: paraID(1000),
		}},
		"AssetHubPolkadot": {
			dryRunXcm: &engine.DryRunResult{Success: false, Reason: "Filtered"},
		},
	})

	res, err := testEngine(client).SimulateTransfer(context.Background(), transferHydrationToMoonbeam())
	assert.NoError(t, err)
	assert.Equal(t, "assetHub", res.FailureChain)
	assert.Equal(t, "Filtered", res.FailureReason)
	assert.Nil(t, res.Destination)
}

func TestFailureSummaryEmptyOnSuccess(t *testing.T) {
	r := &engine.FeeEstimateResult{
		Origin:      &engine.FeeDetail{Chain: "Polkadot", FeeType: engine.FeeTypeDryRun},
		Destination: &engine.FeeDetail{Chain: "Hydration", FeeType: engine.FeeTypeDryRun},
	}
	r.Summarize()
	assert.Equal(t, "", r.FailureChain)
	assert.Equal(t, "", r.FailureReason)
}

// helpers shared by the orchestrator tests

func testEngine(client *fakeClient) *engine.Engine {
	return engine.New(testDirectory(), testRegistry(), &fakeBuilder{}, client)
}

func testEngineWithBuilder(client *fakeClient, builder *fakeBuilder) *engine.Engine {
	return engine.New(testDirectory(), testRegistry(), builder, client)
}

func transferHydrationToMoonbeam() engine.TransferParams {
	return engine.TransferParams{
		Origin:      "Hydration",
		Destination: "Moonbeam",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "0x98891e5FD24Ef33A488A47101F65D212Ff6E650E",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	}
}
