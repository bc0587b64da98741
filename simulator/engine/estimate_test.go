package engine_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
	"github.com/zeebo/assert"
)

func TestEstimateDirectRelayToParachain(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Polkadot": {
			dryRunCall: &engine.DryRunResult{
				Success: true, Fee: bigInt(1000),
				ForwardedXcm: engine.RawXcm("to-hydration"), DestParaID: paraID(2034),
			},
			balance: bigInt(1_000_000),
		},
		"Hydration": {
			dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(2000)},
		},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Polkadot",
		Destination: "Hydration",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	assert.Equal(t, int64(1000), res.Origin.Fee.Int64())
	assert.Equal(t, engine.FeeTypeDryRun, res.Origin.FeeType)
	// 1_000_000 - 10_000 - 1000 - 100 ED leaves the account alive
	assert.NotNil(t, res.Origin.Sufficient)
	assert.True(t, *res.Origin.Sufficient)

	assert.Equal(t, int64(2000), res.Destination.Fee.Int64())
	assert.Equal(t, engine.FeeTypeDryRun, res.Destination.FeeType)
	// DOT is not native to Hydration, so no verdict there
	assert.Nil(t, res.Destination.Sufficient)

	assert.Equal(t, 0, len(res.Hops))
	assert.Equal(t, client.st.inits, client.st.disconnects)
}

func TestEstimateAssetHubShortcutAliasesHop(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Hydration": {dryRunCall: &engine.DryRunResult{
			Success: true, Fee: bigInt(500),
			ForwardedXcm: engine.RawXcm("to-assethub"), DestParaID: paraID(1000),
		}},
		"AssetHubPolkadot": {dryRunXcm: &engine.DryRunResult{
			Success: true, Fee: bigInt(3000),
			ForwardedXcm: engine.RawXcm("to-moonbeam"), DestParaID: paraID(2004),
		}},
		"Moonbeam": {dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(2000)}},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), transferHydrationToMoonbeam())
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	assert.Equal(t, 1, len(res.Hops))
	assert.Equal(t, "AssetHubPolkadot", res.Hops[0].Chain)
	assert.True(t, res.AssetHub == res.Hops[0].Result)
	assert.Equal(t, int64(3000), res.AssetHub.Fee.Int64())
	assert.Equal(t, int64(2000), res.Destination.Fee.Int64())
}

func TestEstimateBridgeExportFeeAddedOnBridgeHub(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"AssetHubPolkadot": {
			dryRunCall: &engine.DryRunResult{
				Success: true, Fee: bigInt(1000),
				ForwardedXcm: engine.RawXcm("to-bridgehub"), DestParaID: paraID(1002),
			},
			bridgeFees: []*big.Int{bigInt(3000), bigInt(4000)},
			balance:    bigInt(1_000_000),
		},
		"BridgeHubPolkadot": {
			dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(2000)},
		},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "AssetHubPolkadot",
		Destination: "Ethereum",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "0x98891e5FD24Ef33A488A47101F65D212Ff6E650E",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	// local execution 2000 plus the first export fee quote 3000
	assert.Equal(t, int64(5000), res.BridgeHub.Fee.Int64())
	assert.Equal(t, 1, len(res.Hops))
	assert.True(t, res.BridgeHub == res.Hops[0].Result)

	// Ethereum charges nothing on its own side
	assert.Equal(t, engine.FeeTypeNoFeeRequired, res.Destination.FeeType)
	assert.Equal(t, int64(0), res.Destination.Fee.Int64())
}

func TestEstimateMythosToEthereumSurcharge(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Mythos": {
			paymentInfo: bigInt(1000),
			balance:     bigInt(1_000_000_000),
		},
		"AssetHubPolkadot": {
			bridgeFees: []*big.Int{bigInt(3000), bigInt(4000)},
			poolQuote:  bigInt(50_000),
		},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Mythos",
		Destination: "Ethereum",
		Sender:      "0x3f1b9D7F0dD2a4a7a0cD3D9cB5eE7E2d6A1B4c8E",
		Recipient:   "0x98891e5FD24Ef33A488A47101F65D212Ff6E650E",
		Currency:    assets.CurrencySpec{Symbol: "MYTH", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	// padded payment info 1300 plus the pool-converted export quote 50_000
	// padded by ten percent
	assert.Equal(t, engine.FeeTypePaymentInfo, res.Origin.FeeType)
	assert.Equal(t, int64(1300+55_000), res.Origin.Fee.Int64())
	assert.NotNil(t, res.Origin.Sufficient)
	assert.True(t, *res.Origin.Sufficient)

	// no bridge hub leg exists, the surcharge replaced the bridge addition
	assert.Nil(t, res.BridgeHub)
	assert.Equal(t, engine.FeeTypeNoFeeRequired, res.Destination.FeeType)
}

func TestEstimateAmountTooLowForcesAllInsufficient(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Polkadot": {
			dryRunCall: &engine.DryRunResult{
				Success: true, Fee: bigInt(1000),
				ForwardedXcm: engine.RawXcm("to-hydration"), DestParaID: paraID(2034),
			},
			balance: bigInt(1_000_000),
		},
		"Hydration": {
			dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(2000)},
		},
	})
	builder := &fakeBuilder{buildErr: func(p engine.BuildParams) error {
		// only the caller's own amount is too low, probe amounts build fine
		if p.RelativeAmount == "" && p.Currency.Amount != nil &&
			p.Currency.Amount.Cmp(bigInt(10_000)) == 0 {
			return engine.ErrAmountTooLow
		}
		return nil
	}}

	res, err := testEngineWithBuilder(client, builder).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Polkadot",
		Destination: "Hydration",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)

	// fees still come from the forced probe run
	assert.Equal(t, int64(1000), res.Origin.Fee.Int64())
	assert.Equal(t, int64(2000), res.Destination.Fee.Int64())

	// but every verdict is a hard no: the amount does not even build
	assert.NotNil(t, res.Origin.Sufficient)
	assert.False(t, *res.Origin.Sufficient)
	assert.NotNil(t, res.Destination.Sufficient)
	assert.False(t, *res.Destination.Sufficient)
}

func TestEstimateMidRouteAmountTooLowForcesAllInsufficient(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Polkadot": {
			// the caller's own run trips the amount floor on the gateway,
			// the root run prices the route regardless
			dryRunCallErr: engine.ErrAmountTooLow,
			dryRunCallRoot: &engine.DryRunResult{
				Success: true, Fee: bigInt(1000),
				ForwardedXcm: engine.RawXcm("to-hydration"), DestParaID: paraID(2034),
			},
			balance: bigInt(1_000_000),
		},
		"Hydration": {
			dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(2000)},
		},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Polkadot",
		Destination: "Hydration",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)

	// fees still come from the forced run
	assert.Equal(t, int64(1000), res.Origin.Fee.Int64())
	assert.Equal(t, engine.FeeTypeDryRun, res.Origin.FeeType)
	assert.Equal(t, int64(2000), res.Destination.Fee.Int64())

	// but every verdict is a hard no, same as when the build refuses
	assert.NotNil(t, res.Origin.Sufficient)
	assert.False(t, *res.Origin.Sufficient)
	assert.NotNil(t, res.Destination.Sufficient)
	assert.False(t, *res.Destination.Sufficient)
}

func TestEstimateMergesRealSufficiencyOverForcedFees(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Polkadot": {
			dryRunCall: &engine.DryRunResult{Success: false, Reason: "InsufficientBalance"},
			dryRunCallRoot: &engine.DryRunResult{
				Success: true, Fee: bigInt(1000),
				ForwardedXcm: engine.RawXcm("to-hydration"), DestParaID: paraID(2034),
			},
			paymentInfo: bigInt(500),
			balance:     bigInt(1_000_000),
		},
		"Hydration": {
			dryRunXcm:   &engine.DryRunResult{Success: true, Fee: bigInt(2000)},
			paymentInfo: bigInt(100),
		},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Polkadot",
		Destination: "Hydration",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Currency:    assets.CurrencySpec{Symbol: "DOT", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)

	// the root run sailed through, so no failure surfaces
	assert.Equal(t, "", res.FailureChain)

	// fee figures come from the root run
	assert.Equal(t, int64(1000), res.Origin.Fee.Int64())
	assert.Equal(t, engine.FeeTypeDryRun, res.Origin.FeeType)
	assert.Equal(t, int64(2000), res.Destination.Fee.Int64())

	// the verdict comes from the caller's own run, which failed
	assert.NotNil(t, res.Origin.Sufficient)
	assert.False(t, *res.Origin.Sufficient)
}

func TestEstimateMidRouteFallback(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Hydration": {dryRunCall: &engine.DryRunResult{
			Success: true, Fee: bigInt(500),
			ForwardedXcm: engine.RawXcm("to-assethub"), DestParaID: paraID(1000),
		}},
		"AssetHubPolkadot": {
			dryRunXcm:   &engine.DryRunResult{Success: false, Reason: "Filtered"},
			paymentInfo: bigInt(1000),
		},
		"Moonbeam": {paymentInfo: bigInt(100)},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), transferHydrationToMoonbeam())
	assert.NoError(t, err)
	assert.Equal(t, "assetHub", res.FailureChain)
	assert.Equal(t, "Filtered", res.FailureReason)

	// the failed hop still carries a padded payment-info figure, 1000 * 1.3
	assert.Equal(t, int64(1300), res.AssetHub.Fee.Int64())
	assert.Equal(t, engine.FeeTypePaymentInfo, res.AssetHub.FeeType)
	assert.Equal(t, "Filtered", res.AssetHub.DryRunError)
	assert.True(t, res.AssetHub == res.Hops[0].Result)

	// the walk never got to Moonbeam, it is priced in reverse off the asset
	// hub: 100 * 40 for the system-to-parachain leg
	assert.Equal(t, int64(4000), res.Destination.Fee.Int64())
	assert.Equal(t, engine.FeeTypePaymentInfo, res.Destination.FeeType)
}

func TestEstimateCleanStopChargesNoDestinationFee(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Hydration": {dryRunCall: &engine.DryRunResult{
			Success: true, Fee: bigInt(500),
			ForwardedXcm: engine.RawXcm("to-assethub"), DestParaID: paraID(1000),
		}},
		// the asset hub executes fine but forwards nothing onward
		"AssetHubPolkadot": {dryRunXcm: &engine.DryRunResult{Success: true, Fee: bigInt(3000)}},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), transferHydrationToMoonbeam())
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	assert.Equal(t, 1, len(res.Hops))
	assert.Equal(t, int64(3000), res.AssetHub.Fee.Int64())

	// no message ever reaches Moonbeam, so nothing executes or charges
	// there; a failed hop is what triggers the payment-info fallback
	assert.Equal(t, engine.FeeTypeNoFeeRequired, res.Destination.FeeType)
	assert.Equal(t, int64(0), res.Destination.Fee.Int64())
	assert.NotNil(t, res.Destination.Sufficient)
	assert.True(t, *res.Destination.Sufficient)
}

func TestEstimateDisableFallbackKeepsErrorOnly(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Hydration": {dryRunCall: &engine.DryRunResult{
			Success: true, Fee: bigInt(500),
			ForwardedXcm: engine.RawXcm("to-assethub"), DestParaID: paraID(1000),
		}},
		"AssetHubPolkadot": {
			dryRunXcm:   &engine.DryRunResult{Success: false, Reason: "Filtered"},
			paymentInfo: bigInt(1000),
		},
		"Moonbeam": {paymentInfo: bigInt(100)},
	})

	p := transferHydrationToMoonbeam()
	p.DisableFallback = true
	res, err := testEngine(client).EstimateTransferFee(context.Background(), p)
	assert.NoError(t, err)

	assert.Equal(t, "assetHub", res.FailureChain)
	assert.Equal(t, "Filtered", res.AssetHub.DryRunError)
	assert.Nil(t, res.AssetHub.Fee)
}

func TestEstimateOriginWithoutDryRunSupport(t *testing.T) {
	client := newFakeClient(map[string]*chainScript{
		"Nodle":    {paymentInfo: bigInt(1000), balance: bigInt(1_000_000)},
		"Polkadot": {paymentInfo: bigInt(200)},
	})

	res, err := testEngine(client).EstimateTransferFee(context.Background(), engine.TransferParams{
		Origin:      "Nodle",
		Destination: "Polkadot",
		Sender:      "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Recipient:   "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
		Currency:    assets.CurrencySpec{Symbol: "NODL", Amount: bigInt(10_000)},
	})
	assert.NoError(t, err)
	assert.Equal(t, "", res.FailureChain)

	// both legs are priced from payment info, padded by the default ratio
	assert.Equal(t, engine.FeeTypePaymentInfo, res.Origin.FeeType)
	assert.Equal(t, int64(1300), res.Origin.Fee.Int64())
	assert.NotNil(t, res.Origin.Sufficient)
	assert.True(t, *res.Origin.Sufficient)

	assert.Equal(t, engine.FeeTypePaymentInfo, res.Destination.FeeType)
	assert.Equal(t, int64(260), res.Destination.Fee.Int64())
	assert.Equal(t, 0, len(res.Hops))
}
