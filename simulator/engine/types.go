package engine

import (
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
)

// RawXcm is an opaque forwarded message payload. The engine never inspects
// it, it only hands it to the next chain's dry-run.
type RawXcm []byte

// Weight is the execution weight reported by a dry-run.
type Weight struct {
	RefTime   uint64 `json:"refTime"`
	ProofSize uint64 `json:"proofSize"`
}

// FeeType records how a fee figure was obtained.
type FeeType string

const (
	// FeeTypeDryRun means the fee is the exact amount a dry-run charged.
	FeeTypeDryRun FeeType = "dryRun"
	// FeeTypePaymentInfo means the fee is a padded payment-info estimate.
	FeeTypePaymentInfo FeeType = "paymentInfo"
	// FeeTypeNoFeeRequired means the chain charges no execution fee for
	// this leg (the Ethereum terminal leg).
	FeeTypeNoFeeRequired FeeType = "noFeeRequired"
)

// DryRunResult is the outcome of one dry-run execution on one chain.
// A failed dry-run is data, not an error: Success is false and Reason
// carries the runtime's failure reason.
type DryRunResult struct {
	Success      bool     `json:"success"`
	Fee          *big.Int `json:"fee,omitempty"`
	Reason       string   `json:"failureReason,omitempty"`
	SubReason    string   `json:"failureSubReason,omitempty"`
	Weight       *Weight  `json:"weight,omitempty"`
	ForwardedXcm RawXcm   `json:"-"`
	DestParaID   *uint32  `json:"-"`
}

// FeeDetail describes the fee charged (or estimated) on one chain.
// When a dry-run failed and no fallback was allowed, Fee is nil and only
// DryRunError is set.
type FeeDetail struct {
	Chain          string   `json:"chain"`
	Fee            *big.Int `json:"fee,omitempty"`
	FeeType        FeeType  `json:"feeType,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	Sufficient     *bool    `json:"sufficient,omitempty"`
	DryRunError    string   `json:"dryRunError,omitempty"`
	DryRunSubError string   `json:"dryRunSubError,omitempty"`
	Weight         *Weight  `json:"weight,omitempty"`
}

// SwapLeg describes an exchange conversion happening mid-route.
type SwapLeg struct {
	ExchangeChain string
	CurrencyTo    assets.CurrencySpec
}

// TransferParams is the caller's description of a transfer.
type TransferParams struct {
	Origin      string
	Destination string
	Sender      string
	Recipient   string
	Currency    assets.CurrencySpec
	Swap        *SwapLeg
	// FeeAsset names a distinct asset used to pay fees. When set,
	// sufficiency reporting is suppressed.
	FeeAsset string
	// DisableFallback makes failed dry-runs produce error-only fee
	// details instead of padded payment-info estimates.
	DisableFallback bool
}

// Hop pairs a chain name with the per-hop result produced on it.
type Hop[R any] struct {
	Chain  string `json:"chain"`
	Result R      `json:"result"`
}

// SimulationResult is the outcome of a full transfer dry-run.
// The destination outcome is not repeated in Hops.
type SimulationResult struct {
	Origin      *DryRunResult        `json:"origin"`
	AssetHub    *DryRunResult        `json:"assetHub,omitempty"`
	BridgeHub   *DryRunResult        `json:"bridgeHub,omitempty"`
	Destination *DryRunResult        `json:"destination,omitempty"`
	Hops        []Hop[*DryRunResult] `json:"hops"`
	// FailureChain and FailureReason summarize the first failure in
	// canonical order; both empty when the whole route succeeded.
	FailureChain  string `json:"failureChain,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// FeeEstimateResult is the outcome of a full fee estimation.
// AssetHub and BridgeHub alias entries of Hops when those chains were
// traversed as intermediates.
type FeeEstimateResult struct {
	Origin        *FeeDetail        `json:"origin"`
	AssetHub      *FeeDetail        `json:"assetHub,omitempty"`
	BridgeHub     *FeeDetail        `json:"bridgeHub,omitempty"`
	Destination   *FeeDetail        `json:"destination,omitempty"`
	Hops          []Hop[*FeeDetail] `json:"hops"`
	FailureChain  string            `json:"failureChain,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
}

// OriginLocation is the simplified multilocation a forwarded message
// arrives from, as seen by the executing chain.
type OriginLocation struct {
	Parents int     `json:"parents"`
	ParaID  *uint32 `json:"paraId,omitempty"`
}

// originLocation builds the arrival location of a message sent by prev,
// as seen from next.
func originLocation(prev, next chains.Chain) OriginLocation {
	switch {
	case prev.IsRelay():
		return OriginLocation{Parents: 1}
	case next.IsRelay():
		id := prev.ParaID
		return OriginLocation{Parents: 0, ParaID: &id}
	default:
		id := prev.ParaID
		return OriginLocation{Parents: 1, ParaID: &id}
	}
}
