package models

import (
	"fmt"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
)

// SwapRequest describes an exchange happening on the way.
type SwapRequest struct {
	ExchangeChain string `json:"exchangeChain"` // e.g., "Hydration"
	CurrencyTo    string `json:"currencyTo"`    // symbol received after the swap
}

// TransferRequest - API POST body shared by simulation and estimation
type TransferRequest struct {
	Origin          string       `json:"origin"`      // e.g., "Polkadot"
	Destination     string       `json:"destination"` // e.g., "Hydration"
	Currency        string       `json:"currency"`    // symbol on the origin, e.g., "DOT"
	Amount          string       `json:"amount"`      // plancks, decimal string
	Sender          string       `json:"sender"`
	Recipient       string       `json:"recipient"`
	FeeAsset        string       `json:"feeAsset,omitempty"` // symbol fees are paid in, when not the transferred one
	Swap            *SwapRequest `json:"swap,omitempty"`
	DisableFallback bool         `json:"disableFallback,omitempty"`
}

// SimulateResponse wraps a dry-run walk of the route.
type SimulateResponse struct {
	Success      bool                     `json:"success"`
	ErrorMessage string                   `json:"errorMessage,omitempty"`
	Result       *engine.SimulationResult `json:"result,omitempty"`
}

// EstimateResponse wraps a priced route.
type EstimateResponse struct {
	Success      bool                      `json:"success"`
	ErrorMessage string                    `json:"errorMessage,omitempty"`
	Result       *engine.FeeEstimateResult `json:"result,omitempty"`
}

// ChainInfoResponse describes one chain of the topology.
type ChainInfoResponse struct {
	Name           string   `json:"name"`
	ParaID         uint32   `json:"paraId"`
	Relay          string   `json:"relay"`
	Tier           string   `json:"tier"`
	SupportsDryRun bool     `json:"supportsDryRun"`
	EVM            bool     `json:"evm"`
	Assets         []string `json:"assets"`
}

// SupportedChainsResponse lists every chain the simulator knows.
type SupportedChainsResponse struct {
	Chains []string `json:"chains"`
}

// ToParams validates the request and converts it to engine parameters.
// EVM chains take hex addresses, everything else takes SS58; the wrong
// format is rejected here, before any chain is contacted.
func (r *TransferRequest) ToParams(evmOrigin, evmDest bool) (engine.TransferParams, error) {
	if r.Origin == "" || r.Destination == "" {
		return engine.TransferParams{}, fmt.Errorf("origin and destination are required")
	}
	if r.Currency == "" {
		return engine.TransferParams{}, fmt.Errorf("currency is required")
	}

	amount, err := assets.ParseAmount(r.Amount, 0)
	if err != nil {
		return engine.TransferParams{}, fmt.Errorf("amount: %w", err)
	}

	if err := ValidateAddress(r.Sender, evmOrigin); err != nil {
		return engine.TransferParams{}, fmt.Errorf("sender: %w", err)
	}
	if err := ValidateAddress(r.Recipient, evmDest); err != nil {
		return engine.TransferParams{}, fmt.Errorf("recipient: %w", err)
	}

	p := engine.TransferParams{
		Origin:          r.Origin,
		Destination:     r.Destination,
		Sender:          r.Sender,
		Recipient:       r.Recipient,
		Currency:        assets.CurrencySpec{Symbol: r.Currency, Amount: amount},
		FeeAsset:        r.FeeAsset,
		DisableFallback: r.DisableFallback,
	}
	if r.Swap != nil {
		p.Swap = &engine.SwapLeg{
			ExchangeChain: r.Swap.ExchangeChain,
			CurrencyTo:    assets.CurrencySpec{Symbol: r.Swap.CurrencyTo},
		}
	}
	return p, nil
}
