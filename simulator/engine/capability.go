package engine

import (
	"context"
	"math/big"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
)

// Tx is a built transfer extrinsic, opaque to the engine.
type Tx struct {
	Chain string
	Call  []byte
}

// BuildParams describes the transfer a TxBuilder should construct.
// When RelativeAmount is set it overrides Currency.Amount and is read as a
// fraction of the sender's spendable balance ("0.2" spends a fifth).
type BuildParams struct {
	From           string
	To             string
	Sender         string
	Recipient      string
	Currency       assets.CurrencySpec
	RelativeAmount string
}

// TxBuilder constructs transfer extrinsics. Implementations return
// ErrAmountTooLow when the amount cannot cover the route's requirements.
type TxBuilder interface {
	BuildTransfer(ctx context.Context, p BuildParams) (Tx, error)
}

// Client is the per-chain capability surface the engine runs against.
// A client is connected to at most one chain at a time; the traversal clones
// it for every hop and always disconnects the clone when the hop is done.
type Client interface {
	// Init connects the client to the named chain.
	Init(ctx context.Context, chain string) error
	// Clone returns an unconnected copy sharing the client's configuration.
	Clone() Client
	// Disconnect releases the connection. Safe to call when not connected.
	Disconnect(ctx context.Context) error

	// DryRunCall executes a transfer extrinsic against current chain state
	// without submitting it. useRootOrigin runs it with the root origin so
	// balance checks on the caller account are bypassed.
	DryRunCall(ctx context.Context, tx Tx, useRootOrigin bool) (*DryRunResult, error)
	// DryRunXcm executes a forwarded message arriving from origin.
	DryRunXcm(ctx context.Context, origin OriginLocation, message RawXcm) (*DryRunResult, error)
	// PaymentInfo returns the raw (unpadded) inclusion fee of a transfer.
	PaymentInfo(ctx context.Context, tx Tx, sender string) (*big.Int, error)
	// Balance returns the address's spendable balance of the asset.
	Balance(ctx context.Context, address string, asset assets.Asset) (*big.Int, error)
	// BridgeExportFees returns the Ethereum export fee quote of the asset
	// hub: the bridge delivery fee followed by the remote execution fee.
	BridgeExportFees(ctx context.Context) ([]*big.Int, error)
	// QuotePoolPrice converts amount of the from asset into the to asset
	// through the chain's AMM pools.
	QuotePoolPrice(ctx context.Context, fromSymbol, toSymbol string, amount *big.Int) (*big.Int, error)
}
