package engine

import "errors"

// ErrAmountTooLow is returned by transfer builders when the requested amount
// cannot cover the route's fees or deposits. The bypass search treats it as
// recoverable and keeps probing with other amounts.
var ErrAmountTooLow = errors.New("amount too low to cover fees")

// ReasonTransactAssetFailed is the dry-run failure reason class that makes
// the bypass search switch from absolute to relative probe amounts: the
// probed amount exceeded what the account can actually move.
const ReasonTransactAssetFailed = "FailedToTransactAsset"
