package engine

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// BypassOptions tunes the forced-run amount search.
type BypassOptions struct {
	// MaxIncreaseAttempts bounds the absolute-amount probes.
	MaxIncreaseAttempts int
	// IncreaseStep is the absolute amount added per increase probe.
	IncreaseStep int64
	// MaxDecreaseAttempts bounds the relative-amount probes.
	MaxDecreaseAttempts int
}

// DefaultBypassOptions returns the production tuning of the search.
func DefaultBypassOptions() BypassOptions {
	return BypassOptions{
		MaxIncreaseAttempts: 5,
		IncreaseStep:        100,
		MaxDecreaseAttempts: 5,
	}
}

// TxFactory builds a probe transaction. amount is a plank figure when
// relative is false, and a fraction of the sender's balance ("0.2") when
// relative is true.
type TxFactory func(ctx context.Context, amount string, relative bool) (Tx, error)

// minRelativeAmount floors the relative probes; below this the probe would
// round to zero plancks on any realistic balance.
var minRelativeAmount = decimal.New(1, -6)

// RunWithRetries searches for an amount whose root-origin run succeeds, so a
// fee figure exists even when the caller's own amount cannot execute.
//
// The initial transaction, when given, is tried first. After that probes run
// with growing absolute amounts; a FailedToTransactAsset failure means the
// probed amount overshot the account's holdings and flips the search to
// shrinking fractions of the balance. ErrAmountTooLow is recoverable
// everywhere except on the last increase probe. When a phase is exhausted
// one final probe runs and its result is returned as-is, failure included;
// callers get a best-effort diagnostic rather than nothing.
func RunWithRetries[R any](
	ctx context.Context,
	factory TxFactory,
	simulate func(ctx context.Context, tx Tx) (R, error),
	failureOf func(R) string,
	initial *Tx,
	opts BypassOptions,
) (R, error) {
	var zero R

	if initial != nil {
		result, err := simulate(ctx, *initial)
		switch {
		case err != nil && !errors.Is(err, ErrAmountTooLow):
			return zero, err
		case err == nil && failureOf(result) == "":
			return result, nil
		case err == nil && failureOf(result) == ReasonTransactAssetFailed:
			return decreasePhase(ctx, factory, simulate, failureOf, opts)
		}
	}

	for i := 1; i <= opts.MaxIncreaseAttempts; i++ {
		amount := strconv.FormatInt(opts.IncreaseStep*int64(i), 10)
		result, err := probe(ctx, factory, simulate, amount, false)
		if err != nil {
			if errors.Is(err, ErrAmountTooLow) && i < opts.MaxIncreaseAttempts {
				continue
			}
			return zero, err
		}
		reason := failureOf(result)
		if reason == "" {
			return result, nil
		}
		if reason == ReasonTransactAssetFailed {
			return decreasePhase(ctx, factory, simulate, failureOf, opts)
		}
	}

	// exhausted: rerun the largest probe and hand back whatever it yields
	amount := strconv.FormatInt(opts.IncreaseStep*int64(opts.MaxIncreaseAttempts), 10)
	return probe(ctx, factory, simulate, amount, false)
}

func decreasePhase[R any](
	ctx context.Context,
	factory TxFactory,
	simulate func(ctx context.Context, tx Tx) (R, error),
	failureOf func(R) string,
	opts BypassOptions,
) (R, error) {
	var zero R
	five := decimal.NewFromInt(5)
	fraction := decimal.NewFromInt(1).Div(five)

	shrink := func() {
		fraction = fraction.Div(five)
		if fraction.LessThan(minRelativeAmount) {
			fraction = minRelativeAmount
		}
	}

	for i := 0; i < opts.MaxDecreaseAttempts; i++ {
		result, err := probe(ctx, factory, simulate, fraction.String(), true)
		if err != nil {
			if errors.Is(err, ErrAmountTooLow) {
				shrink()
				continue
			}
			return zero, err
		}
		switch failureOf(result) {
		case "":
			return result, nil
		case ReasonTransactAssetFailed:
			shrink()
		default:
			// a different failure will not get better with less money
			return result, nil
		}
	}

	return probe(ctx, factory, simulate, fraction.String(), true)
}

func probe[R any](
	ctx context.Context,
	factory TxFactory,
	simulate func(ctx context.Context, tx Tx) (R, error),
	amount string,
	relative bool,
) (R, error) {
	var zero R
	tx, err := factory(ctx, amount, relative)
	if err != nil {
		return zero, err
	}
	return simulate(ctx, tx)
}
