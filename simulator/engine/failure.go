package engine

// failureEntry is one candidate for the route-level failure summary.
type failureEntry struct {
	Chain  string
	Reason string
}

// firstFailure returns the first entry carrying a reason. Callers list the
// named slots in canonical order (origin, asset hub, bridge hub,
// destination) followed by the remaining hops in traversal order.
func firstFailure(entries []failureEntry) (chain, reason string) {
	for _, e := range entries {
		if e.Reason != "" {
			return e.Chain, e.Reason
		}
	}
	return "", ""
}

// Summarize recomputes the failure summary of a fee estimation.
func (r *FeeEstimateResult) Summarize() {
	entries := []failureEntry{
		{Chain: "origin", Reason: feeFailure(r.Origin)},
		{Chain: "assetHub", Reason: feeFailure(r.AssetHub)},
		{Chain: "bridgeHub", Reason: feeFailure(r.BridgeHub)},
		{Chain: "destination", Reason: feeFailure(r.Destination)},
	}
	for _, hop := range r.Hops {
		entries = append(entries, failureEntry{Chain: hop.Chain, Reason: feeFailure(hop.Result)})
	}
	r.FailureChain, r.FailureReason = firstFailure(entries)
}

// Summarize recomputes the failure summary of a simulation.
func (r *SimulationResult) Summarize() {
	entries := []failureEntry{
		{Chain: "origin", Reason: dryRunFailure(r.Origin)},
		{Chain: "assetHub", Reason: dryRunFailure(r.AssetHub)},
		{Chain: "bridgeHub", Reason: dryRunFailure(r.BridgeHub)},
		{Chain: "destination", Reason: dryRunFailure(r.Destination)},
	}
	for _, hop := range r.Hops {
		entries = append(entries, failureEntry{Chain: hop.Chain, Reason: dryRunFailure(hop.Result)})
	}
	r.FailureChain, r.FailureReason = firstFailure(entries)
}

func feeFailure(d *FeeDetail) string {
	if d == nil {
		return ""
	}
	return d.DryRunError
}

func dryRunFailure(r *DryRunResult) string {
	if r == nil || r.Success {
		return ""
	}
	return r.Reason
}
