package capability

import (
	"context"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
)

// GatewayBuilder asks the gateway to encode transfer extrinsics. Encoding
// needs chain metadata, which lives with the node connections on the
// gateway side.
type GatewayBuilder struct {
	client *GatewayClient
}

// NewGatewayBuilder wraps a gateway client for extrinsic encoding.
func NewGatewayBuilder(client *GatewayClient) *GatewayBuilder {
	return &GatewayBuilder{client: client}
}

// BuildTransfer encodes a transfer on the origin chain's gateway endpoint.
// An amount the runtime rejects as dust comes back as ErrAmountTooLow.
func (b *GatewayBuilder) BuildTransfer(ctx context.Context, p engine.BuildParams) (engine.Tx, error) {
	eps, ok := b.client.st.endpoints[p.From]
	if !ok {
		return engine.Tx{}, fmt.Errorf("no gateway endpoint configured for %s", p.From)
	}

	req := buildTransferRequest{
		To:             p.To,
		Sender:         p.Sender,
		Recipient:      p.Recipient,
		Currency:       p.Currency.Symbol,
		RelativeAmount: p.RelativeAmount,
	}
	if p.Currency.Amount != nil {
		req.Amount = p.Currency.Amount.String()
	}

	// a throwaway binding, build requests need no health ping
	bound := &GatewayClient{st: b.client.st, chain: p.From, currentURL: eps.Primary}

	var resp buildTransferResponse
	if err := bound.post(ctx, "/build-transfer", req, &resp); err != nil {
		return engine.Tx{}, err
	}
	if len(resp.Call) == 0 {
		return engine.Tx{}, fmt.Errorf("gateway returned an empty call for %s", p.From)
	}
	return engine.Tx{Chain: p.From, Call: resp.Call}, nil
}
