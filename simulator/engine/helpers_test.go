package engine_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
)

func testDirectory() *chains.Directory {
	return chains.NewDirectory([]chains.Chain{
		{Name: "Polkadot", ParaID: 0, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "AssetHubPolkadot", ParaID: 1000, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "BridgeHubPolkadot", ParaID: 1002, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "Hydration", ParaID: 2034, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "Moonbeam", ParaID: 2004, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "Nodle", ParaID: 2026, Relay: "Polkadot", SupportsDryRun: false},
		{Name: "Mythos", ParaID: 3369, Relay: "Polkadot", SupportsDryRun: false, EVM: true},
		{Name: "Ethereum", Relay: "Polkadot"},
	})
}

func testRegistry() *assets.Registry {
	dotOnPara := &assets.Location{Parents: 1, Interior: "Here"}
	return assets.NewRegistry(map[string][]assets.Asset{
		"Polkadot": {
			{Symbol: "DOT", Decimals: 10, Native: true, ExistentialDeposit: big.NewInt(100)},
		},
		"AssetHubPolkadot": {
			{Symbol: "DOT", Decimals: 10, Native: true, ExistentialDeposit: big.NewInt(100), Location: dotOnPara},
		},
		"BridgeHubPolkadot": {
			{Symbol: "DOT", Decimals: 10, Native: true, ExistentialDeposit: big.NewInt(100), Location: dotOnPara},
		},
		"Hydration": {
			{Symbol: "HDX", Decimals: 12, Native: true, ExistentialDeposit: big.NewInt(100)},
			{Symbol: "DOT", Decimals: 10, ExistentialDeposit: big.NewInt(100), Location: dotOnPara},
		},
		"Moonbeam": {
			{Symbol: "GLMR", Decimals: 18, Native: true, ExistentialDeposit: big.NewInt(100)},
			{Symbol: "DOT", Decimals: 10, ExistentialDeposit: big.NewInt(100), Location: dotOnPara},
		},
		"Nodle": {
			{Symbol: "NODL", Decimals: 11, Native: true, ExistentialDeposit: big.NewInt(100)},
		},
		"Mythos": {
			{Symbol: "MYTH", Decimals: 18, Native: true, ExistentialDeposit: big.NewInt(100)},
		},
	})
}

// chainScript is the scripted behavior of one chain on the fake client.
type chainScript struct {
	initErr        error
	dryRunCall     *engine.DryRunResult
	dryRunCallErr  error                // returned on non-root runs only
	dryRunCallRoot *engine.DryRunResult // nil: root runs behave like dryRunCall
	dryRunXcm      *engine.DryRunResult
	paymentInfo    *big.Int
	balance        *big.Int
	bridgeFees     []*big.Int
	poolQuote      *big.Int
}

type fakeState struct {
	mu          sync.Mutex
	scripts     map[string]*chainScript
	inits       int
	disconnects int
}

// fakeClient implements engine.Client against scripted per-chain behavior.
// Clones share the script state, mirroring how the production client shares
// endpoint configuration.
type fakeClient struct {
	st    *fakeState
	chain string
}

func newFakeClient(scripts map[string]*chainScript) *fakeClient {
	return &fakeClient{st: &fakeState{scripts: scripts}}
}

func (c *fakeClient) script() *chainScript {
	s, ok := c.st.scripts[c.chain]
	if !ok {
		return &chainScript{}
	}
	return s
}

func (c *fakeClient) Init(_ context.Context, chain string) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.chain = chain
	c.st.inits++
	return c.script().initErr
}

func (c *fakeClient) Clone() engine.Client {
	return &fakeClient{st: c.st}
}

func (c *fakeClient) Disconnect(context.Context) error {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.disconnects++
	return nil
}

func (c *fakeClient) DryRunCall(_ context.Context, _ engine.Tx, useRootOrigin bool) (*engine.DryRunResult, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	s := c.script()
	if useRootOrigin && s.dryRunCallRoot != nil {
		return s.dryRunCallRoot, nil
	}
	if !useRootOrigin && s.dryRunCallErr != nil {
		return nil, s.dryRunCallErr
	}
	if s.dryRunCall == nil {
		return nil, fmt.Errorf("no dry-run call scripted for %s", c.chain)
	}
	return s.dryRunCall, nil
}

func (c *fakeClient) DryRunXcm(_ context.Context, _ engine.OriginLocation, _ engine.RawXcm) (*engine.DryRunResult, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	s := c.script()
	if s.dryRunXcm == nil {
		return nil, fmt.Errorf("no dry-run xcm scripted for %s", c.chain)
	}
	return s.dryRunXcm, nil
}

func (c *fakeClient) PaymentInfo(context.Context, engine.Tx, string) (*big.Int, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	s := c.script()
	if s.paymentInfo == nil {
		return nil, fmt.Errorf("no payment info scripted for %s", c.chain)
	}
	return s.paymentInfo, nil
}

func (c *fakeClient) Balance(context.Context, string, assets.Asset) (*big.Int, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	s := c.script()
	if s.balance == nil {
		return nil, fmt.Errorf("no balance scripted for %s", c.chain)
	}
	return s.balance, nil
}

func (c *fakeClient) BridgeExportFees(context.Context) ([]*big.Int, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.script().bridgeFees, nil
}

func (c *fakeClient) QuotePoolPrice(_ context.Context, _, _ string, _ *big.Int) (*big.Int, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	s := c.script()
	if s.poolQuote == nil {
		return nil, fmt.Errorf("no pool quote scripted for %s", c.chain)
	}
	return s.poolQuote, nil
}

// fakeBuilder returns opaque transactions and records every build request.
// buildErr lets tests fail builds selectively.
type fakeBuilder struct {
	mu       sync.Mutex
	builds   []engine.BuildParams
	buildErr func(p engine.BuildParams) error
}

func (b *fakeBuilder) BuildTransfer(_ context.Context, p engine.BuildParams) (engine.Tx, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builds = append(b.builds, p)
	if b.buildErr != nil {
		if err := b.buildErr(p); err != nil {
			return engine.Tx{}, err
		}
	}
	return engine.Tx{Chain: p.From, Call: []byte(p.From + "->" + p.To)}, nil
}

func (b *fakeBuilder) recorded() []engine.BuildParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]engine.BuildParams, len(b.builds))
	copy(out, b.builds)
	return out
}

func paraID(id uint32) *uint32 { return &id }

func bigInt(v int64) *big.Int { return big.NewInt(v) }
