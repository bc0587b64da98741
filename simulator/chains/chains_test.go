package chains_test

import (
	"testing"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"github.com/zeebo/assert"
)

func testDirectory() *chains.Directory {
	return chains.NewDirectory([]chains.Chain{
		{Name: "Polkadot", ParaID: 0, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "AssetHubPolkadot", ParaID: 1000, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "BridgeHubPolkadot", ParaID: 1002, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "PeoplePolkadot", ParaID: 1004, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "Hydration", ParaID: 2034, Relay: "Polkadot", SupportsDryRun: true},
		{Name: "Mythos", ParaID: 3369, Relay: "Polkadot", SupportsDryRun: false, EVM: true},
		{Name: "Ethereum", Relay: "Polkadot"},
	})
}

func TestClassifyTier(t *testing.T) {
	assert.Equal(t, chains.TierRelay, chains.ClassifyTier("Polkadot", "Polkadot"))
	assert.Equal(t, chains.TierSystem, chains.ClassifyTier("AssetHubPolkadot", "Polkadot"))
	assert.Equal(t, chains.TierSystem, chains.ClassifyTier("BridgeHubKusama", "Kusama"))
	assert.Equal(t, chains.TierSystem, chains.ClassifyTier("PeoplePolkadot", "Polkadot"))
	assert.Equal(t, chains.TierParachain, chains.ClassifyTier("Hydration", "Polkadot"))
	assert.Equal(t, chains.TierExternal, chains.ClassifyTier("Ethereum", "Polkadot"))

	// AssetHubKusama is not a system chain of Polkadot
	assert.Equal(t, chains.TierParachain, chains.ClassifyTier("AssetHubKusama", "Polkadot"))
}

func TestResolveByParaID(t *testing.T) {
	dir := testDirectory()

	hub, err := dir.ResolveByParaID("Polkadot", 1000)
	assert.NoError(t, err)
	assert.Equal(t, "AssetHubPolkadot", hub.Name)
	assert.Equal(t, chains.TierSystem, hub.Tier)

	// para id 0 addresses the relay itself
	relay, err := dir.ResolveByParaID("Polkadot", 0)
	assert.NoError(t, err)
	assert.Equal(t, "Polkadot", relay.Name)
	assert.Equal(t, chains.TierRelay, relay.Tier)

	_, err = dir.ResolveByParaID("Polkadot", 9999)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	dir := testDirectory()

	myth, err := dir.Get("Mythos")
	assert.NoError(t, err)
	assert.True(t, myth.EVM)
	assert.False(t, myth.SupportsDryRun)

	eth, err := dir.Get("Ethereum")
	assert.NoError(t, err)
	assert.True(t, eth.IsExternal())

	_, err = dir.Get("Unknown")
	assert.Error(t, err)
}

func TestHubNames(t *testing.T) {
	assert.Equal(t, "AssetHubPolkadot", chains.AssetHubOf("Polkadot"))
	assert.Equal(t, "BridgeHubKusama", chains.BridgeHubOf("Kusama"))
}
