package chains

import (
	"fmt"
	"strings"
)

// Tier classifies where a chain sits in its ecosystem. Fee padding and
// sufficiency checks both branch on it.
type Tier string

const (
	TierRelay     Tier = "relay"
	TierSystem    Tier = "system"
	TierParachain Tier = "parachain"
	TierExternal  Tier = "external"
)

// Ethereum is the terminal chain of the snowbridge route. It has no para id
// and no dry-run support; fees for it are resolved on the bridge hub.
const Ethereum = "Ethereum"

// Mythos charges origin fees far above the usual parachain range, so it gets
// its own padding override and its own Ethereum bridge fee handling.
const Mythos = "Mythos"

// systemChainPrefixes are the common-good chain name prefixes. A chain named
// "<prefix><relay>" is a system chain of that relay.
var systemChainPrefixes = []string{
	"AssetHub", "BridgeHub", "People", "Coretime", "Collectives",
}

// Chain is one entry of the topology directory.
type Chain struct {
	Name           string
	ParaID         uint32
	Relay          string
	Tier           Tier
	SupportsDryRun bool
	EVM            bool
}

// IsRelay reports whether the chain is a relay chain.
func (c Chain) IsRelay() bool { return c.Tier == TierRelay }

// IsSystem reports whether the chain is a common-good system chain.
func (c Chain) IsSystem() bool { return c.Tier == TierSystem }

// IsExternal reports whether the chain lives outside the relay ecosystem
// (currently only Ethereum).
func (c Chain) IsExternal() bool { return c.Tier == TierExternal }

// AssetHubOf returns the asset hub name of a relay ecosystem.
func AssetHubOf(relay string) string { return "AssetHub" + relay }

// BridgeHubOf returns the bridge hub name of a relay ecosystem.
func BridgeHubOf(relay string) string { return "BridgeHub" + relay }

// ClassifyTier derives a tier from the chain name and relay. The topology
// file may override it, this is the default used when the field is omitted.
func ClassifyTier(name, relay string) Tier {
	if name == Ethereum {
		return TierExternal
	}
	if name == relay {
		return TierRelay
	}
	for _, prefix := range systemChainPrefixes {
		if strings.HasPrefix(name, prefix) && strings.TrimPrefix(name, prefix) == relay {
			return TierSystem
		}
	}
	return TierParachain
}

// Directory resolves chains by name and by para id within a relay ecosystem.
type Directory struct {
	byName map[string]Chain
	byPara map[string]Chain // "<relay>/<paraId>"
}

// NewDirectory builds a directory from topology entries. Entries with an
// empty tier are classified from their name.
func NewDirectory(entries []Chain) *Directory {
	d := &Directory{
		byName: make(map[string]Chain, len(entries)),
		byPara: make(map[string]Chain, len(entries)),
	}
	for _, c := range entries {
		if c.Tier == "" {
			c.Tier = ClassifyTier(c.Name, c.Relay)
		}
		d.byName[c.Name] = c
		if !c.IsExternal() {
			d.byPara[paraKey(c.Relay, c.ParaID)] = c
		}
	}
	return d
}

func paraKey(relay string, paraID uint32) string {
	return fmt.Sprintf("%s/%d", relay, paraID)
}

// Get returns the chain with the given name.
func (d *Directory) Get(name string) (Chain, error) {
	c, ok := d.byName[name]
	if !ok {
		return Chain{}, fmt.Errorf("chain %s not found in topology", name)
	}
	return c, nil
}

// ResolveByParaID resolves the chain a forwarded message is addressed to.
// Para id 0 addresses the relay chain itself.
func (d *Directory) ResolveByParaID(relay string, paraID uint32) (Chain, error) {
	if paraID == 0 {
		return d.Get(relay)
	}
	c, ok := d.byPara[paraKey(relay, paraID)]
	if !ok {
		return Chain{}, fmt.Errorf("no chain with para id %d under relay %s", paraID, relay)
	}
	return c, nil
}

// All returns every chain name in the directory.
func (d *Directory) All() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	return names
}
