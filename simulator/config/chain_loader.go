package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/capability"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"github.com/pelletier/go-toml/v2"
)

// Topology is a loaded and converted topology file, ready to wire into the
// engine and the gateway client.
type Topology struct {
	Directory *chains.Directory
	Registry  *assets.Registry
	Endpoints map[string]capability.Endpoints
}

// LoadTopology reads a topology file and converts it to runtime types.
// Both toml and json files are accepted.
func LoadTopology(filePath string) (*Topology, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}

	var file TopologyFile
	if strings.HasSuffix(filePath, ".json") {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON topology: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse TOML topology: %w", err)
		}
	}

	return ConvertTopology(&file)
}

// ConvertTopology validates a topology file and builds the runtime types.
func ConvertTopology(file *TopologyFile) (*Topology, error) {
	if file == nil || len(file.Chains) == 0 {
		return nil, fmt.Errorf("no chains in topology")
	}

	entries := make([]chains.Chain, 0, len(file.Chains))
	byChain := make(map[string][]assets.Asset, len(file.Chains))
	endpoints := make(map[string]capability.Endpoints)

	for _, c := range file.Chains {
		if c.Name == "" {
			return nil, fmt.Errorf("topology entry without a name")
		}
		if c.Relay == "" {
			return nil, fmt.Errorf("chain %s has no relay", c.Name)
		}

		tier := chains.Tier(c.Tier)
		if tier == "" {
			tier = chains.ClassifyTier(c.Name, c.Relay)
		}

		// external chains have no node and no gateway, everything else
		// must be reachable
		if tier != chains.TierExternal {
			if c.GatewayURL == "" {
				return nil, fmt.Errorf("chain %s has no gateway_url", c.Name)
			}
			endpoints[c.Name] = capability.Endpoints{
				Primary: c.GatewayURL,
				Backups: c.GatewayBackups,
			}
		}

		entries = append(entries, chains.Chain{
			Name:           c.Name,
			ParaID:         c.ParaID,
			Relay:          c.Relay,
			Tier:           tier,
			SupportsDryRun: c.SupportsDryRun,
			EVM:            c.EVM,
		})

		converted, err := convertAssets(c.Name, c.Assets)
		if err != nil {
			return nil, err
		}
		byChain[c.Name] = converted
	}

	return &Topology{
		Directory: chains.NewDirectory(entries),
		Registry:  assets.NewRegistry(byChain),
		Endpoints: endpoints,
	}, nil
}

func convertAssets(chain string, entries []AssetEntry) ([]assets.Asset, error) {
	out := make([]assets.Asset, 0, len(entries))
	for _, a := range entries {
		if a.Symbol == "" {
			return nil, fmt.Errorf("chain %s has an asset without a symbol", chain)
		}

		var ed *big.Int
		if a.ExistentialDeposit != "" {
			v, ok := new(big.Int).SetString(a.ExistentialDeposit, 10)
			if !ok {
				return nil, fmt.Errorf("asset %s on %s has bad existential_deposit %q",
					a.Symbol, chain, a.ExistentialDeposit)
			}
			ed = v
		}

		asset := assets.Asset{
			Symbol:             a.Symbol,
			Decimals:           a.Decimals,
			Native:             a.Native,
			ExistentialDeposit: ed,
		}
		if a.Location != nil {
			asset.Location = &assets.Location{
				Parents:  a.Location.Parents,
				Interior: a.Location.Interior,
			}
		}
		out = append(out, asset)
	}
	return out, nil
}
