package config

import (
	"context"
	"fmt"
	"time"

	getter "github.com/hashicorp/go-getter"
)

// topologyRepo is the go-getter source of the published topology files.
const topologyRepo = "github.com/Cogwheel-Validator/spectra-xcm-registry//topology"

// FetchTopology downloads the published topology directory into dst so that
// deployments can start without shipping a topology file of their own.
func FetchTopology(dst string) error {
	deadline := time.Now().Add(120 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	opts := getter.Client{
		Ctx:  ctx,
		Src:  topologyRepo,
		Dst:  dst,
		Mode: getter.ClientModeDir,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
		},
		Getters: map[string]getter.Getter{
			"git": &getter.GitGetter{},
		},
	}
	if err := opts.Get(); err != nil {
		return fmt.Errorf("failed to download topology: %w", err)
	}
	return nil
}
