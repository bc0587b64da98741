package engine

import (
	"os"
	"time"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"github.com/rs/zerolog"
)

var engineLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	engineLog = zerolog.New(out).With().Timestamp().Str("component", "engine").Logger()
}

// Engine runs transfer simulations and fee estimations against a chain
// topology. It owns no connections itself; the prototype client is cloned
// for every chain touched.
type Engine struct {
	dir     *chains.Directory
	reg     *assets.Registry
	builder TxBuilder
	client  Client
	bypass  BypassOptions
}

// New creates an engine over the given topology, asset registry, transfer
// builder and capability client prototype.
func New(dir *chains.Directory, reg *assets.Registry, builder TxBuilder, client Client) *Engine {
	return &Engine{
		dir:     dir,
		reg:     reg,
		builder: builder,
		client:  client,
		bypass:  DefaultBypassOptions(),
	}
}

// SetBypassOptions overrides the bypass search tuning.
func (e *Engine) SetBypassOptions(opts BypassOptions) {
	e.bypass = opts
}

// Directory returns the chain topology the engine runs against.
func (e *Engine) Directory() *chains.Directory {
	return e.dir
}

// Registry returns the asset registry the engine runs against.
func (e *Engine) Registry() *assets.Registry {
	return e.reg
}
