package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/capability"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/config"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/rpc"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC package
	rpc.SetLogger(log)
}

func main() {
	configRpc := flag.String("config-rpc", "./rpc-config.toml", "config file for the api server")
	fetchTopology := flag.Bool("fetch-topology", false, "download the published topology before starting")
	topologyDir := flag.String("topology-dir", "topology", "directory the topology is downloaded to")
	flag.Parse()

	log.Info().
		Str("rpc_config", *configRpc).
		Msg("Starting Spectra XCM Hub Simulator")

	rpcConfig, err := config.LoadRPCServerConfig(configRpc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load RPC config")
	}

	if *fetchTopology {
		if err := config.FetchTopology(*topologyDir); err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch topology")
		}
		log.Info().Str("dir", *topologyDir).Msg("Topology downloaded")
	}

	topo, err := config.LoadTopology(rpcConfig.TopologyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load topology")
	}
	log.Info().Int("count", len(topo.Directory.All())).Msg("Loaded chains")

	failover := capability.DefaultFailoverConfig()
	if rpcConfig.GatewayTimeoutSeconds > 0 {
		failover.Timeout = time.Duration(rpcConfig.GatewayTimeoutSeconds) * time.Second
	}
	gateway, err := capability.NewGatewayClient(topo.Endpoints, failover)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gateway client")
	}
	builder := capability.NewGatewayBuilder(gateway)

	eng := engine.New(topo.Directory, topo.Registry, builder, gateway)

	serverConfig := buildServerConfig(rpcConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := rpc.NewServer(ctx, serverConfig, eng)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// buildServerConfig converts the loaded RPCServerConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.RPCServerConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.UsePrometheus,
	}

	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.Burst = &cfg.MaxConcurrentRequests
	}

	if cfg.EnableTracing || cfg.EnableMetrics || cfg.EnableLogs || cfg.UsePrometheus {
		serverConfig.OTelConfig = &rpc.OTelConfig{
			ServiceName:     defaultString(cfg.ServiceName, "spectra-xcm-hub"),
			ServiceVersion:  defaultString(cfg.ServiceVersion, "1.0.0"),
			Environment:     defaultString(cfg.Environment, "development"),
			EnableTracing:   cfg.EnableTracing,
			UseOTLPTraces:   cfg.UseOTLPTraces,
			OTLPTracesURL:   cfg.OTLPTracesURL,
			EnableMetrics:   cfg.EnableMetrics,
			UsePrometheus:   cfg.UsePrometheus,
			UseOTLPMetrics:  cfg.UseOTLPMetrics,
			OTLPMetricsURL:  cfg.OTLPMetricsURL,
			EnableLogs:      cfg.EnableLogs,
			UseOTLPLogs:     cfg.UseOTLPLogs,
			OTLPLogsURL:     cfg.OTLPLogsURL,
			InsecureOTLP:    cfg.InsecureOTLP,
			DevelopmentMode: cfg.DevelopmentMode,
		}
	}

	return serverConfig
}

// defaultString returns the default value if s is empty
func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
