package config

// RPCServerConfig is the serving-side configuration of the simulator.
type RPCServerConfig struct {
	// rpc configs
	Port int    `toml:"port"`
	Host string `toml:"host"`

	// CORS configs
	AllowedOrigins []string `toml:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `toml:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests"`

	// OpenTelemetry configs
	ServiceName    string `toml:"service_name"`
	ServiceVersion string `toml:"service_version"`
	Environment    string `toml:"environment"` // PROD, DEV, TEST, LOCAL
	EnableTracing  bool   `toml:"enable_tracing"`
	UseOTLPTraces  bool   `toml:"use_otlp_traces"`
	OTLPTracesURL  string `toml:"otlp_traces_url"`
	EnableMetrics  bool   `toml:"enable_metrics"`
	UsePrometheus  bool   `toml:"use_prometheus"`
	UseOTLPMetrics bool   `toml:"use_otlp_metrics"`
	OTLPMetricsURL string `toml:"otlp_metrics_url"`
	EnableLogs     bool   `toml:"enable_logs"`
	UseOTLPLogs    bool   `toml:"use_otlp_logs"`
	OTLPLogsURL    string `toml:"otlp_logs_url"`

	InsecureOTLP bool `toml:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `toml:"development_mode"`

	// chain topology file, generated or fetched from the registry repo
	TopologyPath string `toml:"topology_path"`

	// gateway request timeout in seconds, 0 means the client default
	GatewayTimeoutSeconds int `toml:"gateway_timeout_seconds"`
}

// TopologyFile is the on-disk chain topology: every chain the simulator can
// reach, the assets registered on it, and where its gateway lives.
type TopologyFile struct {
	Chains []ChainEntry `toml:"chains"`
}

// ChainEntry is one chain in the topology file.
type ChainEntry struct {
	Name           string   `toml:"name"`
	ParaID         uint32   `toml:"para_id"`
	Relay          string   `toml:"relay"`
	Tier           string   `toml:"tier,omitempty"` // derived from the name when empty
	SupportsDryRun bool     `toml:"supports_dry_run"`
	EVM            bool     `toml:"evm"`
	GatewayURL     string   `toml:"gateway_url"`
	GatewayBackups []string `toml:"gateway_backup_urls"`

	Assets []AssetEntry `toml:"assets"`
}

// AssetEntry is one asset registered on a chain. The existential deposit is
// a decimal string since plancks overflow toml integers on 18-decimal chains.
type AssetEntry struct {
	Symbol             string         `toml:"symbol"`
	Decimals           uint8          `toml:"decimals"`
	Native             bool           `toml:"native"`
	ExistentialDeposit string         `toml:"existential_deposit"`
	Location           *LocationEntry `toml:"location"`
}

// LocationEntry mirrors the simplified multilocation of an asset.
type LocationEntry struct {
	Parents  int    `toml:"parents"`
	Interior string `toml:"interior"`
}
