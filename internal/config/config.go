// Package config loads the relayd runtime configuration with the precedence
// ENV > config file > built-in defaults.
package config

import "time"

// Default values for tunables that have sensible zero-config behavior.
const (
	DefaultListenAddr       = ":8080"
	DefaultOfflineThreshold = 60   // seconds
	DefaultStaleWindow      = 3600 // seconds
	DefaultMaxFileSize      = 10 * 1024 * 1024
	DefaultShutdownTimeout  = 10 * time.Second
)

// AppConfig is the resolved process configuration.
type AppConfig struct {
	ListenAddr string
	AdminToken string

	LogLevel   string
	LogService string
	Version    string

	// Presence tuning. OfflineThresholdSeconds is only the boot value; the
	// live value is owned by the presence tracker and mutable via the API.
	OfflineThresholdSeconds   int
	StaleCleanupWindowSeconds int

	// Upload limits for the session file store.
	MaxFileSizeBytes int64

	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int

	TracingEnabled      bool
	TracingExporter     string
	TracingEndpoint     string
	TracingSamplingRate float64
	TracingEnvironment  string

	ShutdownTimeout time.Duration
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	AdminToken string `yaml:"adminToken"`
	LogLevel   string `yaml:"logLevel"`

	Presence struct {
		OfflineThresholdSeconds   int `yaml:"offlineThresholdSeconds"`
		StaleCleanupWindowSeconds int `yaml:"staleCleanupWindowSeconds"`
	} `yaml:"presence"`

	Files struct {
		MaxSizeBytes int64 `yaml:"maxSizeBytes"`
	} `yaml:"files"`

	RateLimit struct {
		Enabled bool `yaml:"enabled"`
		RPS     int  `yaml:"rps"`
		Burst   int  `yaml:"burst"`
	} `yaml:"rateLimit"`

	Tracing struct {
		Enabled      bool    `yaml:"enabled"`
		Exporter     string  `yaml:"exporter"`
		Endpoint     string  `yaml:"endpoint"`
		SamplingRate float64 `yaml:"samplingRate"`
		Environment  string  `yaml:"environment"`
	} `yaml:"tracing"`
}
