package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader resolves the effective configuration from an optional YAML file and
// the process environment. Environment variables always win over file values.
type Loader struct {
	path    string
	version string
}

// NewLoader creates a loader. path may be empty (env + defaults only).
func NewLoader(path, version string) *Loader {
	return &Loader{path: path, version: version}
}

// Load resolves the configuration with precedence ENV > file > defaults.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{
		ListenAddr:                DefaultListenAddr,
		LogLevel:                  "info",
		LogService:                "relayd",
		Version:                   l.version,
		OfflineThresholdSeconds:   DefaultOfflineThreshold,
		StaleCleanupWindowSeconds: DefaultStaleWindow,
		MaxFileSizeBytes:          DefaultMaxFileSize,
		RateLimitBurst:            20,
		TracingExporter:           "http",
		TracingSamplingRate:       1.0,
		TracingEnvironment:        "development",
		ShutdownTimeout:           DefaultShutdownTimeout,
	}

	if l.path != "" {
		if err := applyFile(&cfg, l.path); err != nil {
			return AppConfig{}, err
		}
	}

	applyEnv(&cfg)

	if cfg.OfflineThresholdSeconds <= 0 {
		return AppConfig{}, fmt.Errorf("offline threshold must be positive, got %d", cfg.OfflineThresholdSeconds)
	}
	if cfg.StaleCleanupWindowSeconds < cfg.OfflineThresholdSeconds {
		return AppConfig{}, fmt.Errorf("stale cleanup window (%ds) must not be smaller than the offline threshold (%ds)",
			cfg.StaleCleanupWindowSeconds, cfg.OfflineThresholdSeconds)
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied via --config
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.AdminToken != "" {
		cfg.AdminToken = fc.AdminToken
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Presence.OfflineThresholdSeconds > 0 {
		cfg.OfflineThresholdSeconds = fc.Presence.OfflineThresholdSeconds
	}
	if fc.Presence.StaleCleanupWindowSeconds > 0 {
		cfg.StaleCleanupWindowSeconds = fc.Presence.StaleCleanupWindowSeconds
	}
	if fc.Files.MaxSizeBytes > 0 {
		cfg.MaxFileSizeBytes = fc.Files.MaxSizeBytes
	}
	cfg.RateLimitEnabled = fc.RateLimit.Enabled
	if fc.RateLimit.RPS > 0 {
		cfg.RateLimitRPS = fc.RateLimit.RPS
	}
	if fc.RateLimit.Burst > 0 {
		cfg.RateLimitBurst = fc.RateLimit.Burst
	}
	cfg.TracingEnabled = fc.Tracing.Enabled
	if fc.Tracing.Exporter != "" {
		cfg.TracingExporter = fc.Tracing.Exporter
	}
	if fc.Tracing.Endpoint != "" {
		cfg.TracingEndpoint = fc.Tracing.Endpoint
	}
	if fc.Tracing.SamplingRate > 0 {
		cfg.TracingSamplingRate = fc.Tracing.SamplingRate
	}
	if fc.Tracing.Environment != "" {
		cfg.TracingEnvironment = fc.Tracing.Environment
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("PUBTUNNEL_LISTEN", cfg.ListenAddr)
	cfg.AdminToken = ParseString("PUBTUNNEL_ADMIN_TOKEN", cfg.AdminToken)
	cfg.LogLevel = ParseString("PUBTUNNEL_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("PUBTUNNEL_LOG_SERVICE", cfg.LogService)
	cfg.OfflineThresholdSeconds = ParseInt("PUBTUNNEL_OFFLINE_THRESHOLD", cfg.OfflineThresholdSeconds)
	cfg.StaleCleanupWindowSeconds = ParseInt("PUBTUNNEL_STALE_WINDOW", cfg.StaleCleanupWindowSeconds)
	cfg.MaxFileSizeBytes = int64(ParseInt("PUBTUNNEL_MAX_FILE_SIZE", int(cfg.MaxFileSizeBytes)))
	cfg.RateLimitEnabled = ParseBool("PUBTUNNEL_RATE_LIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.RateLimitRPS = ParseInt("PUBTUNNEL_RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = ParseInt("PUBTUNNEL_RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.TracingEnabled = ParseBool("PUBTUNNEL_TRACING_ENABLED", cfg.TracingEnabled)
	cfg.TracingExporter = ParseString("PUBTUNNEL_TRACING_EXPORTER", cfg.TracingExporter)
	cfg.TracingEndpoint = ParseString("PUBTUNNEL_TRACING_ENDPOINT", cfg.TracingEndpoint)
	cfg.TracingSamplingRate = ParseFloat("PUBTUNNEL_TRACING_SAMPLING_RATE", cfg.TracingSamplingRate)
	cfg.TracingEnvironment = ParseString("PUBTUNNEL_TRACING_ENVIRONMENT", cfg.TracingEnvironment)
	cfg.ShutdownTimeout = ParseDuration("PUBTUNNEL_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
}
