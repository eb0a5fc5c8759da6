package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// SourcesConfig lists the input exports. Files wins over Dir+Pattern.
type SourcesConfig struct {
	Files     []string `yaml:"files" envconfig:"FILES"`
	Dir       string   `yaml:"dir" envconfig:"DIR"`
	Pattern   string   `yaml:"pattern" envconfig:"PATTERN"`
	Sheet     string   `yaml:"sheet" envconfig:"SHEET"`
	Encoding  string   `yaml:"encoding" envconfig:"ENCODING"`
	Delimiter string   `yaml:"delimiter" envconfig:"DELIMITER"`
}

// DashboardConfig sizes the dashboard rankings.
type DashboardConfig struct {
	TopStates     int `yaml:"top_states" envconfig:"TOP_STATES"`
	PeakMonths    int `yaml:"peak_months" envconfig:"PEAK_MONTHS"`
	TopDistricts  int `yaml:"top_districts" envconfig:"TOP_DISTRICTS"`
	DefaultStates int `yaml:"default_states" envconfig:"DEFAULT_STATES"`
}

// ExportConfig controls the report exporter.
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// TelemetryConfig controls OpenTelemetry providers.
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
}

// Load builds the configuration from defaults, then the YAML file if one is
// found, then BIO_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable are left untouched, so env only
	// overrides what it sets.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	switch c.Logging.Format = strings.ToLower(c.Logging.Format); c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if len(c.Sources.Files) == 0 && c.Sources.Dir == "" {
		return fmt.Errorf("no sources configured: set sources.files or sources.dir")
	}

	if c.Sources.Pattern == "" {
		c.Sources.Pattern = DefaultSourcePattern
	}

	if utf8.RuneCountInString(c.Sources.Delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single character: %q", c.Sources.Delimiter)
	}

	if c.Dashboard.TopStates < 0 || c.Dashboard.PeakMonths < 0 || c.Dashboard.TopDistricts < 0 || c.Dashboard.DefaultStates < 0 {
		return fmt.Errorf("dashboard sizes must not be negative")
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	case "":
		c.Telemetry.TraceExporter = "none"
	default:
		return fmt.Errorf("invalid trace exporter: %q", c.Telemetry.TraceExporter)
	}

	return nil
}

// DelimiterRune returns the configured CSV delimiter, or zero for auto-detection.
func (s SourcesConfig) DelimiterRune() rune {
	if s.Delimiter == "" {
		return 0
	}
	if s.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    DefaultLogFile,
			Development: false,
		},
		Sources: SourcesConfig{
			Dir:      "data",
			Pattern:  DefaultSourcePattern,
			Encoding: "auto",
		},
		Dashboard: DashboardConfig{
			TopStates:     DefaultTopStates,
			PeakMonths:    DefaultPeakMonths,
			TopDistricts:  DefaultTopDistricts,
			DefaultStates: DefaultStateSelected,
		},
		Export: ExportConfig{
			Dir: DefaultExportDir,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "bioinsights",
			Environment:   "development",
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
		},
	}
}
