package config

import "time"

// Application info
const (
	AppName    = "Biometric Insights"
	AppVersion = "1.0.0"
	EnvPrefix  = "BIO"
)

// ConfigFileEnv names the variable that points at an explicit YAML file.
const ConfigFileEnv = "BIO_CONFIG_FILE"

// Defaults shared by Default and the validators.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second

	DefaultSourcePattern = "*.csv"
	DefaultExportDir     = "exports"
	DefaultLogFile       = "logs/app.log"

	DefaultTopStates     = 3
	DefaultPeakMonths    = 3
	DefaultTopDistricts  = 5
	DefaultStateSelected = 2
)
