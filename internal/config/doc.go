// Package config loads the service configuration.
//
// # Configuration Sources
//
// Values are resolved in order of increasing precedence:
//
//  1. Defaults from Default()
//  2. A YAML file: $BIO_CONFIG_FILE, config.yaml or configs/config.yaml
//  3. BIO_* environment variables
//
// # Environment Variables
//
// Nested fields join their section and field names:
//
//	BIO_SERVER_PORT=8080
//	BIO_SOURCES_FILES=data/part1.csv,data/part2.csv
//	BIO_SOURCES_DIR=data
//	BIO_DASHBOARD_TOP_STATES=3
//	BIO_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
