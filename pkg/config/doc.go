// Package config provides configuration management for flowmaker.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("flowmaker.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("flowmaker.yaml")
//
// An empty path loads the built-in defaults, so every command works without
// a configuration file.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention FLOWMAKER_SECTION_FIELD:
//
//   - FLOWMAKER_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - FLOWMAKER_STORAGE_SQLITE_DRIVER overrides storage.sqlite.driver
//   - FLOWMAKER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Process Configuration
//
//	cfg, err := config.ReloadConfig(path) // "" means built-in defaults
//	if err != nil {
//	    return err
//	}
//	// elsewhere
//	cfg = config.GetConfig()
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//	  share_base_url: "https://flowmaker.example.com/"
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/diagrams.db"
//	    driver: "sqlite"
//
//	retention:
//	  days: 365
//	  prune_schedule: "0 3 * * *"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
