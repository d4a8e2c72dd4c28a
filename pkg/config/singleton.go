package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig is the configuration of the running command.
	globalConfig *Config
	configMutex  sync.RWMutex
)

// ReloadConfig loads path with environment overrides and installs it as the
// process configuration. The installed configuration is kept when loading
// or validation fails.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	SetConfig(cfg)
	return cfg, nil
}

// GetConfig returns the installed configuration, or nil before the first
// successful ReloadConfig or SetConfig.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig installs cfg as the process configuration.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
