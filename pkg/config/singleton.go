package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig is the configuration the commands and the watcher share.
	globalConfig *Config

	configMutex sync.RWMutex

	// configPath is the file globalConfig was last read from. The watcher
	// follows it.
	configPath string

	initOnce sync.Once
)

// Initialize reads path with LLMSTXT_ env overrides and installs the result
// as the process configuration. Only the first call loads; later calls
// return nil without rereading the file. Commands call it from loadConfig
// before opening the stores.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configPath = path
		configMutex.Unlock()
	})

	return initErr
}

// Path returns the config file to watch for reloads.
func Path() string {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return configPath
}

// GetConfig returns the current configuration, or nil before Initialize.
// After a hot reload it returns the reloaded values.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the current configuration without touching Path.
// Tests use it to install and restore a configuration.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig rereads path after the watcher saw it change. An invalid
// file is rejected and the running configuration stays in place, so a
// half-saved edit never stops scheduled exports. On success the new
// configuration is installed and returned for the caller to apply to the
// site metadata, the settings fallback and the schedule.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configPath = path
	configMutex.Unlock()

	return cfg, nil
}

// MustGetConfig is GetConfig for code that only runs after startup loaded
// the configuration. It panics otherwise.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
