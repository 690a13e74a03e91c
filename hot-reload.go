// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Resizable is a cache whose capacity can change while it runs.
// ConcurrentLFU implements it.
type Resizable interface {
	Capacity() int
	SetCapacity(capacity int) error
}

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and applies capacity changes to a running
// cache when the file changes.
type HotConfig struct {
	cache   Resizable
	watcher *argus.Watcher
	logger  Logger
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations. Default: NoOpLogger.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration for a cache.
// Call Start to begin watching.
//
// Example configuration file (YAML):
//
//	cache:
//	  capacity: 10000
//	  concurrency_level: 8
//	  read_buffer_size: 128
//	  write_buffer_size: 128
//
// Supported configuration keys:
//   - cache.capacity (int): applied live through SetCapacity
//   - cache.concurrency_level (int): takes effect on restart
//   - cache.read_buffer_size (int): takes effect on restart
//   - cache.write_buffer_size (int): takes effect on restart
func NewHotConfig(cache Resizable, opts HotConfigOptions) (*HotConfig, error) {
	if cache == nil {
		return nil, NewErrNilCache("HotConfig")
	}
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path", opts.ConfigPath)
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	config := DefaultConfig()
	config.Capacity = cache.Capacity()

	hc := &HotConfig{
		cache:    cache,
		logger:   opts.Logger,
		OnReload: opts.OnReload,
		config:   config,
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := parseConfig(oldConfig, configData)
	hc.config = newConfig
	hc.mu.Unlock()

	hc.applyChanges(oldConfig, newConfig)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case int64:
		if v > 0 {
			return int(v), true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseConfig overlays the values found in data on base. Invalid values
// are ignored.
func parseConfig(base Config, data map[string]interface{}) Config {
	config := base

	cacheSection, ok := data["cache"].(map[string]interface{})
	if !ok {
		// the whole document may be the cache section
		if _, hasCapacity := data["capacity"]; !hasCapacity {
			return config
		}
		cacheSection = data
	}

	if capacity, ok := parsePositiveInt(cacheSection["capacity"]); ok {
		config.Capacity = capacity
	}
	if level, ok := parsePositiveInt(cacheSection["concurrency_level"]); ok {
		config.ConcurrencyLevel = level
	}
	if size, ok := parsePositiveInt(cacheSection["read_buffer_size"]); ok {
		config.ReadBufferSize = size
	}
	if size, ok := parsePositiveInt(cacheSection["write_buffer_size"]); ok {
		config.WriteBufferSize = size
	}

	return config
}

// applyChanges resizes the cache when capacity changed and reports settings
// that only a restart can apply.
func (hc *HotConfig) applyChanges(old, new Config) {
	if new.Capacity != old.Capacity {
		if err := hc.cache.SetCapacity(new.Capacity); err != nil {
			hc.logger.Warn("hot reload: capacity not applied", "capacity", new.Capacity, "error", err)
		} else {
			hc.logger.Info("hot reload: capacity applied", "from", old.Capacity, "to", new.Capacity)
		}
	}

	if new.ConcurrencyLevel != old.ConcurrencyLevel {
		hc.logger.Warn("hot reload: concurrency_level requires restart", "value", new.ConcurrencyLevel)
	}
	if new.ReadBufferSize != old.ReadBufferSize {
		hc.logger.Warn("hot reload: read_buffer_size requires restart", "value", new.ReadBufferSize)
	}
	if new.WriteBufferSize != old.WriteBufferSize {
		hc.logger.Warn("hot reload: write_buffer_size requires restart", "value", new.WriteBufferSize)
	}
}
