// Package config loads the engine's YAML configuration: the data file
// path, buffer pool capacity, and eviction strategy.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kavarin/recordstore/internal/rmerror"
)

// Config is the engine's runtime configuration. Page size is not
// configurable; it is a compile-time constant (storage.PageSize).
type Config struct {
	Storage struct {
		File string `mapstructure:"file"`
	} `mapstructure:"storage"`
	BufferPool struct {
		NumFrames int    `mapstructure:"num_frames"`
		Strategy  string `mapstructure:"strategy"` // "fifo" or "lru"
	} `mapstructure:"buffer_pool"`
}

// DefaultNumFrames matches the 16-frame pool of recordmgr.Init; a loaded
// config may override it (cmd/recordstore passes it to recordmgr.InitWithPool).
const DefaultNumFrames = 16

// Load reads a YAML config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("buffer_pool.num_frames", DefaultNumFrames)
	v.SetDefault("buffer_pool.strategy", "lru")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, rmerror.ErrConfigError)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, rmerror.ErrConfigError)
	}
	if cfg.Storage.File == "" {
		return nil, fmt.Errorf("config: storage.file is required: %w", rmerror.ErrConfigError)
	}
	if cfg.BufferPool.Strategy != "fifo" && cfg.BufferPool.Strategy != "lru" {
		return nil, fmt.Errorf("config: unknown buffer_pool.strategy %q: %w", cfg.BufferPool.Strategy, rmerror.ErrConfigError)
	}
	return &cfg, nil
}
