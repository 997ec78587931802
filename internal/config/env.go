package config

import (
	"os"
	"strings"

	"github.com/rshade/energyscope/internal/cache"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataSource = "ENERGYSCOPE_DATA"
	EnvLogLevel   = "ENERGYSCOPE_LOG_LEVEL"
	EnvLogFormat  = "ENERGYSCOPE_LOG_FORMAT"
	EnvAddr       = "ENERGYSCOPE_ADDR"
	EnvOutput     = "ENERGYSCOPE_OUTPUT"
)

// ApplyEnv overrides c with any ENERGYSCOPE_* variables that are set. Cache settings
// use the variables defined by the cache package.
func (c *Config) ApplyEnv() {
	setFromEnv(EnvDataSource, &c.Data.Source)
	setFromEnv(EnvLogLevel, &c.Logging.Level)
	setFromEnv(EnvLogFormat, &c.Logging.Format)
	setFromEnv(EnvAddr, &c.Server.Addr)
	setFromEnv(EnvOutput, &c.Output.DefaultFormat)
	setFromEnv(cache.EnvCacheDir, &c.Cache.Directory)

	c.Cache.Enabled = cache.EnabledFromEnv(c.Cache.Enabled)
	c.Cache.TTLSeconds = cache.TTLFromEnv(c.Cache.TTLSeconds)
}

func setFromEnv(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
