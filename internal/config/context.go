package config

import (
	"context"
	"slices"
)

type contextKey struct{}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Server.AllowedOrigins = slices.Clone(c.Server.AllowedOrigins)
	return &clone
}

// ContextWithConfig returns a context carrying cfg for one command invocation.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the configuration stored by ContextWithConfig, or the global
// configuration when ctx carries none.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(contextKey{}).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return GetGlobalConfig()
}
