package fetcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, LiteConfig().Validate())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.Pipeline = 0 },
		func(c *Config) { c.Pipeline = 3; c.Count = 2 },
		func(c *Config) { c.MaxRetries = -1 },
		func(c *Config) { c.Lifetime = 0 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	}

	cfg := DefaultConfig()
	cfg.Pipeline = 3
	cfg.Count = 3
	require.NoError(t, cfg.Validate())
}
