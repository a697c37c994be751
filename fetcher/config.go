package fetcher

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/packet"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid fetcher config")

type Config struct {
	Pipeline    int           // Number of concurrently outstanding requests
	Count       uint64        // Number of distinct segments to request, 0 to stop at the final segment
	Start       uint64        // First segment to request
	MaxRetries  int           // Resends allowed per segment before the retrieval is aborted
	Lifetime    time.Duration // Interest lifetime, i.e. time before a request times out
	MustBeFresh bool
}

func DefaultConfig() Config {
	return Config{
		Pipeline:    1,
		MaxRetries:  3,
		Lifetime:    packet.DefaultLifetime,
		MustBeFresh: true,
	}
}

// LiteConfig is for tests or inmemory.
func LiteConfig() Config {
	cfg := DefaultConfig()
	cfg.Lifetime = 100 * time.Millisecond
	return cfg
}

// Validate checks the config before any request is sent.
func (c Config) Validate() error {
	if c.Pipeline < 1 {
		return errors.Wrapf(ErrInvalidConfig, "pipeline %d must be at least 1", c.Pipeline)
	}
	if c.Count != 0 && c.Count < uint64(c.Pipeline) {
		return errors.Wrapf(ErrInvalidConfig, "count %d must not be less than pipeline %d", c.Count, c.Pipeline)
	}
	if c.MaxRetries < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative retries %d", c.MaxRetries)
	}
	if c.Lifetime <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "lifetime %s must be positive", c.Lifetime)
	}
	return nil
}
