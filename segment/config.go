package segment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

// ErrInvalidCount is returned when a segmenter is configured with less than one segment.
var ErrInvalidCount = errors.New("segment count must be at least 1")

// ContentFunc returns the payload of the segment with the given full name and number.
type ContentFunc func(n name.Name, seg uint64) []byte

// HelloContent is the default payload: "Hello, " followed by the segment URI.
func HelloContent(n name.Name, _ uint64) []byte {
	return []byte("Hello, " + n.String())
}

type Config struct {
	MaxCount        uint64        // Number of segments to produce
	FreshnessPeriod time.Duration // Freshness period set on every segment
	Content         ContentFunc   // Payload of each segment
}

type StoreConfig struct {
	CacheSize int // Number of encoded segments kept in memory
}

func DefaultConfig() Config {
	return Config{
		MaxCount:        1,
		FreshnessPeriod: packet.DefaultFreshness,
		Content:         HelloContent,
	}
}

// LiteConfig is for tests or inmemory.
func LiteConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxCount = 5
	return cfg
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		CacheSize: 1024,
	}
}

// LiteStoreConfig is for tests or inmemory.
func LiteStoreConfig() StoreConfig {
	return StoreConfig{
		CacheSize: 16,
	}
}

// Validate checks the config before any segment is produced.
func (c Config) Validate() error {
	if c.MaxCount < 1 {
		return ErrInvalidCount
	}
	return nil
}
