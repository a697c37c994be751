package responder

import "time"

type Config struct {
	Delay          time.Duration // Artificial delay before each reply
	Workers        int           // Number of reply goroutines
	MaxQueuedTasks int           // Maximum number of queued replies, extra interests are dropped
}

func DefaultConfig() Config {
	return Config{
		Workers:        4,
		MaxQueuedTasks: 1024,
	}
}

// LiteConfig is for tests or inmemory.
func LiteConfig() Config {
	return Config{
		Workers:        2,
		MaxQueuedTasks: 64,
	}
}
