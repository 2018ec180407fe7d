package transport

import "time"

// BackoffConfig defines dial retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config constrains transport open behavior and decode memory use.
type Config struct {
	// MaxMessageBytes bounds one framed message in either direction.
	MaxMessageBytes uint64
	// ConnectTimeout bounds socket bind-and-accept or dial as a whole.
	// Zero means wait until the context is done.
	ConnectTimeout time.Duration
	// PollInterval is the file-mode fallback poll cadence used when the
	// filesystem watcher delivers no events.
	PollInterval time.Duration
	Backoff      BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		MaxMessageBytes: 64 * 1024 * 1024,
		ConnectTimeout:  30 * time.Second,
		PollInterval:    100 * time.Millisecond,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}
