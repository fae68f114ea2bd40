package session

import (
	"time"
)

// DefaultTimeout is the absolute session lifetime used by expiring policies.
const DefaultTimeout = 900 * time.Second

// Config holds session lifetime configuration.
type Config struct {
	// Timeout is the absolute session lifetime measured from creation (0 = never expires)
	Timeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"900s"`
	// CleanupInterval is how often the background sweeper runs (0 = disabled)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		CleanupInterval: time.Minute,
	}
}
