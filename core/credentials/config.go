package credentials

// Config provides environment-based configuration for the static verifier.
type Config struct {
	// Users is a comma separated list of user:password pairs.
	Users string `env:"AUTH_USERS" envDefault:"testuser:password123"`
}

// DefaultConfig returns the lab's single demo account.
func DefaultConfig() Config {
	return Config{Users: "testuser:password123"}
}

// NewFromConfig creates a Static verifier from configuration.
func NewFromConfig(cfg Config) (*Static, error) {
	users, err := ParseUsers(cfg.Users)
	if err != nil {
		return nil, err
	}
	return NewStatic(users), nil
}
