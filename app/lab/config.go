package lab

import (
	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/credentials"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/server"
	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/core/sessiontransport"
	"github.com/dmitrymomot/sessionlab/integration/database/redis"
)

// Session store backends accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Server      server.Config
	Cookie      cookie.Config
	Session     session.Config
	Binding     binding.Config
	Transport   sessiontransport.CookieConfig
	Credentials credentials.Config
	Redis       redis.Config
	Log         logger.Config

	AppName string `env:"APP_NAME" envDefault:"sessionlab"`
	Store   string `env:"SESSION_STORE" envDefault:"memory"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Server:      server.DefaultConfig(),
		Cookie:      cookie.DefaultConfig(),
		Session:     session.DefaultConfig(),
		Binding:     binding.DefaultConfig(),
		Transport:   sessiontransport.DefaultCookieConfig(),
		Credentials: credentials.DefaultConfig(),
		Redis:       redis.DefaultConfig(),
		Log:         logger.Config{Level: "info", Format: "text"},
		AppName:     "sessionlab",
		Store:       StoreMemory,
	}
}
