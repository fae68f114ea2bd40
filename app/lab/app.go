package lab

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionlab/core/auth"
	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/config"
	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/credentials"
	"github.com/dmitrymomot/sessionlab/core/health"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/response"
	"github.com/dmitrymomot/sessionlab/core/router"
	"github.com/dmitrymomot/sessionlab/core/server"
	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/core/sessiontransport"
	"github.com/dmitrymomot/sessionlab/integration/database/redis"
	"github.com/dmitrymomot/sessionlab/integration/sessionstore/redisstore"
	"github.com/dmitrymomot/sessionlab/middleware"
)

const (
	healthPath = "/healthz"
	readyPath  = "/readyz"
)

type App struct {
	config     Config
	configured bool

	logger   *slog.Logger
	store    session.Store
	redis    *goredis.Client
	verifier credentials.Verifier
	policy   binding.Policy
	auth     *auth.Service
	router   router.Router[*Context]
	server   *server.Server
	pages    *template.Template
	theme    theme
}

type AppOption func(*App) error

// NewApp wires the lab from configuration. Without WithConfig the
// configuration is loaded from the environment.
// The redis store connects inside NewApp, so ctx bounds the connection attempts.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.configured {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}
	cfg := &app.config

	if app.logger == nil {
		app.logger = logger.NewFromConfig(cfg.Log, cfg.AppName,
			logger.WithContextExtractors(middleware.RequestIDExtractor),
		)
	}

	if len(cfg.Cookie.SecretList()) == 0 {
		secret, err := cookie.GenerateSecret()
		if err != nil {
			return nil, err
		}
		cfg.Cookie.Secrets = secret
		app.logger.Warn("COOKIE_SECRETS is not set, using an ephemeral secret; sessions will not survive a restart",
			logger.Component("app"),
		)
	}

	if app.store == nil {
		if err := app.openStore(ctx); err != nil {
			return nil, err
		}
	}

	policy, err := binding.New(cfg.Binding, app.store, cfg.Session.Timeout, app.logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.policy = policy
	app.theme = themeFor(policy.Name())

	mgr, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		app.close()
		return nil, err
	}
	transport := sessiontransport.NewCookieFromConfig(cfg.Transport, mgr,
		sessiontransport.WithLogger(app.logger),
	)

	if app.verifier == nil {
		v, err := credentials.NewFromConfig(cfg.Credentials)
		if err != nil {
			app.close()
			return nil, err
		}
		app.verifier = v
	}

	svc, err := auth.New(policy, app.store, app.verifier, auth.WithLogger(app.logger))
	if err != nil {
		app.close()
		return nil, err
	}
	app.auth = svc

	pages, err := parsePages()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	app.pages = pages

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger))
	if err != nil {
		app.close()
		return nil, err
	}
	app.server = srv

	app.router = router.New[*Context](
		router.WithContextFactory[*Context](newContext),
		router.WithErrorHandler[*Context](response.ErrorHandler[*Context]),
		router.WithLogger[*Context](app.logger),
		router.WithMiddleware[*Context](
			middleware.RequestID[*Context](),
			middleware.LoggingWithLogger[*Context](app.logger),
			middleware.BodyLimitWithSize[*Context](64*middleware.KB),
			middleware.SessionWithConfig[*Context](middleware.SessionConfig[*Context]{
				Skip:      func(ctx *Context) bool { return isProbe(ctx.Request().URL.Path) },
				Policy:    policy,
				Transport: transport,
				Logger:    app.logger,
			}),
		),
	)
	app.routes()

	app.logger.Info("session lab configured",
		logger.Variant(policy.Name()),
		slog.String("store", cfg.Store),
	)

	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch strings.ToLower(strings.TrimSpace(a.config.Store)) {
	case StoreMemory, "":
		a.store = session.NewMemoryStore()
	case StoreRedis:
		client, err := redis.Connect(ctx, a.config.Redis)
		if err != nil {
			return err
		}
		var opts []redisstore.Option
		if !strings.EqualFold(a.config.Binding.Variant, binding.PermissiveName) && a.config.Session.Timeout > 0 {
			opts = append(opts, redisstore.WithTTL(a.config.Session.Timeout))
		}
		a.redis = client
		a.store = redisstore.New(client, opts...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, a.config.Store)
	}
	return nil
}

func (a *App) routes() {
	a.router.Get("/{$}", a.home)
	a.router.Get("/login", a.loginForm)
	a.router.Post("/login", a.loginSubmit)
	a.router.Get("/logout", a.logout)
	a.router.Get(healthPath, health.Liveness[*Context])

	var checks []health.Check
	if a.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Fn: redis.Healthcheck(a.redis)})
	}
	a.router.Get(readyPath, health.Readiness[*Context](a.logger, checks...))
}

func isProbe(path string) bool {
	return path == healthPath || path == readyPath
}

// Handler returns the HTTP handler serving the lab routes.
func (a *App) Handler() http.Handler {
	return a.router
}

// Policy returns the active binding policy.
func (a *App) Policy() binding.Policy {
	return a.policy
}

// Addr returns the listen address, resolved once the server has started.
func (a *App) Addr() string {
	return a.server.Addr()
}

// Run serves HTTP until ctx is canceled. The expiring policy also runs the
// background sweeper. Resources opened by NewApp are released on return.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.router))

	if a.policy.Name() == binding.StrictName {
		g.Go(session.Cleanup(ctx, session.CleanupConfig{
			Store:    a.store,
			Timeout:  a.config.Session.Timeout,
			Interval: a.config.Session.CleanupInterval,
			Logger:   a.logger,
		}))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) close() {
	if a.redis == nil {
		return
	}
	if err := a.redis.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		a.logger.Error("failed to close redis client", logger.Error(err))
	}
	a.redis = nil
}

// WithConfig replaces environment loading with cfg.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		app.configured = true
		return nil
	}
}

func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return fmt.Errorf("%w: logger", ErrNilOption)
		}
		app.logger = l
		return nil
	}
}

// WithStore overrides the store selected by Config.Store.
func WithStore(store session.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return fmt.Errorf("%w: store", ErrNilOption)
		}
		app.store = store
		return nil
	}
}

func WithVerifier(v credentials.Verifier) AppOption {
	return func(app *App) error {
		if v == nil {
			return fmt.Errorf("%w: verifier", ErrNilOption)
		}
		app.verifier = v
		return nil
	}
}
