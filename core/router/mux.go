package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/sessionlab/core/handler"
)

var knownMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// table is the route storage shared by a router and its inline groups.
type table struct {
	mu      sync.RWMutex
	serve   *http.ServeMux
	routes  []Route
	defined bool
}

// mux is the private implementation of Router interface.
type mux[C handler.Context] struct {
	table        *table
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	inline       bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		table:        &table{serve: http.NewServeMux()},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			// Only the default *Context works without a factory
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fallback, pattern := m.table.serve.Handler(r)
	if pattern != "" {
		m.table.serve.ServeHTTP(w, r)
		return
	}

	// No route matched: ask the ServeMux what it would answer and
	// translate that into an error for the error handler.
	probe := &probeWriter{}
	fallback.ServeHTTP(probe, r)

	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	switch probe.status {
	case http.StatusMethodNotAllowed:
		if allow := probe.Header().Get("Allow"); allow != "" {
			ww.Header().Set("Allow", allow)
		}
		m.errorHandler(ctx, statusError{err: ErrMethodNotAllowed, status: http.StatusMethodNotAllowed})
	case http.StatusMovedPermanently, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		// Path cleaning and trailing-slash redirects
		fallback.ServeHTTP(w, r)
	default:
		m.errorHandler(ctx, statusError{err: ErrNotFound, status: http.StatusNotFound})
	}
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !slices.Contains(knownMethods, method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.table.mu.RLock()
	defined := m.table.defined
	m.table.mu.RUnlock()

	if defined && !m.inline {
		panic("sessionlab: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	chain := make([]handler.Middleware[C], 0, len(m.middlewares)+len(middlewares))
	chain = append(chain, m.middlewares...)
	chain = append(chain, middlewares...)

	return &mux[C]{
		table:        m.table,
		middlewares:  chain,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
		inline:       true,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes in registration order.
func (m *mux[C]) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()
	return slices.Clone(m.table.routes)
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if fn == nil || !strings.HasPrefix(stripHost(pattern), "/") || strings.ContainsAny(pattern, " \t") {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}

	full := pattern
	if method != "" {
		full = method + " " + pattern
	}

	h := chain(m.middlewares, fn)

	m.table.mu.Lock()
	defer m.table.mu.Unlock()
	m.table.serve.Handle(full, m.adapt(h))
	m.table.routes = append(m.table.routes, Route{Method: method, Pattern: pattern})
	m.table.defined = true
}

// adapt turns a typed handler into an http.Handler that builds the context,
// renders the response and routes every failure to the error handler.
func (m *mux[C]) adapt(h handler.HandlerFunc[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.newContext(ww, r)

		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{
					value: p,
					stack: debug.Stack(),
				}

				if ww.Written() {
					// Can't send error response, just log the panic
					m.logger.Error("panic after response written",
						"value", panicErr.value,
						"stack", string(panicErr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		response := h(ctx)
		if response == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		if err := response(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	})
}

// chain wraps fn with middlewares so the first middleware runs outermost.
func chain[C handler.Context](middlewares []handler.Middleware[C], fn handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

// stripHost removes an optional host prefix from a ServeMux pattern.
func stripHost(pattern string) string {
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		return pattern[i:]
	}
	return pattern
}
