// Package router provides a generic HTTP router built on http.ServeMux with
// typed request contexts, middleware chains and centralized error handling.
//
// Patterns use the net/http syntax: an optional method, an optional host and
// a path with {name} wildcards. Register exact-root routes with "/{$}".
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.RequestID[*router.Context]())
//
//	r.Get("/{$}", home)
//	r.Method("/login", login, http.MethodGet, http.MethodPost)
//	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
//		return response.String("user " + ctx.Param("id"))
//	})
//
//	http.ListenAndServe(":8080", r)
//
// # Custom Contexts
//
// Any type implementing handler.Context can be used. Non-default contexts need a factory:
//
//	r := router.New[*AppContext](
//		router.WithContextFactory(func(w http.ResponseWriter, r *http.Request) *AppContext {
//			return &AppContext{Context: router.NewContext(w, r)}
//		}),
//	)
//
// # Errors
//
// A handler that returns a nil response, a response that fails to render,
// an unmatched path (ErrNotFound), a known path with the wrong method
// (ErrMethodNotAllowed, Allow header set) and a recovered panic (PanicError)
// all reach the configured error handler. The default handler writes the
// error text with the status from a StatusCode() int method, or 500.
//
// Middleware must be registered with Use before any route; With and Group
// scope extra middleware to the routes registered through them.
package router
