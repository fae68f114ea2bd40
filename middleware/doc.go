// Package middleware provides the HTTP middleware of the session lab: session
// resolution, request IDs, request logging and request body limits.
//
// All middleware follows the same pattern: a generic constructor with defaults,
// a WithConfig constructor for customization, an optional Skip function and
// context helpers for reading stored values.
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//		middleware.SessionMiddleware[*router.Context](policy, transport),
//	)
//
// # Session
//
// SessionMiddleware runs the binding policy before every route. Redirect
// outcomes are answered directly; otherwise the session is stored in the
// context and the handler decides. Handlers replace the outcome after a
// transition and the middleware writes the matching cookies:
//
//	func logout(ctx *router.Context) handler.Response {
//		sess := middleware.MustGetSession(ctx)
//		out, err := authService.Logout(ctx, sess.Current())
//		if err != nil {
//			return response.Error(err)
//		}
//		middleware.SetSession(ctx, out)
//		return response.Redirect("/login")
//	}
//
// # Request ID
//
// RequestID stores a UUID per request in the context and the X-Request-ID
// response header. RequestIDExtractor attaches it to log records:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
//
// # Logging
//
// Logging writes one record per request after rendering, with method, path,
// status, size and duration. Cookie and authorization headers are redacted
// when header logging is enabled.
//
// # Body Limit
//
// BodyLimit rejects requests whose Content-Length exceeds the limit with
// 413 and caps bodies of unknown length while they are read.
package middleware
