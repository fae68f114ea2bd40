// Package handler defines the types shared by the router, the response
// constructors and the middleware: a request Context, a deferred Response,
// typed handlers and middleware.
//
//	type Response func(w http.ResponseWriter, r *http.Request) error
//	type HandlerFunc[C Context] func(ctx C) Response
//	type ErrorHandler[C Context] func(ctx C, err error)
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// A handler decides what to answer and returns a Response; the router renders
// it later. Middleware can therefore act on both sides of the handler, for
// example setting cookies after the handler ran but before the body is written:
//
//	func Stamp[C handler.Context]() handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				resp := next(ctx)
//				return func(w http.ResponseWriter, r *http.Request) error {
//					w.Header().Set("X-Stamp", "1")
//					return resp(w, r)
//				}
//			}
//		}
//	}
//
// Context extends context.Context with the HTTP request, the response writer,
// path parameters and request-scoped values. router.Context is the default
// implementation.
package handler
