// Package response provides constructors for handler.Response values:
// plain text and HTML bodies, html/template rendering, redirects and
// structured HTTP errors.
//
// Handlers return responses instead of writing to the http.ResponseWriter
// directly, so middleware can decorate the render step:
//
//	func home(ctx *lab.Context) handler.Response {
//		if !authenticated(ctx) {
//			return response.Redirect("/login")
//		}
//		return response.TemplateName(pages, "index", data)
//	}
//
// # Errors
//
// Error propagates an error to the router's error handler. HTTPError carries a
// status code and a machine-readable code; ErrorHandler renders it as text:
//
//	return response.Error(response.ErrNotFound.WithMessage("no such page"))
//
// Errors that are not HTTPError but implement StatusCode() int keep their
// status. Anything else becomes 500 Internal Server Error.
package response
