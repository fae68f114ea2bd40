package lab

import (
	"net/http"

	"github.com/dmitrymomot/sessionlab/core/router"
)

// Context is the request context passed to lab handlers.
type Context struct {
	*router.Context
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Context: router.NewContext(w, r)}
}
