package health

import (
	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/response"
)

// Liveness reports that the process is serving requests.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ok")
}
