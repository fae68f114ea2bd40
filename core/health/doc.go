// Package health provides probe handlers for the lab server.
//
//	r.Get("/healthz", health.Liveness[*lab.Context])
//	r.Get("/readyz", health.Readiness[*lab.Context](logger,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
//
// Liveness never touches dependencies. Readiness runs every check
// concurrently and answers 503 if any of them fails.
package health
