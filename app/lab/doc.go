// Package lab wires the session fixation lab: a login page, a protected home
// page and logout, served under either binding policy.
//
//	app, err := lab.NewApp(ctx)
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx)
//
// Routes:
//
//	GET  /         home, redirects to /login without an authenticated session
//	GET  /login    login form
//	POST /login    credential check, redirects home on success
//	GET  /logout   destroys the session, redirects to /login
//	GET  /healthz  liveness
//	GET  /readyz   readiness, pings redis when the redis store is selected
package lab
