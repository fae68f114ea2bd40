// Package server wraps http.Server with graceful shutdown and an
// errgroup-compatible lifecycle.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Run starts listening, and on context cancellation shuts the server down
// within the configured timeout (SERVER_SHUTDOWN_TIMEOUT, 30s by default).
// Addr reports the bound address, which is useful with ":0" in tests.
package server
