// Command sessionlab serves the session fixation lab.
//
// SESSION_VARIANT selects the binding policy: "permissive" reproduces the
// fixation vulnerability, "strict" (default) defeats it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/sessionlab/app/lab"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "sessionlab:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app, err := lab.NewApp(ctx)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
