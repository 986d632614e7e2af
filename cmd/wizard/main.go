// Command wizard fills in and submits a registration from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/app"
	"github.com/niksmo/onboarding/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	cfg.LogLevel = max(cfg.LogLevel, slog.LevelError)

	onboarding := app.New(sigCtx, cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		onboarding.Close(ctx)
	}()

	tasker, seller, products := onboarding.Screens()
	w := newWizard(os.Stdin, os.Stdout, tasker, seller, products)

	done := make(chan error, 1)
	go func() { done <- w.run(sigCtx) }()

	var err error
	select {
	case err = <-done:
	case <-sigCtx.Done():
		err = errQuit
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errQuit), errors.Is(err, io.EOF):
		fmt.Println("\nProgress is saved, run the wizard again to continue.")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "wizard: %v\n", err)
		return 1
	}
}
