package main

import (
	"context"
	"time"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/app"
	"github.com/niksmo/onboarding/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	onboarding := app.New(sigCtx, cfg)

	onboarding.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	onboarding.Close(ctx)
}
