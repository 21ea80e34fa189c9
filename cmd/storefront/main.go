package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rl1809/aura-kitchen/internal/config"
	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfg.Log
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = "warn"
	}
	log := config.NewLogger(logCfg)
	log.SetOutput(os.Stderr)

	app := &storefront.App{
		Out:        os.Stdout,
		Log:        log,
		APIURL:     cfg.Storefront.APIURL,
		Session:    cfg.Storefront.Session,
		SessionDir: cfg.Storefront.SessionDir,
		NewAPI:     storefront.DefaultAPI,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storefront.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		// submission failures were already explained to the user
		var verr *domain.ValidationError
		var serr *domain.SubmissionError
		var nerr *domain.NetworkError
		if !errors.As(err, &verr) && !errors.As(err, &serr) && !errors.As(err, &nerr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
