// Package app wires the service together: config validation, store,
// oracle client, redemption coordinator, HTTP server, chat bot and the
// sweep scheduler, with one graceful shutdown path for all of them.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"licensegate/internal/sweep"
	"licensegate/pkg/banner"
	"licensegate/pkg/bot"
	"licensegate/pkg/config"
	"licensegate/pkg/logger"
	"licensegate/pkg/oracle"
	"licensegate/pkg/redeem"
	"licensegate/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff     config.EffectiveConfigResult
	version string

	co  *redeem.Coordinator
	bot *bot.Bot
	srv *http.Server
}

// New validates the effective config and initializes resources that do
// not require a running context. It does not connect the bot or start
// the HTTP server; call Run to start those and block until shutdown.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}
	cfg := eff.Config

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	timeout := time.Duration(cfg.Oracle.TimeoutMS) * time.Millisecond
	oc := oracle.NewHTTPClient(cfg.Oracle.URL, cfg.SecretMap(), timeout)
	co := redeem.New(oc)

	a := &App{eff: eff, version: version, co: co}

	if cfg.Discord.Enabled {
		b, err := bot.New(cfg.Discord, co, cfg.ProductIDs())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.bot = b
	}
	return a, nil
}

// Run starts the sweep scheduler, the chat bot and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	banner.PrintWithEff(a.eff, a.version)

	sweepCancel, err := sweep.Start(ctx, a.eff)
	if err != nil {
		return err
	}
	defer sweepCancel()

	if a.bot != nil {
		if err := a.bot.Start(ctx); err != nil {
			return err
		}
	}

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Warn("http_shutdown_failed", "error", err)
		}
	}
	if a.bot != nil {
		if err := a.bot.Close(); err != nil {
			logger.Warn("bot_close_failed", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Warn("store_close_failed", "error", err)
	}
	logger.Info("shutdown_complete")
}
