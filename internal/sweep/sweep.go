// Package sweep runs the periodic binding census: it walks the store on a
// cron schedule and logs aggregate counts and disk usage so operators can
// watch binding growth without querying the database.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"

	"licensegate/pkg/config"
	"licensegate/pkg/logger"
	"licensegate/pkg/store"
)

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult) (context.CancelFunc, error) {
	sw := eff.Config.Sweep
	if !sw.Enabled {
		logger.Info("sweep_disabled")
		return func() {}, nil
	}

	cronExpr := sw.Cron
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweep_invalid_cron", "cron", sw.Cron)
		return nil, fmt.Errorf("invalid sweep cron expression: %s", sw.Cron)
	}

	logger.Info("sweep_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// runScheduler computes the next tick for the configured cron expression
// with gronx and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			RunOnce()
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		}
	}
}

// RunOnce performs a single census pass. Exposed so admin triggers and
// tests can invoke a sweep on demand.
func RunOnce() {
	stats, err := store.BindingStats()
	if err != nil {
		logger.Error("sweep_stats_failed", "error", err)
		return
	}
	args := []any{
		"records", stats.Records,
		"disk", humanize.Bytes(store.DiskUsage()),
	}
	for product, n := range stats.PerProduct {
		args = append(args, "product_"+product, n)
	}
	for ns, n := range stats.PerNamespace {
		args = append(args, "namespace_"+string(ns), n)
	}
	logger.Info("sweep_census", args...)
}
