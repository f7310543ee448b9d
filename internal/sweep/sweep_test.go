package sweep

import (
	"context"
	"testing"

	"licensegate/pkg/config"
	"licensegate/pkg/license"
	"licensegate/pkg/logger"
	"licensegate/pkg/store"
)

func TestStartDisabled(t *testing.T) {
	logger.Init("error")
	eff := config.EffectiveConfigResult{Config: &config.Config{}}
	cancel, err := Start(context.Background(), eff)
	if err != nil {
		t.Fatalf("disabled sweep must not error: %v", err)
	}
	cancel()
}

func TestStartRejectsBadCron(t *testing.T) {
	logger.Init("error")
	eff := config.EffectiveConfigResult{Config: &config.Config{
		Sweep: config.SweepConfig{Enabled: true, Cron: "not a cron"},
	}}
	if _, err := Start(context.Background(), eff); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestRunOnceWithOpenStore(t *testing.T) {
	logger.Init("error")
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.CreateOrUpdate("K1", "P", license.GameAccount, "u1"); err != nil {
		t.Fatalf("seed binding: %v", err)
	}

	// must not panic or error-log its way into a bad state
	RunOnce()

	stats, err := store.BindingStats()
	if err != nil {
		t.Fatalf("BindingStats: %v", err)
	}
	if stats.Records != 1 || stats.PerProduct["P"] != 1 {
		t.Fatalf("stats after sweep: %+v", stats)
	}
}
