// Package redeem sequences one redemption attempt: oracle lookup, store
// read, pure decision, store write — as a single unit under a per-key
// lock, so concurrent requests for the same license key cannot both win a
// first-time bind.
package redeem

import (
	"context"
	"errors"
	"strings"
	"time"

	"licensegate/pkg/license"
	"licensegate/pkg/logger"
	"licensegate/pkg/oracle"
	"licensegate/pkg/store"
)

// Request is the canonical redemption request both front-ends produce.
type Request struct {
	LicenseKey string
	ProductID  string
	Identity   license.IdentityRef
	// Source labels the originating front-end for metrics ("api", "bot").
	Source string
}

// Coordinator is the only entry point front-ends call.
type Coordinator struct {
	oracle oracle.Client
	locks  *keyLocks
}

// New builds a coordinator over the given oracle client. Persistence goes
// through the store package, which must be opened before Redeem is called.
func New(o oracle.Client) *Coordinator {
	return &Coordinator{oracle: o, locks: newKeyLocks()}
}

// Redeem runs one redemption attempt and always returns exactly one
// outcome; transport and storage faults are converted, never propagated.
// The oracle call happens inside the per-key critical section: that keeps
// two same-key requests from both observing "unbound" before either
// writes, and same-key oracle calls are idempotent lookups anyway.
func (c *Coordinator) Redeem(ctx context.Context, req Request) license.Outcome {
	out := c.redeem(ctx, req)
	redemptions.WithLabelValues(sourceLabel(req.Source), outcomeLabel(out)).Inc()
	return out
}

func (c *Coordinator) redeem(ctx context.Context, req Request) license.Outcome {
	if strings.TrimSpace(req.LicenseKey) == "" || strings.TrimSpace(req.ProductID) == "" ||
		!req.Identity.Namespace.Known() || strings.TrimSpace(req.Identity.ID) == "" {
		return license.Reject(license.ReasonMissingData)
	}

	release := c.locks.acquire(req.LicenseKey)
	defer release()

	start := time.Now()
	v, err := c.oracle.CheckLicense(ctx, req.LicenseKey, req.ProductID)
	oracleLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, oracle.ErrUnknownProduct) {
			return license.Reject(license.ReasonUnknownProduct)
		}
		logger.Error("oracle_check_failed", "product", req.ProductID, "error", err)
		return license.Reject(license.ReasonServerError)
	}

	existing, err := store.GetBinding(req.LicenseKey)
	if err != nil {
		logger.Error("binding_read_failed", "error", err)
		return license.Reject(license.ReasonStoreError)
	}

	out := license.Decide(existing, req.ProductID, req.Identity, v)
	if !out.Accepted {
		logRejection(req, out)
		return out
	}

	if _, err := store.CreateOrUpdate(req.LicenseKey, req.ProductID, req.Identity.Namespace, req.Identity.ID); err != nil {
		logger.Error("binding_write_failed", "product", req.ProductID, "error", err)
		return license.Reject(license.ReasonStoreError)
	}
	logger.Info("redemption_accepted",
		"product", req.ProductID,
		"namespace", string(req.Identity.Namespace),
		"source", req.Source,
		"new_bind", out.NewBind,
	)
	return out
}

func logRejection(req Request, out license.Outcome) {
	// expected user-facing rejections are info; operational faults were
	// already logged at error where they occurred
	logger.Info("redemption_rejected",
		"product", req.ProductID,
		"namespace", string(req.Identity.Namespace),
		"source", req.Source,
		"reason", string(out.Reason),
	)
}

func sourceLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func outcomeLabel(out license.Outcome) string {
	if out.Accepted {
		return "accepted"
	}
	return string(out.Reason)
}
