// Package bot implements the chat front-end: users redeem a license key
// with a command, the key is bound to their chat account, and a guild
// role is granted on success.
package bot

import (
	"context"
	"fmt"

	"licensegate/pkg/license"
	"licensegate/pkg/logger"
	"licensegate/pkg/redeem"
)

// RoleGranter grants the configured guild role to a user after a
// successful redemption.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID string) error
}

// Reply is the user-visible result of a chat redemption.
type Reply struct {
	Message string
	Granted bool
}

// Redeemer resolves which product a bare key belongs to by trying the
// configured products in order, then binds the key to the chat account.
type Redeemer struct {
	co       *redeem.Coordinator
	products []string
	granter  RoleGranter
}

// NewRedeemer builds a chat redeemer over the coordinator. products is
// the ordered list of product ids to try for a bare key.
func NewRedeemer(co *redeem.Coordinator, products []string, granter RoleGranter) *Redeemer {
	return &Redeemer{co: co, products: products, granter: granter}
}

// Redeem tries the key against each product in order. A key that is not
// valid for one product may be valid for the next, so invalid-license
// results keep the loop going; any other rejection is definitive for the
// key itself and stops it.
func (r *Redeemer) Redeem(ctx context.Context, licenseKey, userID string) Reply {
	if licenseKey == "" {
		return Reply{Message: "Please provide a license key."}
	}
	if len(r.products) == 0 {
		return Reply{Message: "No products are configured. Contact an administrator."}
	}

	var last license.Outcome
	for _, product := range r.products {
		out := r.co.Redeem(ctx, redeem.Request{
			LicenseKey: licenseKey,
			ProductID:  product,
			Identity:   license.IdentityRef{Namespace: license.ChatAccount, ID: userID},
			Source:     "bot",
		})
		if out.Accepted {
			return r.accepted(ctx, product, userID, out)
		}
		last = out
		if out.Reason == license.ReasonInvalidLicense || out.Reason == license.ReasonUnknownProduct {
			continue
		}
		break
	}
	return Reply{Message: rejectionMessage(last.Reason)}
}

func (r *Redeemer) accepted(ctx context.Context, product, userID string, out license.Outcome) Reply {
	if r.granter != nil {
		if err := r.granter.GrantRole(ctx, userID); err != nil {
			logger.Error("role_grant_failed", "user", userID, "error", err)
			return Reply{Message: fmt.Sprintf("License verified for %s, but granting your role failed. Please contact an administrator.", product)}
		}
	}
	if out.NewBind {
		return Reply{Message: fmt.Sprintf("License verified for %s. Role granted, welcome!", product), Granted: true}
	}
	return Reply{Message: fmt.Sprintf("License already verified for %s. Role granted.", product), Granted: true}
}

func rejectionMessage(r license.Reason) string {
	switch r {
	case license.ReasonConflict:
		return "That license key is already in use by another account."
	case license.ReasonProductMismatch:
		return "That license key belongs to a different product."
	case license.ReasonMissingData:
		return "Please provide a license key."
	case license.ReasonServerError, license.ReasonStoreError:
		return "Something went wrong on our side, please try again later."
	default:
		return "That license key is not valid."
	}
}
