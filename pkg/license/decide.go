package license

import "strings"

// Decide computes the outcome of one redemption attempt from the oracle's
// verdict and the key's current binding record. It is a pure function: the
// coordinator is responsible for loading `existing` and for persisting the
// namespace bind when the outcome is accepted.
//
// Checks run in a fixed short-circuit order:
//
//  1. inputs present (key, product, namespace identity)
//  2. oracle verdict (not enabled -> invalid license)
//  3. product matches the record created at first bind
//  4. namespace slot free, or already held by this same identity
//
// UnknownProduct, ServerError and StoreError never originate here; they
// arise from the oracle adapter and the store, before or after this call.
func Decide(existing *Binding, productID string, id IdentityRef, v Verification) Outcome {
	if productID == "" || !validIdentity(id) {
		return Reject(ReasonMissingData)
	}
	if !v.Enabled {
		return Reject(ReasonInvalidLicense)
	}
	if existing == nil {
		return Accept(v.Buyer, true)
	}
	if existing.ProductID != productID {
		return Reject(ReasonProductMismatch)
	}
	bound, ok := existing.Bound(id.Namespace)
	switch {
	case !ok:
		return Accept(v.Buyer, true)
	case bound == id.ID:
		return Accept(v.Buyer, false)
	default:
		return Reject(ReasonConflict)
	}
}

func validIdentity(id IdentityRef) bool {
	return id.Namespace.Known() && strings.TrimSpace(id.ID) != ""
}
