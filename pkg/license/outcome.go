package license

// Reason classifies why a redemption attempt was rejected. Expected
// user-facing rejections and operational faults share the taxonomy; the
// front-ends render each one distinctly so a user can tell "wrong key"
// from "already used by someone else" from "try again later".
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMissingData     Reason = "missing_data"
	ReasonUnknownProduct  Reason = "unknown_product"
	ReasonInvalidLicense  Reason = "invalid_license"
	ReasonServerError     Reason = "server_error"
	ReasonConflict        Reason = "conflicting_binding"
	ReasonProductMismatch Reason = "product_mismatch"
	ReasonStoreError      Reason = "store_error"
)

// Operational reports whether the reason is an operator-actionable fault
// rather than an expected user-facing rejection.
func (r Reason) Operational() bool {
	return r == ReasonServerError || r == ReasonStoreError
}

// Outcome is the single result of one redemption attempt.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`
	// Buyer carries purchaser metadata from the oracle on accept.
	Buyer string `json:"buyer,omitempty"`
	// NewBind is true when this attempt set the namespace slot for the
	// first time, false on idempotent re-verification.
	NewBind bool `json:"new_bind,omitempty"`
}

// Accept builds an accepted outcome.
func Accept(buyer string, newBind bool) Outcome {
	return Outcome{Accepted: true, Buyer: buyer, NewBind: newBind}
}

// Reject builds a rejected outcome with the given reason.
func Reject(r Reason) Outcome {
	return Outcome{Accepted: false, Reason: r}
}
