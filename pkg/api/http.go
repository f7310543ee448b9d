// Package api exposes the game-facing verification endpoint. It speaks
// the legacy wire contract: every request, accepted or rejected, answers
// HTTP 200 with a JSON body carrying a success flag and a human-readable
// error string.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"licensegate/pkg/config"
	"licensegate/pkg/license"
	"licensegate/pkg/logger"
	"licensegate/pkg/redeem"
	"licensegate/pkg/utils"
)

// verifyRequest is the POST /verify body. Game clients are sloppy about
// number vs string ids, so the identity fields accept either.
type verifyRequest struct {
	LicenseKey   string `json:"licenseKey"`
	ProductID    string `json:"productId"`
	RobloxUserID any    `json:"robloxUserId"`
	CreatorType  string `json:"creatorType"`
	CreatorID    any    `json:"creatorId"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Buyer   string `json:"buyer,omitempty"`
	NewBind bool   `json:"newBind,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler mounts the verification routes onto a new router.
func Handler(co *redeem.Coordinator, rl config.RateLimitConfig) http.Handler {
	r := mux.NewRouter()
	r.Handle("/verify", rateLimitMiddleware(rl, http.HandlerFunc(makeVerify(co)))).Methods(http.MethodPost)
	return r
}

// makeVerify handles POST /verify.
func makeVerify(co *redeem.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.LogRequest(r)

		var req verifyRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeOutcome(w, license.Reject(license.ReasonMissingData))
			return
		}

		id, ok := identityFrom(req)
		if !ok {
			writeOutcome(w, license.Reject(license.ReasonMissingData))
			return
		}

		out := co.Redeem(r.Context(), redeem.Request{
			LicenseKey: req.LicenseKey,
			ProductID:  req.ProductID,
			Identity:   id,
			Source:     "api",
		})
		writeOutcome(w, out)
	}
}

// identityFrom maps the request body onto exactly one identity namespace.
// A roblox user id binds the game-account slot; a creator type plus id
// binds the creator slot, with the composite id keeping creator types
// from colliding.
func identityFrom(req verifyRequest) (license.IdentityRef, bool) {
	if uid := coerceID(req.RobloxUserID); uid != "" {
		return license.IdentityRef{Namespace: license.GameAccount, ID: uid}, true
	}
	cid := coerceID(req.CreatorID)
	if req.CreatorType != "" && cid != "" {
		return license.IdentityRef{Namespace: license.GameCreator, ID: req.CreatorType + ":" + cid}, true
	}
	return license.IdentityRef{}, false
}

func coerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func writeOutcome(w http.ResponseWriter, out license.Outcome) {
	resp := verifyResponse{Success: out.Accepted, Buyer: out.Buyer, NewBind: out.NewBind}
	if !out.Accepted {
		resp.Error = errorMessage(out.Reason)
	}
	_ = utils.JSONWrite(w, http.StatusOK, resp)
}

// errorMessage renders rejection reasons as the client-facing strings the
// legacy contract promises. Operational faults all collapse to a generic
// server error so internals never leak.
func errorMessage(r license.Reason) string {
	switch r {
	case license.ReasonMissingData:
		return "Missing data"
	case license.ReasonUnknownProduct:
		return "Unknown product"
	case license.ReasonInvalidLicense:
		return "Invalid license"
	case license.ReasonConflict:
		return "License already used"
	case license.ReasonProductMismatch:
		return "License belongs to a different product"
	default:
		return "Server error"
	}
}
