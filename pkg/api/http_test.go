package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"licensegate/pkg/config"
	"licensegate/pkg/license"
	"licensegate/pkg/logger"
	"licensegate/pkg/oracle"
	"licensegate/pkg/redeem"
	"licensegate/pkg/store"
)

type oracleFunc func(ctx context.Context, key, product string) (license.Verification, error)

func (f oracleFunc) CheckLicense(ctx context.Context, key, product string) (license.Verification, error) {
	return f(ctx, key, product)
}

func newTestHandler(t *testing.T, o oracle.Client) http.Handler {
	t.Helper()
	logger.Init("error")
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return Handler(redeem.New(o), config.RateLimitConfig{})
}

func postVerify(t *testing.T, h http.Handler, body string) verifyResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp verifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestVerifySuccess(t *testing.T) {
	h := newTestHandler(t, oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		return license.Verification{Enabled: true, Buyer: "b@x.com"}, nil
	}))

	resp := postVerify(t, h, `{"licenseKey":"K1","productId":"Widget","robloxUserId":12345}`)
	if !resp.Success || resp.Buyer != "b@x.com" || !resp.NewBind {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// repeat from the same numeric id is an idempotent accept
	again := postVerify(t, h, `{"licenseKey":"K1","productId":"Widget","robloxUserId":"12345"}`)
	if !again.Success || again.NewBind {
		t.Fatalf("repeat must accept without newBind: %+v", again)
	}
}

func TestVerifyMissingData(t *testing.T) {
	h := newTestHandler(t, oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		t.Fatal("oracle must not be called on missing data")
		return license.Verification{}, nil
	}))

	for _, body := range []string{
		`{"productId":"Widget","robloxUserId":1}`,
		`{"licenseKey":"K","productId":"Widget"}`,
		`{"licenseKey":"K","productId":"Widget","creatorType":"group"}`,
		`not json`,
	} {
		resp := postVerify(t, h, body)
		if resp.Success || resp.Error != "Missing data" {
			t.Fatalf("body %q: %+v", body, resp)
		}
	}
}

func TestVerifyConflictMessage(t *testing.T) {
	h := newTestHandler(t, oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		return license.Verification{Enabled: true}, nil
	}))

	if resp := postVerify(t, h, `{"licenseKey":"K","productId":"P","robloxUserId":"u1"}`); !resp.Success {
		t.Fatalf("seed bind failed: %+v", resp)
	}
	resp := postVerify(t, h, `{"licenseKey":"K","productId":"P","robloxUserId":"u2"}`)
	if resp.Success || resp.Error != "License already used" {
		t.Fatalf("expected conflict message: %+v", resp)
	}
}

func TestVerifyInvalidLicense(t *testing.T) {
	h := newTestHandler(t, oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		return license.Verification{Enabled: false}, nil
	}))

	resp := postVerify(t, h, `{"licenseKey":"NOPE","productId":"P","robloxUserId":"u1"}`)
	if resp.Success || resp.Error != "Invalid license" {
		t.Fatalf("expected invalid license: %+v", resp)
	}
}

func TestVerifyCreatorIdentity(t *testing.T) {
	h := newTestHandler(t, oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		return license.Verification{Enabled: true}, nil
	}))

	resp := postVerify(t, h, `{"licenseKey":"K","productId":"P","creatorType":"group","creatorId":99}`)
	if !resp.Success {
		t.Fatalf("creator bind failed: %+v", resp)
	}
	b, err := store.GetBinding("K")
	if err != nil || b == nil {
		t.Fatalf("binding missing: %v", err)
	}
	if got := b.Bindings[license.GameCreator]; got != "group:99" {
		t.Fatalf("creator identity = %q", got)
	}

	// a different creator type with the same raw id must not collide
	other := postVerify(t, h, `{"licenseKey":"K","productId":"P","creatorType":"user","creatorId":99}`)
	if other.Success || other.Error != "License already used" {
		t.Fatalf("expected conflict for other creator type: %+v", other)
	}
}

func TestVerifyRateLimit(t *testing.T) {
	logger.Init("error")
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	o := oracleFunc(func(ctx context.Context, key, product string) (license.Verification, error) {
		return license.Verification{Enabled: true}, nil
	})
	h := Handler(redeem.New(o), config.RateLimitConfig{RPS: 1, Burst: 2})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"licenseKey":"K","productId":"P","robloxUserId":"u1"}`))
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests rejected: %v", codes)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst: %v", codes)
	}
}
