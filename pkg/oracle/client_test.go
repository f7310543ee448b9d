package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var secrets = map[string]string{"CraftingSystem": "sk_test"}

func TestCheckLicenseEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("license_key"); got != "ABC-123" {
			t.Errorf("license_key query = %q", got)
		}
		if got := r.Header.Get("product-secret-key"); got != "sk_test" {
			t.Errorf("secret header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"enabled":true,"buyer_email":"a@x.com"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	v, err := c.CheckLicense(context.Background(), "ABC-123", "CraftingSystem")
	if err != nil {
		t.Fatalf("CheckLicense: %v", err)
	}
	if !v.Enabled || v.Buyer != "a@x.com" {
		t.Fatalf("unexpected verification: %+v", v)
	}
}

func TestCheckLicenseDisabledIsNegativeNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"enabled":false}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	v, err := c.CheckLicense(context.Background(), "K", "CraftingSystem")
	if err != nil {
		t.Fatalf("disabled key must not be an error: %v", err)
	}
	if v.Enabled {
		t.Fatalf("expected disabled")
	}
}

func TestCheckLicenseAbsentPayloadIsNegative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	v, err := c.CheckLicense(context.Background(), "K", "CraftingSystem")
	if err != nil || v.Enabled {
		t.Fatalf("absent payload must be a definite negative; v=%+v err=%v", v, err)
	}
}

func TestCheckLicenseNotFoundIsNegative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	v, err := c.CheckLicense(context.Background(), "K", "CraftingSystem")
	if err != nil || v.Enabled {
		t.Fatalf("404 must be a definite negative; v=%+v err=%v", v, err)
	}
}

func TestCheckLicenseServerFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	if _, err := c.CheckLicense(context.Background(), "K", "CraftingSystem"); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestCheckLicenseMalformedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	if _, err := c.CheckLicense(context.Background(), "K", "CraftingSystem"); err == nil {
		t.Fatalf("expected error on malformed body")
	}
}

func TestCheckLicenseUnknownProductSkipsNetwork(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, time.Second)
	_, err := c.CheckLicense(context.Background(), "K", "NoSuchProduct")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct; got %v", err)
	}
	if atomic.LoadInt64(&hits) != 0 {
		t.Fatalf("network was touched for unknown product")
	}
}

func TestCheckLicenseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, secrets, 20*time.Millisecond)
	if _, err := c.CheckLicense(context.Background(), "K", "CraftingSystem"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
