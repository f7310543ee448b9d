// Package oracle talks to the external licensing service that holds ground
// truth on key validity and purchaser metadata. The engine treats it as an
// untrusted, possibly slow, possibly failing dependency: one bounded
// request per call, no retries, no caching.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"licensegate/pkg/license"
)

// ErrUnknownProduct means no verification secret is configured for the
// requested product; the adapter fails fast without touching the network.
var ErrUnknownProduct = errors.New("no verification secret for product")

// Client answers whether a license key is valid for a product.
type Client interface {
	CheckLicense(ctx context.Context, licenseKey, productID string) (license.Verification, error)
}

// HTTPClient verifies keys against a Payhip-style license API: GET with a
// license_key query parameter and a per-product secret header.
type HTTPClient struct {
	verifyURL string
	secrets   map[string]string
	httpc     *http.Client
}

// NewHTTPClient builds a client for the given verify endpoint. The
// product-to-secret table is injected once at startup and never mutated.
func NewHTTPClient(verifyURL string, secrets map[string]string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	m := make(map[string]string, len(secrets))
	for k, v := range secrets {
		m[k] = v
	}
	return &HTTPClient{
		verifyURL: verifyURL,
		secrets:   m,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// CheckLicense issues exactly one verification request. A disabled or
// unknown key is a definite negative, not an error; transport failures,
// unexpected statuses and malformed payloads are errors.
func (c *HTTPClient) CheckLicense(ctx context.Context, licenseKey, productID string) (license.Verification, error) {
	secret, ok := c.secrets[productID]
	if !ok {
		return license.Verification{}, ErrUnknownProduct
	}

	u, err := url.Parse(c.verifyURL)
	if err != nil {
		return license.Verification{}, fmt.Errorf("invalid verify url: %w", err)
	}
	q := u.Query()
	q.Set("license_key", licenseKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return license.Verification{}, err
	}
	req.Header.Set("product-secret-key", secret)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return license.Verification{}, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// the oracle does not know this key at all
		return license.Verification{Enabled: false}, nil
	case resp.StatusCode != http.StatusOK:
		return license.Verification{}, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var out struct {
		Data *struct {
			Enabled    bool   `json:"enabled"`
			BuyerEmail string `json:"buyer_email"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return license.Verification{}, fmt.Errorf("malformed oracle response: %w", err)
	}
	if out.Data == nil {
		// absent payload is a definite negative
		return license.Verification{Enabled: false}, nil
	}
	return license.Verification{Enabled: out.Data.Enabled, Buyer: out.Data.BuyerEmail}, nil
}
