package app

import (
	"strings"
	"testing"

	"licensegate/pkg/config"
)

func validEff() config.EffectiveConfigResult {
	return config.EffectiveConfigResult{
		Config: &config.Config{
			Oracle:   config.OracleConfig{URL: "https://payhip.com/api/v2/license/verify"},
			Products: []config.Product{{ID: "P", Secret: "sk"}},
		},
		DBPath: "./db",
	}
}

func TestValidateConfigAccepts(t *testing.T) {
	if err := validateConfig(validEff()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.EffectiveConfigResult)
		want   string
	}{
		{"empty db path", func(e *config.EffectiveConfigResult) { e.DBPath = "" }, "database path"},
		{"empty oracle url", func(e *config.EffectiveConfigResult) { e.Config.Oracle.URL = "" }, "oracle url"},
		{"no products", func(e *config.EffectiveConfigResult) { e.Config.Products = nil }, "no products"},
		{"product without secret", func(e *config.EffectiveConfigResult) { e.Config.Products[0].Secret = "" }, "has no secret"},
		{"tls cert without key", func(e *config.EffectiveConfigResult) { e.Config.Server.TLS.CertFile = "cert.pem" }, "incomplete TLS"},
		{"discord without token", func(e *config.EffectiveConfigResult) { e.Config.Discord.Enabled = true }, "no token"},
		{"discord without role", func(e *config.EffectiveConfigResult) {
			e.Config.Discord.Enabled = true
			e.Config.Discord.Token = "tok"
			e.Config.Discord.GuildID = "g"
		}, "role_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eff := validEff()
			tc.mutate(&eff)
			err := validateConfig(eff)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}
