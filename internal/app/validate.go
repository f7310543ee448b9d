package app

import (
	"fmt"
	"os"

	"licensegate/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	cfg := eff.Config

	if eff.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, LICENSEGATE_DB_PATH env, or server.db_path in config")
	}

	if cfg.Oracle.URL == "" {
		return fmt.Errorf("oracle url is empty: set oracle.url in config or LICENSEGATE_ORACLE_URL")
	}

	if len(cfg.Products) == 0 {
		return fmt.Errorf("no products configured: set products in config or LICENSEGATE_PRODUCT_SECRETS")
	}
	for _, p := range cfg.Products {
		if p.ID == "" {
			return fmt.Errorf("product with empty id in config")
		}
		if p.Secret == "" {
			return fmt.Errorf("product %s has no secret", p.ID)
		}
	}

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if cfg.Discord.Enabled {
		if cfg.Discord.Token == "" {
			return fmt.Errorf("discord enabled but no token: set discord.token or LICENSEGATE_DISCORD_TOKEN")
		}
		if cfg.Discord.GuildID == "" || cfg.Discord.RoleID == "" {
			return fmt.Errorf("discord enabled but guild_id or role_id is missing")
		}
	}

	return nil
}
