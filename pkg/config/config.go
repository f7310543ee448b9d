package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. It is loaded once at startup,
// merged with env overrides and flags, and passed down by injection;
// nothing reads configuration ambiently after startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Products []Product      `yaml:"products"`
	Discord  DiscordConfig  `yaml:"discord"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

// ServerConfig holds http, storage and tls settings.
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	DBPath  string    `yaml:"db_path"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// OracleConfig points at the external license verification API.
type OracleConfig struct {
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Product maps a sellable product id to its oracle verification secret.
// The list order is meaningful: the chat front-end tries products in this
// order when discovering which product a key belongs to.
type Product struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

// DiscordConfig holds the chat-platform bot credentials and role grant.
type DiscordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	GuildID string `yaml:"guild_id"`
	RoleID  string `yaml:"role_id"`
	// Prefix for the plain-message fallback command, default "!redeem".
	CommandPrefix string `yaml:"command_prefix"`
}

// SecurityConfig holds rate limiting for the verification endpoint.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket; zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SweepConfig controls the periodic binding stats job.
type SweepConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// SecretMap returns the product->secret table for the oracle adapter.
func (c *Config) SecretMap() map[string]string {
	out := make(map[string]string, len(c.Products))
	for _, p := range c.Products {
		out[p.ID] = p.Secret
	}
	return out
}

// ProductIDs returns product ids in configured order.
func (c *Config) ProductIDs() []string {
	out := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, p.ID)
	}
	return out
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
