package config

import (
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
)

// EffectiveConfigResult is the fully merged startup configuration: file
// values overridden by env, overridden by explicitly set flags.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	// Source summarizes where values came from ("flags", "env", "config").
	Source string
}

// ParseCommandFlags defines and parses command-line flags and returns
// their values along with a map indicating which were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and LICENSEGATE_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("LICENSEGATE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// LoadEnvOverrides applies environment overrides onto cfg and reports
// whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("LICENSEGATE_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("LICENSEGATE_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("LICENSEGATE_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("LICENSEGATE_DB_PATH"); v != "" {
		envUsed = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("LICENSEGATE_ORACLE_URL"); v != "" {
		envUsed = true
		cfg.Oracle.URL = v
	}
	if v := os.Getenv("LICENSEGATE_ORACLE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Oracle.TimeoutMS = n
		}
	}
	// LICENSEGATE_PRODUCT_SECRETS=ProductA=sk_a,ProductB=sk_b
	// replaces the whole products table, preserving the listed order
	if v := os.Getenv("LICENSEGATE_PRODUCT_SECRETS"); v != "" {
		envUsed = true
		cfg.Products = nil
		for _, pair := range strings.Split(v, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			id, secret, ok := strings.Cut(pair, "=")
			if !ok || id == "" {
				continue
			}
			cfg.Products = append(cfg.Products, Product{ID: strings.TrimSpace(id), Secret: strings.TrimSpace(secret)})
		}
	}
	if v := os.Getenv("LICENSEGATE_DISCORD_TOKEN"); v != "" {
		envUsed = true
		cfg.Discord.Token = v
		cfg.Discord.Enabled = true
	}
	if v := os.Getenv("LICENSEGATE_DISCORD_GUILD"); v != "" {
		envUsed = true
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("LICENSEGATE_DISCORD_ROLE"); v != "" {
		envUsed = true
		cfg.Discord.RoleID = v
	}
	if v := os.Getenv("LICENSEGATE_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("LICENSEGATE_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if c := os.Getenv("LICENSEGATE_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("LICENSEGATE_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}
	if v := os.Getenv("LICENSEGATE_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective loads the config file (missing file yields an empty
// config), applies env overrides, then applies explicitly set flags.
func LoadEffective(cfgPath, addrFlag, dbFlag string, setFlags map[string]bool) EffectiveConfigResult {
	cfg, err := Load(cfgPath)
	fileUsed := err == nil
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)

	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrFlag
	}
	dbPath := cfg.Server.DBPath
	if setFlags["db"] || dbPath == "" {
		dbPath = dbFlag
	}

	var srcs []string
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if fileUsed {
		srcs = append(srcs, "config")
	}
	return EffectiveConfigResult{Config: cfg, Addr: addr, DBPath: dbPath, Source: strings.Join(srcs, ", ")}
}
