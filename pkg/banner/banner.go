package banner

import (
	"fmt"

	"licensegate/pkg/config"
)

const banner = `
██╗     ██╗ ██████╗███████╗███╗   ██╗███████╗███████╗ ██████╗  █████╗ ████████╗███████╗
██║     ██║██╔════╝██╔════╝████╗  ██║██╔════╝██╔════╝██╔════╝ ██╔══██╗╚══██╔══╝██╔════╝
██║     ██║██║     █████╗  ██╔██╗ ██║███████╗█████╗  ██║  ███╗███████║   ██║   █████╗
██║     ██║██║     ██╔══╝  ██║╚██╗██║╚════██║██╔══╝  ██║   ██║██╔══██║   ██║   ██╔══╝
███████╗██║╚██████╗███████╗██║ ╚████║███████║███████╗╚██████╔╝██║  ██║   ██║   ███████╗
╚══════╝╚═╝ ╚═════╝╚══════╝╚═╝  ╚═══╝╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚══════╝
`

// PrintWithEff prints the banner and a startup summary from the merged
// effective configuration.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	cfg := eff.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	fmt.Printf("DB Path:  %s\n", eff.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if eff.Source != "" {
		fmt.Printf("Config:   %s\n", eff.Source)
	}
	fmt.Printf("Products: %d configured\n", len(cfg.Products))
	if cfg.Discord.Enabled {
		fmt.Printf("Discord:  enabled (guild %s)\n", cfg.Discord.GuildID)
	} else {
		fmt.Println("Discord:  disabled")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("TLS:      configured")
	} else {
		fmt.Println("TLS:      unconfigured")
	}
	if cfg.Security.RateLimit.RPS > 0 {
		fmt.Printf("Rate:     %.1f req/s (burst %d)\n", cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst)
	} else {
		fmt.Println("Rate:     unlimited")
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /verify   - Verify and bind a license key (JSON)")
	fmt.Println("GET  /healthz  - Liveness probe")
	fmt.Println("GET  /readyz   - Readiness probe")
	fmt.Println("GET  /metrics  - Prometheus metrics")
	fmt.Println("GET  /docs/    - API documentation")

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/verify' -d '{\"licenseKey\":\"K\",\"productId\":\"P\",\"robloxUserId\":1}'\n", eff.Addr)

	fmt.Println("\n== Logs: =================================================")
}
