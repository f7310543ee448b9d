package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"licensegate/internal/app"
	"licensegate/pkg/config"
	"licensegate/pkg/logger"
	"licensegate/pkg/shutdown"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	_ = godotenv.Load(".env")

	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	eff := config.LoadEffective(cfgPath, addrVal, dbVal, setFlags)

	logger.Init(eff.Config.Logging.Level)

	a, err := app.New(eff, version)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
