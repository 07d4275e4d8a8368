package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"gstinvoice/cmd"
	"gstinvoice/internal/config"
	"gstinvoice/internal/logger"
)

func main() {
	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	cfg, cfgErr := config.Load()

	logCfg := logger.DefaultConfig()
	if cfgErr == nil {
		logCfg = cfg.GetLoggerConfig()
	}
	if err := logger.Setup(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.WithComponent("main")
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Configuration invalid; commands that open the store will fail")
	}
	log.Debug().Str("version", cmd.Version()).Msg("Starting gstinvoice")

	cmd.Execute(cfg, cfgErr)
}
