package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gstinvoice/internal/config"
	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
	"gstinvoice/internal/repository"
	"gstinvoice/internal/storage"
)

var version = "1.0.0"

// cfg is set by Execute; nil when the environment failed to load.
var (
	cfg       *config.Config
	cfgErr    error
	openStore = storage.Open
)

var rootCmd = &cobra.Command{
	Use:   "gstinvoice",
	Short: "GST invoicing for small businesses",
	Long: `gstinvoice keeps a business profile, a client list and a product
catalog, and issues GST, non-GST and bill-of-supply invoices from them.

Totals, CGST/SGST or IGST and the amount in words are computed when an
invoice is saved. Invoices print as an A4 HTML page and the register
exports to Excel.

Data lives in a local SQLite file by default. Set STORE_DRIVER=redis and
REDIS_ADDR to share one store across machines.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			return logger.SetLevel(level)
		}
		return nil
	},
}

// Version reports the build version.
func Version() string { return version }

// Execute runs the command tree with the loaded configuration.
func Execute(c *config.Config, loadErr error) {
	log := logger.WithComponent("cmd")
	cfg, cfgErr = c, loadErr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "Storage driver override: sqlite, redis or memory")
	rootCmd.PersistentFlags().String("db", "", "SQLite database file override")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug, info, warn, error")
}

// storeConfig resolves the storage settings from the environment and the
// persistent flag overrides.
func storeConfig(cmd *cobra.Command) (storage.Config, error) {
	var sc storage.Config
	switch {
	case cfg != nil:
		sc = cfg.GetStoreConfig()
	case cfgErr != nil:
		return storage.Config{}, cfgErr
	default:
		return storage.Config{}, errors.New("configuration not loaded")
	}

	if driver, _ := cmd.Flags().GetString("store"); driver != "" {
		sc.Driver = driver
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		sc.Path = path
	}
	return sc, nil
}

// withService opens the configured store, runs fn with a service over it
// and closes the store afterwards.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *invoice.Service) error) error {
	log := logger.WithComponent("cmd")

	sc, err := storeConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, sc)
	if err != nil {
		log.Error().Err(err).Str("driver", sc.Driver).Msg("Failed to open store")
		return fmt.Errorf("failed to open %s store: %w", sc.Driver, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close store")
		}
	}()

	log.Debug().Str("driver", sc.Driver).Str("path", sc.Path).Msg("Store opened")
	return fn(ctx, invoice.NewService(repository.New(store)))
}
