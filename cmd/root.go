package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/config"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/monitoring"
)

const serviceName = "courseplex"

var (
	cfg *config.Config

	storeBackend string
	port         string
	seedFile     string
)

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Referral ledger, leaderboards and user cleanup for the course platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		monitoring.ShutdownTracing(context.Background(), logging.Logger)
		_ = logging.Logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	// .env must be applied before flag defaults read the environment
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "✅ .env file loaded and applied")
	}

	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", getEnv("STORE_BACKEND", "memory"), "document store backend (memory|postgres)")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", getEnv("SEED_FILE", ""), "YAML fixtures loaded into an empty memory store")
	rootCmd.Flags().StringVar(&port, "port", getEnv("PORT", "8080"), "HTTP listen port")
}

func setup(ctx context.Context) error {
	cfg = config.Load()
	cfg.StoreBackend = storeBackend
	cfg.SeedFile = seedFile
	cfg.Port = port
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.InitLogger(cfg.IsRelease(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := monitoring.InitTracing(ctx, serviceName, cfg.OTLPEndpoint, log); err != nil {
		log.Warn("⚠️ tracing unavailable", zap.Error(err))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
