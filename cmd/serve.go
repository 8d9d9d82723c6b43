package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/handlers"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", getEnv("PORT", "8080"), "HTTP listen port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logging.Logger

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.New(cfg, handlers.Deps{
		Store:      a.st,
		Ledger:     a.opts,
		Rewards:    a.rewards,
		Cleanup:    a.cleanup,
		Backoffice: a.office,
		Logger:     log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(cfg, h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	baseURL := "http://localhost:" + cfg.Port
	fmt.Printf("\n============================================================\n")
	fmt.Printf("   🚀 Courseplex referral API\n")
	fmt.Printf("============================================================\n\n")
	fmt.Printf("   🔹 Health           %s/api/health\n", baseURL)
	fmt.Printf("   🔹 Leaderboards     %s/api/leaderboards\n", baseURL)
	fmt.Printf("   🔹 Live boards      %s/api/leaderboards/stream\n", baseURL)
	fmt.Printf("   ⚙️  Admin            %s/api/admin\n", baseURL)
	fmt.Printf("   📈 Metrics          %s/metrics\n\n", baseURL)
	fmt.Printf("   🗄  Store: %s   🔗 Referral policy: %s\n\n", cfg.StoreBackend, a.cleanup.Policy())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
