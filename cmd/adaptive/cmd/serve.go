package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/site-bender/sitebender-sub007/internal/core/api"
	"github.com/site-bender/sitebender-sub007/internal/core/auth"
	"github.com/site-bender/sitebender-sub007/internal/core/config"
	"github.com/site-bender/sitebender-sub007/internal/core/db"
	"github.com/site-bender/sitebender-sub007/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC evaluation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50051, "gRPC server port")
	serveCmd.Flags().String("locale", "", "default locale for formatting operators")
	serveCmd.Flags().String("policy", "", "And failure policy (collect-all, short-circuit)")
	serveCmd.Flags().Bool("no-audit", false, "do not record evaluations")
	serveCmd.Flags().Bool("insecure", false, "serve without API key authentication")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store, err := db.NewStore(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	var authenticator *auth.Authenticator
	if insecure, _ := cmd.Flags().GetBool("insecure"); !insecure {
		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}
		if len(secrets) == 0 {
			return fmt.Errorf("no HMAC secrets configured (set %s_HMAC_SECRET environment variable or pass --insecure)", config.EnvPrefix)
		}
		authenticator = auth.NewAuthenticator(secrets, store.Queries(), logger)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	service, err := api.NewEvaluationService(eng, store, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting adaptive evaluation service",
		"version", Version,
		"host", cfg.Host,
		"port", cfg.Port,
		"locale", cfg.Locale,
		"policy", cfg.CombinatorPolicy,
		"record_evaluations", cfg.RecordEvaluations,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", "signal", sig.String())
		return grpcServer.Shutdown(ctx)
	}
}
