package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/site-bender/sitebender-sub007/internal/core/config"
	"github.com/site-bender/sitebender-sub007/internal/core/db"
	"github.com/site-bender/sitebender-sub007/internal/engine"
)

const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:           "adaptive",
	Short:         "Adaptive operand evaluation engine",
	Long:          `Evaluates validation, calculation, display and formatting rules expressed as operand trees.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// Execute runs the root command. Errors other than a failed evaluation are
// printed to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrEvaluationFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want json or text)", format)
	}
}

// loadConfig reads the config file, environment and the command's flags.
func loadConfig(cmd *cobra.Command) (*config.ServiceConfig, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newEngine(cfg *config.ServiceConfig) (*engine.Engine, error) {
	policy, err := engine.ParsePolicy(cfg.CombinatorPolicy)
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithLogger(logger),
		engine.WithLocale(cfg.Locale),
		engine.WithCombinatorPolicy(policy),
	), nil
}

// openDatabase opens and migrates the configured database.
// The directory of a SQLite file is created if needed.
func openDatabase(ctx context.Context, cfg *config.ServiceConfig) (*sqlx.DB, error) {
	if u, err := url.Parse(cfg.DatabaseURL); err == nil && u.Scheme == "sqlite" {
		path := u.Host + u.Path
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	applied, err := db.MigrateUp(ctx, database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, id := range applied {
		logger.Info("applied migration", "migration_id", id)
	}
	return database, nil
}

// openStore opens the database and loads the operand store.
func openStore(ctx context.Context, cmd *cobra.Command) (*db.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := db.NewStore(database)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, func() { database.Close() }, nil
}

// redactURL hides the password of a database URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
