package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/templatizer/internal/config"
	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/dgallion1/templatizer/internal/customize"
	"github.com/dgallion1/templatizer/internal/fetch"
)

var (
	rootCmd = &cobra.Command{
		Use:           "templatizer",
		Short:         "Customize labeled AsciiDoc/Markdown document templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	cfg     config.Config
	logger  *slog.Logger
	dbPath  string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the saved contexts database (default $CONTEXT_DB or templatizer.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(watchCmd)
}

func setup() error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if dbPath == "" {
		dbPath = cfg.ContextDB
	}
	return nil
}

// newLoader opens any local directory, URL or configured S3 bucket.
func newLoader() *customize.Loader {
	return &customize.Loader{
		Fetch: fetch.Options{
			Timeout:    cfg.FetchTimeout,
			Retries:    cfg.FetchRetries,
			Log:        logger,
			AllowLocal: true,
			S3: fetch.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
				UseSSL:    cfg.S3UseSSL,
			},
		},
		Options: customize.Options{
			ManifestName: cfg.ManifestName,
			Concurrency:  cfg.FetchConcurrency,
			Log:          logger,
		},
	}
}

func openStore() (*contextstore.Store, error) {
	store, err := contextstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open contexts database %s: %w", dbPath, err)
	}
	return store, nil
}
