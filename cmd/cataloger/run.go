package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/doc-cataloger/internal/bootstrap"
	"github.com/kirillkom/doc-cataloger/internal/config"
	"github.com/kirillkom/doc-cataloger/internal/observability/logging"
)

type runFlags struct {
	instructions     string
	instructionsFile string
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <input-dir> <output-dir>",
		Short: "Classify every file under input-dir and copy it into output-dir",
		Long: `Walks input-dir, extracts text from each file, asks the configured language
model for a category, copies the file into a matching folder under output-dir
and appends a description block to all_descriptions.txt.

Configuration is read from the environment (see CATALOG_* variables) and,
optionally, from the YAML file named by CATALOG_CONFIG_FILE.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, flags, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&flags.instructions, "instructions", "", "extra instructions appended to every classification prompt")
	cmd.Flags().StringVar(&flags.instructionsFile, "instructions-file", "", "read classification instructions from a file")
	cmd.MarkFlagsMutuallyExclusive("instructions", "instructions-file")
	return cmd
}

func runCatalog(cmd *cobra.Command, flags *runFlags, inputDir, outputDir string) error {
	instructions, err := loadInstructions(flags)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, bootstrap.ServiceName, cfg.LogLevel, cfg.LogFormat))

	if err := prepareDirs(inputDir, outputDir); err != nil {
		return err
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, app.Metrics.Handler())
		defer shutdown()
	}

	report, runErr := app.CatalogUC.Run(ctx, inputDir, outputDir, instructions)
	if report != nil {
		printSummary(cmd.OutOrStdout(), report)
	}
	return runErr
}

func loadInstructions(flags *runFlags) (string, error) {
	if flags.instructionsFile == "" {
		return strings.TrimSpace(flags.instructions), nil
	}
	raw, err := os.ReadFile(flags.instructionsFile)
	if err != nil {
		return "", fmt.Errorf("read instructions file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func prepareDirs(inputDir, outputDir string) error {
	info, err := os.Stat(inputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory: %s is not a directory", inputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func serveMetrics(addr string, handler http.Handler) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics_listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics_server_error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics_shutdown_error", "error", err)
		}
	}
}
