package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diffwatch/reviewbot/internal/app"
	"github.com/diffwatch/reviewbot/internal/config"
	"github.com/diffwatch/reviewbot/internal/github"
	"github.com/diffwatch/reviewbot/internal/review"
	"github.com/diffwatch/reviewbot/internal/secrets"
	"github.com/diffwatch/reviewbot/internal/server"
	"github.com/diffwatch/reviewbot/pkg/logger"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
)

const shutdownTimeout = 5 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:     "reviewbot",
		Short:   "LLM code review bot for pull requests",
		Long:    `reviewbot listens for pull-request webhooks, sends each changed file's diff to a language model and posts the feedback back as review comments.`,
		Version: version,
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (optional; environment always wins)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Verbose = verbose
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	host := github.NewClient(ctx, cfg.GitHub.Token)
	factory := func(apiKey string) (app.Reviewer, error) {
		return review.NewReviewer(cfg.Review, apiKey, log)
	}
	dispatcher := app.NewDispatcher(cfg, log, host, secrets.EnvStore{}, factory)

	srv, err := server.New(cfg, log, dispatcher)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Addr())
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = srv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", shutdownTimeout)
	}
	return nil
}
