package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/psouza/gleandesk/internal/api"
	"github.com/psouza/gleandesk/internal/config"
	"github.com/psouza/gleandesk/internal/feedback"
	"github.com/psouza/gleandesk/internal/glean"
	"github.com/psouza/gleandesk/internal/pipeline"
	"github.com/psouza/gleandesk/internal/tokenstore"
	"github.com/psouza/gleandesk/internal/zendesk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "gleandesk version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the token store.
	tokens, err := openTokenStore(cfg)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing token store: %v\n", err)
		}
	}()

	// Build capability clients.
	zendeskClient := zendesk.NewClient(cfg.Zendesk.Subdomain, cfg.Zendesk.Email, cfg.Zendesk.APIToken, cfg.Zendesk.Timeout)
	gleanClient := glean.NewClient(cfg.Glean.ChatURL, cfg.Glean.FeedbackURL, cfg.Glean.Token, cfg.Glean.Timeout, cfg.Glean.StreamTimeout)

	// Build the answer pipeline and its dispatcher.
	pipe := pipeline.New(zendeskClient, zendeskClient, gleanClient, tokens, pipeline.Options{
		FormApplications:     cfg.Routing.FormApplications,
		DefaultApplicationID: cfg.Routing.DefaultApplicationID,
		SystemPrompt:         cfg.Serializer.SystemPrompt,
		Banner:               cfg.Note.Banner,
		ExcludedEmails:       cfg.Serializer.ExcludedEmails,
		Verbose:              cfg.Serializer.Verbose,
		DryRun:               cfg.Note.DryRun,
		DumpDir:              cfg.Debug.DumpDir,
	})
	dispatcher := pipeline.NewDispatcher(pipe, cfg.Worker.Count, cfg.Worker.QueueSize)

	relay := feedback.NewRelay(tokens, gleanClient)

	handler := api.NewHandler(api.Deps{
		Dispatcher: dispatcher,
		Feedback:   relay,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start the worker pool.
	workersDone := make(chan struct{})
	go func() {
		if err := dispatcher.Run(ctx); err != nil {
			slog.Error("dispatcher stopped", "error", err)
		}
		close(workersDone)
	}()
	slog.Info("worker pool started", "workers", cfg.Worker.Count, "queue_size", cfg.Worker.QueueSize)

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "gleandesk listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout; in-flight pipeline runs get the same
	// grace period as in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stop()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		slog.Warn("workers did not stop in time")
	}
	return srv.Shutdown(shutdownCtx)
}

func openTokenStore(cfg *config.Config) (tokenstore.Store, error) {
	switch cfg.TokenStore.Backend {
	case "csv":
		return tokenstore.OpenCSV(cfg.TokenStore.CSVPath)
	default:
		return tokenstore.OpenSQLite(cfg.TokenStore.DataDir)
	}
}
