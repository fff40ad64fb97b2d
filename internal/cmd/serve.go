package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/alisw/ci-overview/internal/adapter/driven/github"
	httphandler "github.com/alisw/ci-overview/internal/adapter/driving/http"
	"github.com/alisw/ci-overview/internal/application"
	"github.com/alisw/ci-overview/internal/catalog"
	"github.com/alisw/ci-overview/internal/config"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
	"github.com/alisw/ci-overview/internal/logging"
)

var serveFlags struct {
	configFile string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the long-lived overview service",
	Long: `Run a service that refreshes the overview on a fixed interval and serves
the latest HTML document at / and the latest metrics at /metrics. Requests
always get the most recently published snapshot; nothing is recomputed per
request.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.configFile, "config", "",
		"YAML overview file with persistent filters")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveFlags.configFile != "" {
		if err := cfg.ApplyFile(serveFlags.configFile); err != nil {
			return err
		}
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	defer func() { _ = logging.CloseFile() }()

	// A missing or rejected credential is startup-fatal; transient fetch
	// failures later keep the previous snapshot published instead.
	if !cfg.HasCredentials() {
		return fmt.Errorf("please define the GITHUB_TOKEN environment variable")
	}
	client, err := githubadapter.NewClient(cfg.GitHubToken)
	if err != nil {
		return err
	}

	verifyCtx, cancelVerify := context.WithTimeout(cmd.Context(), 30*time.Second)
	login, err := client.VerifyCredentials(verifyCtx)
	cancelVerify()
	if err != nil {
		return err
	}
	slog.Info("github credentials verified", "login", login)

	var source driven.DefinitionSource
	if cfg.DefsDir != "" {
		source = catalog.NewLocalSource(cfg.DefsDir)
		slog.Info("reading definitions locally", "dir", cfg.DefsDir)
	} else {
		source = githubadapter.NewRemoteSource(client, cfg.DefsRepo, cfg.DefsBranch, cfg.DefsPath)
		slog.Info("fetching definitions remotely",
			"repo", cfg.DefsRepo, "branch", cfg.DefsBranch, "path", cfg.DefsPath)
	}

	svc := application.NewRefreshService(source, client, cfg.Filters, cfg.RefreshInterval, cfg.RecentWindow)

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	go func() {
		if err := svc.Start(ctx); err != nil {
			slog.Error("refresh service failed", "error", err)
			stop()
		}
	}()
	if cfg.DefsDir != "" {
		go svc.WatchDefinitions(ctx, cfg.DefsDir)
	}

	handler := httphandler.NewHandler(svc, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("ci-overview started",
		"listen_addr", cfg.ListenAddr,
		"refresh_interval", cfg.RefreshInterval,
		"recent_window", cfg.RecentWindow,
	)

	<-ctx.Done()
	slog.Info("shutting down")

	// Stop accepting connections, then drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
