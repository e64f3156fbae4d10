package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caredir/directory-server/internal/api"
	"github.com/caredir/directory-server/internal/config"
	"github.com/caredir/directory-server/internal/filter"
	"github.com/caredir/directory-server/internal/service"
	"github.com/caredir/directory-server/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the directory API server",
	Long: `Start the directory API server to serve provider directory data.

The server requires a configuration file (--config) that specifies:
- Directory name and the data file to serve
- Optional load-time filtering rules and file watching
- Browsing session settings

See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time
	serverReadTimeout      = 10 * time.Second // Enough for headers and small requests
	serverWriteTimeout     = 15 * time.Second // REST responses; websockets hijack the connection
	serverIdleTimeout      = 60 * time.Second // Keep connections alive for reuse
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	address := viper.GetString("address")

	slog.Info("Starting directory API server", "address", address)

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"directory", cfg.GetDirectoryName(),
		"source", cfg.Source.File.Path)

	// Directory data provider with load-time filters
	provider, err := service.NewFileDirectoryDataProvider(cfg, filter.NewService())
	if err != nil {
		return fmt.Errorf("failed to create directory data provider: %w", err)
	}

	svc, err := service.New(ctx, provider)
	if err != nil {
		return fmt.Errorf("failed to create directory service: %w", err)
	}
	slog.Info("Created directory data provider", "source", provider.GetSource())

	// Background workers share one cancellable context
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Browsing session manager with idle expiry
	sessions := session.NewManager(cfg.SessionIdleTimeout())
	go sessions.Start(workerCtx)

	// Optional reload-on-change of the data file
	if cfg.WatchEnabled() {
		watcher, err := service.NewWatcher(provider.Path(), cfg.WatchDebounce(), svc.Reload)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		go watcher.Start(workerCtx)
		slog.Info("Watching directory data file for changes",
			"path", provider.Path(),
			"debounce", cfg.WatchDebounce())
	}

	router := api.NewServer(svc, sessions,
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			api.LoggingMiddleware,
		),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	workerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
