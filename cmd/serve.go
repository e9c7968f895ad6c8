package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/mailsense/internal/assist"
	"github.com/teemow/mailsense/internal/google"
	"github.com/teemow/mailsense/internal/instrumentation"
	"github.com/teemow/mailsense/internal/openai"
	"github.com/teemow/mailsense/internal/server"
)

// ServeConfig holds the settings for the serve command.
type ServeConfig struct {
	// HTTPAddr is the address of the main listener (UI and API).
	HTTPAddr string

	// Model is the chat model used for analysis and reply drafting.
	Model string

	// CredentialsFile is the path to the Google OAuth credentials JSON.
	// Optional; without it the mailbox integration is disabled.
	CredentialsFile string

	// TokenFile is the path of the cached Gmail OAuth token.
	TokenFile string

	// Debug enables debug logging.
	Debug bool

	// Metrics configures the dedicated metrics server.
	Metrics MetricsConfig
}

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server that serves the browser UI and the JSON API for
email analysis and reply drafting.

Configuration:
  The completion API key is read from the OPENAI_API_KEY environment
  variable (a .env file in the working directory is loaded if present).

  Gmail integration is optional. Provide --credentials (or set
  GOOGLE_CREDENTIALS_FILE) to enable the mailbox endpoints; the OAuth
  authorization itself happens in the browser or via the auth command.

Endpoints:
  /                UI
  /api/...         JSON API
  /healthz /readyz health probes
  :9090/metrics    Prometheus metrics (separate listener)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is not an error.
			_ = godotenv.Load()

			if config.CredentialsFile == "" {
				config.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					config.Metrics.Addr = addr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				if os.Getenv("METRICS_ENABLED") == "false" {
					config.Metrics.Enabled = false
				}
			}
			if config.Model == "" {
				config.Model = os.Getenv("OPENAI_MODEL")
			}

			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address")
	cmd.Flags().StringVar(&config.Model, "model", "", "Chat model to use. Can also use OPENAI_MODEL env var. Default: "+openai.DefaultModel)
	cmd.Flags().StringVar(&config.CredentialsFile, "credentials", "", "Path to Google OAuth credentials JSON. Can also use GOOGLE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&config.TokenFile, "token-file", "", "Path of the cached Gmail OAuth token. Default: "+google.DefaultTokenPath())
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(config ServeConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setupLogging(config.Debug)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	// Instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	// Metrics server on its own port
	var metricsServer *server.MetricsServer
	if config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.Metrics.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	// Completion provider
	completionClient, err := openai.New(openai.Config{
		APIKey: apiKey,
		Model:  config.Model,
	})
	if err != nil {
		return err
	}
	slog.Info("completion client ready", "model", completionClient.Model())

	// Optional Gmail authorization
	var auth google.TokenProvider
	if config.CredentialsFile != "" {
		authenticator, err := google.NewAuthenticator(config.CredentialsFile, config.TokenFile)
		if err != nil {
			return err
		}
		auth = authenticator
		slog.Info("mailbox integration enabled", "authorized", authenticator.HasToken())
	} else {
		slog.Info("mailbox integration disabled, no OAuth credentials configured")
	}

	serverContext := server.NewServerContext(shutdownCtx, auth)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", "error", err)
		}
	}()

	auditLogger := instrumentation.NewAuditLogger(nil, instrConfig.AuditLogging)
	service := assist.NewService(completionClient, slog.Default(), provider.Metrics(), auditLogger)
	api := server.NewAPI(serverContext, service, slog.Default(), provider.Metrics(), auditLogger)

	mux := http.NewServeMux()
	mux.Handle("/", server.UIHandler())
	api.Register(mux)

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		slog.Info("starting HTTP server", "addr", config.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)

		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server stopped")
	return nil
}

// setupLogging configures the global slog logger.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
