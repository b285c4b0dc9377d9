package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-chat/internal/api"
	"github.com/kurihiro0119/github-repo-chat/internal/config"
	"github.com/kurihiro0119/github-repo-chat/internal/lister"
	"github.com/kurihiro0119/github-repo-chat/internal/logger"
	"github.com/kurihiro0119/github-repo-chat/internal/session"
)

var (
	host     string
	port     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "github-repo-chat",
	Short: "Browse your GitHub repositories in the browser",
	Long: `Starts a web server that lists the repositories of a GitHub account
and shows their details next to a chat panel.

The default token is read from GITHUB_PERSONAL_ACCESS_TOKEN (or .env).
A token typed into the page takes precedence for that browser session.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "", "listen host (default API_HOST or localhost)")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (default API_PORT or 8501)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (default LOG_LEVEL or info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if host != "" {
		cfg.APIHost = host
	}
	if port != "" {
		cfg.APIPort = port
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize lister
	githubLister, err := lister.NewGitHubLister(lister.Options{
		BaseURL:  cfg.GitHubAPIURL,
		PerPage:  cfg.PerPage,
		MaxPages: cfg.MaxPages,
		Timeout:  cfg.HTTPTimeout,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub lister: %w", err)
	}

	if cfg.GitHubToken == "" {
		log.Warnf("%s is not set; a token must be entered in the page", config.TokenEnvVar)
	}

	// Initialize handler and routes
	store := session.NewStore(cfg.GitHubToken, session.WithIdleTimeout(cfg.SessionIdleTimeout))
	handler := api.NewHandler(githubLister, store, log)
	router := api.SetupRoutes(handler, log)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on http://%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Sessions live only in memory
	log.WithField("sessions", store.Len()).Info("Server exited")
	return nil
}
