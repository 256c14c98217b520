package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolcms/server/internal/api"
	"github.com/schoolcms/server/internal/auth"
	"github.com/schoolcms/server/internal/config"
	"github.com/schoolcms/server/internal/domain/content"
	"github.com/schoolcms/server/internal/domain/users"
	"github.com/schoolcms/server/internal/email"
	"github.com/schoolcms/server/internal/metrics"
	"github.com/schoolcms/server/internal/storage/postgres"
	"github.com/schoolcms/server/internal/uploads"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

Configuration comes from environment variables, optionally overlaid
with a YAML file via --config. If ADMIN_USERNAME and ADMIN_PASSWORD
are set, the admin account is provisioned on startup. The server shuts
down gracefully on SIGINT and SIGTERM.

Examples:
  # Start with configuration from env vars
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 4000)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	userService := users.NewService(repo.Users())
	if cfg.AdminBootstrap.Username != "" && cfg.AdminBootstrap.Password != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := userService.Provision(ctx, cfg.AdminBootstrap.Username, cfg.AdminBootstrap.Password); err != nil {
			logger.Error().Err(err).Msg("admin bootstrap failed")
		} else {
			logger.Info().Str("username", cfg.AdminBootstrap.Username).Msg("admin account ready")
		}
		cancel()
	}

	store, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("uploads store: %w", err)
	}

	var emailService *email.Service
	if svc, err := email.NewService(cfg.Email, logger); err != nil {
		// The contact endpoint is left unregistered rather than serving
		// submissions that can never be delivered.
		logger.Warn().Err(err).Msg("email service unavailable, contact endpoint disabled")
	} else {
		emailService = svc
	}

	var services []*content.Service
	for _, desc := range content.Descriptors() {
		services = append(services, content.NewService(desc, repo.Content(desc)))
	}

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	router := api.NewRouter(cfg, logger, api.Dependencies{
		Content:   services,
		Users:     userService,
		Tokens:    auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "schoolcms"),
		Uploads:   store,
		Email:     emailService,
		Pool:      pool,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
