package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storegate/storegate/internal/adapter/inbound/http"
	"github.com/storegate/storegate/internal/adapter/outbound/memory"
	"github.com/storegate/storegate/internal/adapter/outbound/sqlite"
	"github.com/storegate/storegate/internal/config"
	"github.com/storegate/storegate/internal/domain/auth"
	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/user"
	"github.com/storegate/storegate/internal/service"
	"github.com/storegate/storegate/internal/telemetry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server",
	Long: `Start the Storegate API server.

The server requires auth.signing_secret to be configured; it refuses to
start without one rather than issue unverifiable tokens.

Examples:
  # Start with config file settings
  storegate start

  # Start with a specific config file
  storegate --config /path/to/config.yaml start

  # Pure environment configuration
  STOREGATE_AUTH_SIGNING_SECRET=... storegate start`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Signal context for graceful shutdown. stop() restores default
	// signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("storegate stopped")
	return nil
}

// run wires all components together and starts the transport.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Telemetry.Enabled {
		providers, err := telemetry.Init("storegate")
		if err != nil {
			return fmt.Errorf("failed to init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", "error", err)
			}
		}()
		logger.Info("telemetry enabled")
	}

	// Select the persistence backend.
	var (
		userRepo     user.Repository
		categoryRepo catalog.CategoryRepository
		productRepo  catalog.ProductRepository
	)
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		defer func() { _ = store.Close() }()
		userRepo = store.Users
		categoryRepo = store.Categories
		productRepo = store.Products
		logger.Info("storage: sqlite", "path", cfg.Storage.Path)
	default:
		userRepo = memory.NewUserStore()
		categoryRepo = memory.NewCategoryStore()
		productRepo = memory.NewProductStore()
		logger.Info("storage: memory")
	}

	vault := auth.NewVault(cfg.Auth.HashWorkers)
	authority := auth.NewTokenAuthority([]byte(cfg.Auth.SigningSecret))

	if cfg.Auth.ServiceKey == "" {
		logger.Warn("auth.service_key not configured, account provisioning is disabled")
	} else {
		logger.Info("service key configured",
			"fingerprint", auth.CredentialFingerprint(cfg.Auth.ServiceKey))
	}

	userService := service.NewUserService(userRepo, vault, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, logger)

	apiHandler := http.NewAPIHandler(
		http.WithUserService(userService),
		http.WithCategoryService(categoryService),
		http.WithProductService(productService),
		http.WithTokenAuthority(authority),
		http.WithBearerGuard(auth.NewBearerGuard(authority)),
		http.WithServiceKeyGuard(auth.NewServiceKeyGuard(cfg.Auth.ServiceKey)),
		http.WithHandlerLogger(logger),
	)

	logger.Info("storegate starting",
		"version", Version,
		"http_addr", cfg.Server.HTTPAddr,
		"storage", cfg.Storage.Driver,
		"telemetry", cfg.Telemetry.Enabled,
	)

	transport := http.NewHTTPTransport(apiHandler,
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithLogger(logger),
		http.WithTracing(cfg.Telemetry.Enabled),
	)
	return transport.Start(ctx)
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
