package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/billdesk/billdesk/internal/api"
	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/config"
	"github.com/billdesk/billdesk/internal/service"
	"github.com/billdesk/billdesk/internal/storage/sqlite"
	"github.com/billdesk/billdesk/pkg/logging"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	server := api.NewServer(
		service.NewAuthService(store, authenticator, jwtManager),
		service.NewBillService(store),
		service.NewPaymentService(store),
		service.NewNotificationService(store),
		service.NewReportService(store),
		store,
	)
	if cfg.MetricsEnabled {
		server.EnableMetrics()
	}

	// Wrap with h2c so gRPC-style and plain HTTP/2 clients work without TLS.
	handler := h2c.NewHandler(server.Handler(), &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Billdesk server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
