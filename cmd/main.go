package main

import (
	"context"
	"couple-chat/auth"
	"couple-chat/domain/event"
	"couple-chat/infrastructure/search"
	"couple-chat/infrastructure/server"
	"couple-chat/infrastructure/storage"
	"couple-chat/internal"
	"couple-chat/observability"
	"couple-chat/runtime"
	"couple-chat/runtime/workers"
	"couple-chat/services"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (database, index) run before the exit code reaches main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage: badger holds the bundles, bluge the search index, the upload dir the images
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
		return exitRuntime, fmt.Errorf("failed to create upload dir %s: %w", config.UploadDir, err)
	}

	// 3. Supervision & Orchestration
	telemetryChan := make(chan event.Event, config.BufferSize)
	sup := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	registry := runtime.NewConnectionRegistry(logger)
	membership := runtime.NewRoomMembership(logger, config.MaxRoomMembers)
	bundleRepository := storage.NewBundleRepository(db, logger)
	messageIndex := search.NewMessageIndex(blugeWriter, logger)
	uploadStore := storage.NewUploadStore(logger, config.UploadDir, config.BaseURL(), config.MaxUploadBytes)

	orchestrator := runtime.NewOrchestrator(
		logger, sup, registry, membership,
		bundleRepository, messageIndex,
		telemetryChan, config.PersistTimeout, config.SinkTimeout,
	)
	chatService := services.NewChatService(orchestrator)
	chatServer := server.NewChatServer(logger, chatService, server.GatewayConfig{
		ConnectionBufferSize: config.ConnectionBufferSize,
		PingPeriod:           config.PingPeriod,
		PongWait:             config.PongWait,
		WriteWait:            config.WriteWait,
		MaxFrameBytes:        config.MaxFrameBytes,
	})

	// 4. Telemetry
	counter := event.NewCounter()
	monitoring := observability.NewMonitoringManager(logger, config.MetricInterval, registry, membership, counter)
	handlers := []event.Handler{
		event.NewDeliveryHandler(logger, counter),
		event.NewLatencyHandler(logger, config.LatencyThreshold),
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		monitoring,
	}
	orchestrator.Add(
		workers.NewTelemetryWorker(logger, telemetryChan, handlers),
		workers.NewChannelCapacityWorker(logger,
			[]workers.NamedChannel{{Name: "telemetry", Channel: telemetryChan}},
			telemetryChan, config.MetricInterval, chatServer),
		monitoring,
	)

	if config.DebugPort > 0 {
		debugServer := internal.StartDebugServer(logger, db, config.DebugPort, internal.BundleMapper,
			func() any { return monitoring.GetLatest() })
		logger.Info("Debug inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
		defer func() { _ = debugServer.Close() }()
	}

	// 5. Authentication: without a secret, clients are trusted on declaration
	var authenticator auth.Authenticator
	if config.AuthSecret != "" {
		authenticator = auth.NewTokenAuthenticator(config.AuthSecret, config.AuthTokenDuration)
	} else {
		logger.Warn("AUTH_SECRET is not set, identities are not verified")
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 7. HTTP & websocket server
	router := server.NewRouter(logger, chatService, uploadStore, config.MaxUploadBytes)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           router.Handler(chatServer, authenticator, config.UploadDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting chat server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		orchestrator.Stop()
		return exitRuntime, err
	}

	// 9. Graceful shutdown: websockets are hijacked, so Shutdown does not wait for them
	logger.Info("Shutting down gracefully...")
	chatServer.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}
