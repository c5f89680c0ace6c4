package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"

	"presence-lab/auth"
	"presence-lab/domain/event"
	"presence-lab/infrastructure/grpc/server"
	"presence-lab/infrastructure/rest"
	"presence-lab/infrastructure/storage"
	"presence-lab/infrastructure/websocket"
	"presence-lab/internal"
	"presence-lab/observability"
	"presence-lab/runtime"
	"presence-lab/runtime/workers"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Presence node terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
// Deferred cleanups run before main calls os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB), used by the delivery journal
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s?prefix=delivery:", config.DebugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, storage.DeliveryMapper)
	}

	// 3. Supervision, presence core and transport
	telemetry := make(chan event.Telemetry, config.TelemetryBufferSize)
	supervisor := workers.NewSupervisor(logger, telemetry, config.RestartInterval)
	hub := websocket.NewHub(logger)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, runtime.NewRegistry(), hub, telemetry,
		config.RelayRate, config.RelayBurst, config.MetricInterval)

	journal := storage.NewDeliveryJournal(db, logger, config.JournalTTL)
	metrics := observability.NewMetrics()
	monitoring := observability.NewMonitoringManager(logger)
	orchestrator.Add(
		observability.NewMetricsHandler(metrics, monitoring),
		observability.NewJournalHandler(logger, journal),
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(logger, event.NewCounter()),
	)

	socket := websocket.NewServer(logger, hub, orchestrator,
		auth.NewHandshakeResolver(config.JwtSecret, config.AllowPlainIdentity),
		websocket.Settings{
			ConnectionBufferSize: config.ConnectionBufferSize,
			WriteTimeout:         config.WriteTimeout,
			PongTimeout:          config.PongTimeout,
			PingInterval:         config.PingInterval,
			MaxFrameSize:         config.MaxFrameSize,
			AllowedOrigins:       config.Origins(),
		})
	handlers := rest.NewHandlers(logger, orchestrator, journal, monitoring, orchestrator.Sessions)

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		orchestrator.Start(ctx)
	}()

	// 4. HTTP (socket, REST bridge, diagnostics)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           handlers.Routes(socket, metrics.Handler(), config.JwtSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 5. gRPC health
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	healthServer := server.NewHealthServer(logger)
	go func() {
		logger.Info("Starting gRPC health server", "address", grpcAddress)
		if err := healthServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	healthServer.SetServing()

	// 6. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Graceful shutdown: stop accepting, then stop the workers
	logger.Info("Shutting down gracefully...")
	stop()
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
