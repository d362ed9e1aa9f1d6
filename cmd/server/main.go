package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/config"
	"github.com/light-bringer/offercat-service/internal/platform/auth"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
	"github.com/light-bringer/offercat-service/internal/platform/ratelimit"
	"github.com/light-bringer/offercat-service/internal/services"
	"github.com/light-bringer/offercat-service/internal/transport/grpc/health"
	httphandler "github.com/light-bringer/offercat-service/internal/transport/http"
)

const probeInterval = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	logger.Info("starting offer catalog service",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("http_port", cfg.Server.HTTPPort),
		zap.String("grpc_port", cfg.Server.GRPCPort),
	)

	// 2. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	resolver, err := auth.NewHMACResolver(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	// 3. gRPC health and reflection
	grpcServer := health.NewServer(serviceOpts.Stores.Ping, logger)
	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	go grpcServer.Monitor(ctx, probeInterval)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// 4. HTTP API
	router := httphandler.NewRouter(serviceOpts.Handler, httphandler.RouterConfig{
		Resolver:       resolver,
		Logger:         logger,
		Limiter:        ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         func(r *http.Request) error { return serviceOpts.Stores.Ping(r.Context()) },
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return observability.WithLogger(context.Background(), logger) },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 5. Graceful shutdown handling
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
	}

	logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	grpcServer.Shutdown()

	return nil
}
