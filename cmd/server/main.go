package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/checkout-sim/internal/adapter/catalog"
	"github.com/rl1809/checkout-sim/internal/adapter/handler"
	"github.com/rl1809/checkout-sim/internal/config"
	"github.com/rl1809/checkout-sim/internal/core/service"
	"github.com/rl1809/checkout-sim/internal/observability"
)

const (
	shutdownTimeout = 5 * time.Second
	probeInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", "path", cfg.CatalogPath, "error", err)
	}
	logger.Info("catalog loaded", "products", len(cat.Products()), "coupons", len(cat.Coupons()))

	recorder := observability.NewRecorder()
	runner := handler.NewRunner(cat, cat, logger, recorder)

	// gRPC health
	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler(runner)
	grpcHandler.Register(grpcServer)
	if failed := grpcHandler.Probe(service.Scenarios()); failed > 0 {
		logger.Warn("startup probe failed", "failed", failed)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", "addr", cfg.GRPCAddr, "error", err)
	}

	// HTTP
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHTTPHandler(runner).Register(router)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Periodic re-probe keeps the health entries current
	g.Go(func() error {
		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if failed := grpcHandler.Probe(service.Scenarios()); failed > 0 {
					logger.Warn("probe failed", "failed", failed)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
		logger.Info("HTTP server stopped")

		grpcHandler.Shutdown()
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
