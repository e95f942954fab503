// cmd/product/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ecommerce/internal/config"
	"ecommerce/internal/observability"
	"ecommerce/internal/product"
	"ecommerce/internal/resilience"
	"ecommerce/internal/store"
	"ecommerce/internal/stream"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracerProvider(ctx, "product-service", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	guardCfg := resilience.Config{
		Rate:             cfg.Guard.Rate,
		Burst:            cfg.Guard.Burst,
		MaxConcurrent:    cfg.Guard.MaxConcurrent,
		MaxAttempts:      cfg.Guard.MaxAttempts,
		BreakerThreshold: cfg.Guard.BreakerThreshold,
		IsPermanent:      product.IsTerminal,
	}
	guarded := store.NewGuardedStore(store.NewPostgresStore(db),
		resilience.NewGuard("product.read", guardCfg, logger),
		resilience.NewGuard("product.write", guardCfg, logger),
	)

	writer := stream.NewWriter(cfg.KafkaBrokers, cfg.StockTopic)
	publisher := stream.NewStockPublisher(writer, logger)
	defer publisher.Close()

	svc := product.NewService(guarded, publisher, logger)
	handler := product.NewHandler(svc)

	reader := stream.NewReader(stream.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   cfg.PaymentTopic,
	})
	consumer := stream.NewConsumer(reader, stream.NewReservationHandler(guarded, publisher, logger), logger)
	defer consumer.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount("/api/products", handler.Routes())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("product service listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("service exited", zap.Error(err))
	}
	logger.Info("product service stopped")
}
