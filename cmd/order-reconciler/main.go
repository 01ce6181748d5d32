package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeffloic/artisan-showroom/internal/config"
	"github.com/jeffloic/artisan-showroom/internal/consumer"
	"github.com/jeffloic/artisan-showroom/internal/publisher"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/jeffloic/artisan-showroom/pkg/logger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var errNoBrokers = errors.New("KAFKA_BROKERS is required")

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New("order-reconciler", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("order reconciler stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("order reconciler stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errNoBrokers
	}
	if cfg.OrderStore == config.StoreMemory {
		log.Warn("order store is in-memory, replayed orders will not outlive this process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.OrderStoreOptions())
	if err != nil {
		return fmt.Errorf("open order store: %w", err)
	}
	defer repo.Close()

	pub := publisher.NewKafkaPublisher(log, cfg.KafkaBrokers...)
	defer pub.Close()

	reconciler := consumer.NewReconciler(repo, pub, log, cfg.ConsumerGroup, cfg.KafkaBrokers...)
	defer reconciler.Close()

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("reconciling unrecorded orders", "group", cfg.ConsumerGroup, "brokers", cfg.KafkaBrokers)
		return reconciler.Run(gctx)
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		log.Info("gRPC health server starting", "port", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
