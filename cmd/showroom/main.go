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

	"github.com/jeffloic/artisan-showroom/internal/catalog"
	"github.com/jeffloic/artisan-showroom/internal/config"
	h "github.com/jeffloic/artisan-showroom/internal/http"
	"github.com/jeffloic/artisan-showroom/internal/idempotency"
	"github.com/jeffloic/artisan-showroom/internal/payment/paystack"
	"github.com/jeffloic/artisan-showroom/internal/payment/sandbox"
	"github.com/jeffloic/artisan-showroom/internal/payment/stripe"
	"github.com/jeffloic/artisan-showroom/internal/publisher"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/jeffloic/artisan-showroom/internal/session"
	"github.com/jeffloic/artisan-showroom/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("showroom stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("showroom stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", "products", cat.Len())

	orders, err := repository.Open(ctx, cfg.OrderStoreOptions())
	if err != nil {
		return fmt.Errorf("open order store: %w", err)
	}
	defer orders.Close()
	log.Info("order store ready", "kind", cfg.OrderStore)

	deps := session.Deps{
		Catalog: cat,
		Orders:  orders,
		Logger:  log,
		TTL:     cfg.SessionTTL,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		deps.Claims = idempotency.NewRedisStore(rdb, cfg.ClaimTTL)
	} else {
		deps.Claims = idempotency.NewMemoryStore(cfg.ClaimTTL)
	}

	httpCfg := h.Config{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.SecureCookies,
		PayerEmail:     cfg.PayerEmail,
		Orders:         orders,
	}
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(log, cfg.KafkaBrokers...)
		defer pub.Close()
		deps.Events = pub
		httpCfg.Events = pub
	}
	if err := wirePayments(cfg, log, &deps, &httpCfg); err != nil {
		return err
	}
	if deps.Gateway == nil {
		log.Warn("no payment gateway configured, checkout is disabled", "provider", cfg.PaymentProvider)
	}

	sessions := session.NewManager(deps)
	handler := h.NewHandler(sessions, cat, log, httpCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
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
		return sessions.Run(gctx, cfg.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadSQLite(ctx, cfg.CatalogDBPath, cfg.CatalogMigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// wirePayments sets the gateway and its webhook parser for the configured
// provider. Missing credentials leave the gateway unset.
func wirePayments(cfg *config.Config, log *slog.Logger, deps *session.Deps, httpCfg *h.Config) error {
	switch cfg.PaymentProvider {
	case config.ProviderPaystack:
		httpClient := &http.Client{
			Timeout:   cfg.GatewayTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		client, err := paystack.NewClient(paystack.Config{
			SecretKey:   cfg.PaystackSecretKey,
			BaseURL:     cfg.PaystackBaseURL,
			CallbackURL: cfg.PaystackCallbackURL,
		}, httpClient, log)
		if errors.Is(err, paystack.ErrMissingSecretKey) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("paystack: %w", err)
		}
		deps.Gateway = client
		httpCfg.Paystack = client
	case config.ProviderStripe:
		gw, err := stripe.New(stripe.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}, log)
		if errors.Is(err, stripe.ErrMissingSecretKey) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stripe: %w", err)
		}
		deps.Gateway = gw
		if cfg.StripeWebhookSecret != "" {
			httpCfg.Stripe = gw
		}
	case config.ProviderSandbox:
		deps.Gateway = sandbox.New(sandbox.RandomRoller{})
	}
	return nil
}
