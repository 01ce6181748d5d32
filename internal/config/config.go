// Package config reads process settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = repository.KindMemory
	StorePostgres = repository.KindPostgres
	StoreMongo    = repository.KindMongo

	ProviderPaystack = "paystack"
	ProviderStripe   = "stripe"
	ProviderSandbox  = "sandbox"
	ProviderNone     = "none"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ServiceName string
	LogLevel    string

	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	SecureCookies   bool

	SessionTTL    time.Duration
	SweepInterval time.Duration
	PayerEmail    string

	CatalogDBPath         string
	CatalogMigrationsPath string

	OrderStore    string
	Postgres      repository.Credentials
	MongoURI      string
	MongoDatabase string

	RedisAddr string
	ClaimTTL  time.Duration

	KafkaBrokers  []string
	ConsumerGroup string

	PaymentProvider     string
	PaystackSecretKey   string
	PaystackBaseURL     string
	PaystackCallbackURL string
	StripeSecretKey     string
	StripeWebhookSecret string
	GatewayTimeout      time.Duration
}

// Load reads .env when present and then the environment. Variables already
// set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("%w: DB_PORT: %w", ErrInvalidConfig, err)
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "showroom"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SecureCookies:  getBool("SECURE_COOKIES", false),
		PayerEmail:     getEnv("CHECKOUT_DEFAULT_EMAIL", "test@artisan.com"),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", ""),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),

		OrderStore: strings.ToLower(getEnv("ORDER_STORE", StoreMemory)),
		Postgres: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              pgPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "showroom"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "showroom"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "order-reconciler"),

		PaymentProvider:     strings.ToLower(getEnv("PAYMENT_PROVIDER", ProviderSandbox)),
		PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", ""),
		PaystackCallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"REQUEST_TIMEOUT", 30 * time.Second, &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", 10 * time.Second, &cfg.ShutdownTimeout},
		{"SESSION_TTL", 2 * time.Hour, &cfg.SessionTTL},
		{"SESSION_SWEEP_INTERVAL", time.Minute, &cfg.SweepInterval},
		{"CLAIM_TTL", 72 * time.Hour, &cfg.ClaimTTL},
		{"GATEWAY_TIMEOUT", 15 * time.Second, &cfg.GatewayTimeout},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) OrderStoreOptions() repository.OpenOptions {
	return repository.OpenOptions{
		Kind:          c.OrderStore,
		Postgres:      &c.Postgres,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}

func (c *Config) Validate() error {
	switch c.OrderStore {
	case StoreMemory, StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("%w: ORDER_STORE %q", ErrInvalidConfig, c.OrderStore)
	}
	switch c.PaymentProvider {
	case ProviderPaystack, ProviderStripe, ProviderSandbox, ProviderNone:
	default:
		return fmt.Errorf("%w: PAYMENT_PROVIDER %q", ErrInvalidConfig, c.PaymentProvider)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
