package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (optional), .env and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("queue.nats_url", "NATS_URL", "APP_QUEUE_NATS_URL")
	v.BindEnv("queue.rabbitmq_url", "RABBITMQ_URL", "APP_QUEUE_RABBITMQ_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("vault.address", "VAULT_ADDR", "APP_VAULT_ADDRESS")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("email.sendgrid_api_key", "SENDGRID_API_KEY", "APP_EMAIL_SENDGRID_API_KEY")
	v.BindEnv("booking.slot_size_minutes", "SLOT_SIZE", "APP_BOOKING_SLOT_SIZE_MINUTES")
	v.BindEnv("app.environment", "APP_ENVIRONMENT", "NODE_ENV")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chargehub-api")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.environment", "production")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 12*1024*1024)

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", 9090)

	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.fallback_to_local", true)

	v.SetDefault("queue.driver", "nats")
	v.SetDefault("queue.nats_url", "nats://localhost:4222")

	v.SetDefault("jwt.access_token_duration", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "chargehub")

	v.SetDefault("vault.secret_path", "secret/data/chargehub")

	v.SetDefault("opentelemetry.service_name", "chargehub-api")
	v.SetDefault("opentelemetry.jaeger_endpoint", "http://jaeger:14268/api/traces")

	v.SetDefault("logging.level", "info")

	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.max_requests", 120)
	v.SetDefault("rate_limiting.window", time.Minute)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("booking.slot_size_minutes", 30)
	v.SetDefault("booking.max_slots_per_booking", 16)
	v.SetDefault("booking.prevent_overlap", true)
	v.SetDefault("booking.slots_cache_ttl", time.Minute)
	v.SetDefault("booking.no_show_sweep_interval", 5*time.Minute)

	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.max_upload_bytes", 10*1024*1024)
	v.SetDefault("storage.allowed_types", []string{"image/jpeg", "image/png", "image/webp", "application/pdf"})
	v.SetDefault("storage.thumbnail_size", 320)

	v.SetDefault("email.from", "no-reply@chargehub.app")
	v.SetDefault("email.from_name", "ChargeHub")
	v.SetDefault("email.base_url", "http://localhost:3000")
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Booking.SlotSizeMinutes <= 0 {
		return fmt.Errorf("booking.slot_size_minutes must be positive, got %d", c.Booking.SlotSizeMinutes)
	}
	if c.Booking.MaxSlotsPerBooking < 0 {
		return fmt.Errorf("booking.max_slots_per_booking must not be negative")
	}
	switch c.Queue.Driver {
	case "nats", "rabbitmq", "local", "none":
	default:
		return fmt.Errorf("unknown queue.driver %q", c.Queue.Driver)
	}
	return nil
}
