package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	LogLevel  string
	LogFormat string

	Booking   BookingConfig
	Stripe    StripeConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	RabbitMQ  RabbitMQConfig
	Telegram  TelegramConfig

	MetricsEnabled bool
}

// BookingConfig holds the admission parameters that vary per deployment.
type BookingConfig struct {
	Location         *time.Location
	PhonePrefix      string
	SettingsSeedFile string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type RabbitMQConfig struct {
	URL string
}

type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING
	if cfg.IsProduction && strings.TrimSpace(cfg.ProdOrigins) == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required in production")
	}

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for verifying admin tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttl, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	// Booking rules
	tz := getEnv("BOOKING_TIMEZONE", "Asia/Dubai")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", tz, err)
	}
	cfg.Booking = BookingConfig{
		Location:         loc,
		PhonePrefix:      getEnv("PHONE_PREFIX", "+971"),
		SettingsSeedFile: getEnv("SETTINGS_SEED_FILE", "configs/settings.yaml"),
	}

	// Payment provider. Checkout and webhook endpoints refuse to work without these.
	cfg.Stripe = StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "aed")),
		SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/booking/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/booking/failed"),
	}

	// Redis (optional, enables rate limiting)
	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	if cfg.Redis.DB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	if cfg.RateLimit, err = loadRateLimit(); err != nil {
		return nil, err
	}

	cfg.RabbitMQ = RabbitMQConfig{URL: getEnv("RABBITMQ_URL", "")}

	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if v := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		cfg.Telegram.AdminChatID = chatID
	}

	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", true); err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}

	return cfg, nil
}

func loadRateLimit() (RateLimitConfig, error) {
	rl := RateLimitConfig{Prefix: getEnv("RATE_LIMIT_PREFIX", "rl")}

	var err error
	if rl.Enabled, err = getEnvAsBool("RATE_LIMIT_ENABLED", true); err != nil {
		return rl, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
	}
	if rl.Capacity, err = getEnvAsInt("RATE_LIMIT_CAPACITY", 20); err != nil {
		return rl, fmt.Errorf("invalid RATE_LIMIT_CAPACITY: %w", err)
	}
	if rl.RefillInterval, err = time.ParseDuration(getEnv("RATE_LIMIT_REFILL_INTERVAL", "3s")); err != nil {
		return rl, fmt.Errorf("invalid RATE_LIMIT_REFILL_INTERVAL: %w", err)
	}

	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// Keep idle buckets long enough to fully refill.
	rl.TTL = time.Duration(rl.Capacity+1) * rl.RefillInterval
	return rl, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}

	return val, nil
}
