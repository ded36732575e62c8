package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/app"
	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/config"
	"github.com/nekogravitycat/camp-booking-backend/internal/db"
	"github.com/nekogravitycat/camp-booking-backend/internal/metrics"
	"github.com/nekogravitycat/camp-booking-backend/internal/notification"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	defaults, err := settings.LoadDefaults(cfg.Booking.SettingsSeedFile)
	if err != nil {
		log.Fatalf("failed to load settings defaults: %v", err)
	}

	rdb := connectRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	container := app.NewContainer(app.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		MetricsEnabled:   cfg.MetricsEnabled,
		Logger:           log,
		DBPool:           pool,
		Redis:            rdb,
		RateLimit:        cfg.RateLimit,
		JWTSecret:        cfg.JWTSecret,
		JWTTTL:           cfg.JWTAccessTokenTTL,
		SettingsDefaults: defaults,
		Booking: booking.Options{
			Timezone:    cfg.Booking.Location,
			PhonePrefix: cfg.Booking.PhonePrefix,
		},
		Stripe:   cfg.Stripe,
		Notifier: buildNotifier(cfg, log),
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Infof("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server exited gracefully")
}

// connectRedis returns nil when Redis is not configured or not reachable.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Warn("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, rate limiting disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func buildNotifier(cfg *config.Config, log *logrus.Logger) notification.Notifier {
	var notifiers []notification.Notifier

	if cfg.Telegram.BotToken != "" && cfg.Telegram.AdminChatID != 0 {
		bot, err := notification.NewTelegramBot(cfg.Telegram.BotToken)
		if err != nil {
			log.WithError(err).Warn("telegram bot unavailable, admin messages disabled")
		} else {
			notifiers = append(notifiers, notification.NewTelegramNotifier(bot, cfg.Telegram.AdminChatID))
		}
	}

	if cfg.RabbitMQ.URL != "" {
		notifiers = append(notifiers, notification.NewAMQPPublisher(cfg.RabbitMQ.URL, log))
	}

	if len(notifiers) == 0 {
		return notification.Nop{}
	}
	return notification.NewMulti(notifiers...)
}
