package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/api"
	"github.com/nekogravitycat/camp-booking-backend/internal/auth"
	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/config"
	"github.com/nekogravitycat/camp-booking-backend/internal/notification"
	"github.com/nekogravitycat/camp-booking-backend/internal/payment"
	"github.com/nekogravitycat/camp-booking-backend/internal/ratelimit"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
	"github.com/nekogravitycat/camp-booking-backend/internal/stats"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	MetricsEnabled bool
	Logger         *logrus.Logger

	DBPool *pgxpool.Pool
	// Redis is optional; without it requests are not rate limited.
	Redis     *redis.Client
	RateLimit config.RateLimitConfig

	JWTSecret string
	JWTTTL    time.Duration

	SettingsDefaults settings.Settings
	Booking          booking.Options
	Stripe           config.StripeConfig
	Notifier         notification.Notifier
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var limiter ratelimit.Limiter
	if cfg.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(cfg.Redis, cfg.RateLimit)
	}
	rateLimit := ratelimit.Middleware(cfg.RateLimit, limiter, cfg.Logger)

	// Settings Module
	settingsRepo := settings.NewPgxRepository(cfg.DBPool)
	settingsService := settings.NewService(settingsRepo, cfg.SettingsDefaults, cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, settingsService, cfg.Notifier, cfg.Logger, cfg.Booking)

	// Payment Module
	var checkout payment.Checkout
	if cfg.Stripe.SecretKey != "" {
		checkout = payment.NewStripeCheckout(cfg.Stripe.SecretKey, cfg.Stripe.Currency, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	} else {
		cfg.Logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}
	paymentService := payment.NewService(bookingService, checkout, cfg.Logger)
	verifier := payment.NewStripeVerifier(cfg.Stripe.WebhookSecret)

	// Stats Module
	statsRepo := stats.NewPgxRepository(cfg.DBPool)
	statsService := stats.NewService(statsRepo)

	// API Router Config
	routerParams := api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		MetricsEnabled:  cfg.MetricsEnabled,
		Logger:          cfg.Logger,
		BookingService:  bookingService,
		SettingsService: settingsService,
		PaymentService:  paymentService,
		StatsService:    statsService,
		WebhookVerifier: verifier,
		JWTManager:      jwtManager,
		RateLimit:       rateLimit,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
