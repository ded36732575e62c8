package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/auth"
	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/camp-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/camp-booking-backend/internal/metrics"
	"github.com/nekogravitycat/camp-booking-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/camp-booking-backend/internal/payment/http"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
	settingsHttp "github.com/nekogravitycat/camp-booking-backend/internal/settings/http"
	"github.com/nekogravitycat/camp-booking-backend/internal/stats"
	statsHttp "github.com/nekogravitycat/camp-booking-backend/internal/stats/http"
)

// Config carries everything the router needs to mount the API.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	MetricsEnabled bool
	Logger         *logrus.Logger

	BookingService  booking.Service
	SettingsService settings.Service
	PaymentService  payment.Service
	StatsService    stats.Service
	WebhookVerifier payment.Verifier

	JWTManager *auth.JWTManager
	// RateLimit guards public write endpoints.
	RateLimit gin.HandlerFunc
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs request information as structured entries.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	config.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition", "Retry-After"}
	r.Use(cors.New(config))

	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks that the token was minted for an operator.
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	settingsHandler := settingsHttp.NewHandler(cfg.SettingsService)
	paymentHandler := paymentHttp.NewHandler(cfg.PaymentService, cfg.WebhookVerifier)
	statsHandler := statsHttp.NewHandler(cfg.StatsService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		bookingHttp.RegisterRoutes(v1, bookingHandler, rateLimit, authMiddleware, adminMiddleware)
		settingsHttp.RegisterRoutes(v1, settingsHandler, authMiddleware, adminMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler, rateLimit)
		statsHttp.RegisterRoutes(v1, statsHandler, authMiddleware, adminMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000", // Web frontend
			"http://localhost:8081", // Swagger
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
