// Package api contains all endpoints available
package api

import (
	"bitwise74/leads-api/middleware"
	"bitwise74/leads-api/service"
	"context"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBodySize = 16 << 10

// EmailChecker is implemented by email.Service
type EmailChecker interface {
	TestConfiguration(ctx context.Context) bool
}

type Config struct {
	CORSOrigins []string
	JWTSecret   string
	// Submissions allowed per minute from one IP
	RateLimit int
	Turnstile middleware.TurnstileConfig
	// Source of /metrics, the default gatherer if nil
	Gatherer prometheus.Gatherer
}

// ConfigFromViper reads the router settings. The JWT secret is passed
// separately because serve may generate one.
func ConfigFromViper(jwtSecret string) Config {
	return Config{
		CORSOrigins: viper.GetStringSlice("host.cors"),
		JWTSecret:   jwtSecret,
		RateLimit:   viper.GetInt("security.rate_limit"),
		Turnstile:   middleware.TurnstileConfigFromViper(),
	}
}

type API struct {
	Requests *service.ResourceRequests
	Email    EmailChecker
	Router   *gin.Engine
	// Per-IP limiter of the public submit endpoint, serve runs its cleanup
	Limiter *middleware.IPRateLimiter

	store *persist.MemoryStore
}

func NewRouter(requests *service.ResourceRequests, mail EmailChecker, cfg Config) *API {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	a := &API{
		Requests: requests,
		Email:    mail,
		Limiter: middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(cfg.RateLimit) / 60,
			Burst:             cfg.RateLimit,
		}),
		store: persist.NewMemoryStore(time.Minute),
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD" || c.FullPath() == "/metrics"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("adminID"); v != "" {
					fields = append(fields, zap.String("adminID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	turnstile := middleware.NewTurnstileMiddleware(cfg.Turnstile)
	jwt := middleware.NewAdminJWTMiddleware(cfg.JWTSecret)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	rr := main.Group("/resource-request")
	{
		// POST /api/resource-request		-> Stores a lead asking for a resource
		rr.POST("", a.Limiter.Middleware(), turnstile, middleware.BodySizeLimiter(maxBodySize), a.ResourceRequestSubmit)

		// GET /api/resource-request/count	-> Returns how often a resource was requested
		rr.GET("/count", a.cacheFor(15), a.ResourceRequestCount)
	}

	admin := main.Group("/admin", jwt)
	{
		// GET /api/admin/resource-requests/stats		-> Aggregated request numbers
		admin.GET("/resource-requests/stats", a.cacheFor(30), a.AdminStats)

		// GET /api/admin/resource-requests/most-requested	-> Resources with the most demand
		admin.GET("/resource-requests/most-requested", a.AdminMostRequested)

		// GET /api/admin/resource-requests/pending		-> The pending queue
		admin.GET("/resource-requests/pending", a.AdminPending)

		// PATCH /api/admin/resource-requests/:id		-> Changes the status of a request
		admin.PATCH("/resource-requests/:id", middleware.BodySizeLimiter(1<<10), a.AdminUpdateStatus)

		// POST /api/admin/resource-requests/cleanup		-> Runs the retention cleanup now
		admin.POST("/resource-requests/cleanup", a.AdminCleanup)

		// POST /api/admin/reports/weekly			-> Sends the weekly report now
		admin.POST("/reports/weekly", a.AdminWeeklyReport)

		// POST /api/admin/email/test				-> Sends a test email to the admin
		admin.POST("/email/test", a.AdminEmailCheck)
	}

	return a
}

func (a *API) cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(a.store, time.Second*time.Duration(sec))
}

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}
