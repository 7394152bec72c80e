package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carewire/hospital-api/internal/handler"
	appointmentHandler "github.com/carewire/hospital-api/internal/handler/appointment"
	authHandler "github.com/carewire/hospital-api/internal/handler/auth"
	invoiceHandler "github.com/carewire/hospital-api/internal/handler/invoice"
	promHandler "github.com/carewire/hospital-api/internal/handler/prometheus"
	reportHandler "github.com/carewire/hospital-api/internal/handler/report"
	userHandler "github.com/carewire/hospital-api/internal/handler/user"
	"github.com/carewire/hospital-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authHandler.Handler
	userH        *userHandler.Handler
	appointmentH *appointmentHandler.Handler
	invoiceH     *invoiceHandler.Handler
	reportH      *reportHandler.Handler
	h            *handler.Handler
	prom         *promHandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	userH *userHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	invoiceH *invoiceHandler.Handler,
	reportH *reportHandler.Handler,
	h *handler.Handler,
	prom *promHandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		userH:        userH,
		appointmentH: appointmentH,
		invoiceH:     invoiceH,
		reportH:      reportH,
		h:            h,
		prom:         prom,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		prom.Middleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Timeout(config.RequestTimeout),
	)

	engine.Use(middleware.CORS(config.CORS))

	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api.Group("/auth"))

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.userH.RegisterRoutes(protected.Group("/users"))
	r.appointmentH.RegisterRoutes(protected.Group("/appointments"), r.auth)
	r.invoiceH.RegisterRoutes(protected.Group("/invoices"), r.auth)
	r.reportH.RegisterRoutes(protected.Group("/reports"), r.auth)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.prom.Handler())
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
