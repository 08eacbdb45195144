package router

import (
	"github.com/gin-gonic/gin"

	"github.com/medtrack/medtrack-api/internal/handler"
	"github.com/medtrack/medtrack-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	authH       Handler
	medicationH Handler
	reminderH   Handler
	analyticsH  Handler
	h           *handler.Handler
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	medicationH Handler,
	reminderH Handler,
	analyticsH Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:      engine,
		auth:        auth,
		authH:       authH,
		medicationH: medicationH,
		reminderH:   reminderH,
		analyticsH:  analyticsH,
		h:           h,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.medicationH.RegisterRoutes(protected)
	r.reminderH.RegisterRoutes(protected)
	r.analyticsH.RegisterRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
