package handler

import (
	"net/http"

	"chain-connector/internal/adapter/http/middleware"
	"chain-connector/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Connector      ports.ConnectorStatus
	HealthCheckers []ports.HealthChecker
	// Metrics serves MetricsPath; nil disables the endpoint.
	Metrics     http.Handler
	MetricsPath string
	// RateLimiter guards /api/v1; nil disables rate limiting.
	RateLimiter middleware.Limiter
	RateLimit   middleware.RateLimitRule
	Mode        string // gin mode: debug, release, test
	Logger      zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.Metrics))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/openapi.yaml", SwaggerSpec)
	}

	v1 := r.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(middleware.RateLimiter(deps.RateLimiter, "api", deps.RateLimit, deps.Logger))
	}

	status := NewStatusHandler(deps.Connector)
	v1.GET("/account", status.GetAccount)
	channels := v1.Group("/channels")
	{
		channels.GET("", status.ListChannels)
		channels.GET("/:counterparty", status.GetChannel)
	}

	return r
}
