package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/DanishNadar/ttp-tracker/api/handlers"
	"github.com/DanishNadar/ttp-tracker/api/middleware"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

// RegisterRoutes sets up the tracking endpoints
func RegisterRoutes(r *gin.Engine, tracking *handlers.TrackingHandler, m *metrics.Metrics) {
	if tracking == nil {
		panic("Tracking handler cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	tracked := r.Group("")
	tracked.Use(middleware.TracingMiddleware())
	{
		tracked.GET("/pixel/:file", tracking.Pixel())
		tracked.GET("/l/:id", tracking.Click())
	}
}
