package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
	"github.com/ZanzyTHEbar/glucoscreen/internal/security"
)

// router builds the gin engine. Middleware order matters: monitoring sees
// every response, errors wrap the handlers, and security guards run before
// any rate limit or session lookup.
func (a *app) router() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(a.security.Config().TrustedProxies); err != nil {
		a.logger.Warn("Invalid trusted proxy list", "error", err)
	}

	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(a.logger, a.cfg.Server.MaxUploadBytes))

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(security.SecurityHeadersMiddleware(a.cfg.Security.EnableHSTS))
	r.Use(a.security.CORS())
	r.Use(a.security.RequestTimeout)
	r.Use(a.security.ValidateContentType)
	r.Use(a.limiter.IPRateLimitMiddleware())
	r.Use(a.security.SessionAuth)

	r.GET("/health", monitoring.HealthHandler(a.metrics, a.probe))

	api := r.Group("/api", security.APIContentSecurityPolicy(), a.compression.Handler())
	{
		api.POST("/session", a.handleStartSession)

		scored := api.Group("", a.limiter.SessionRateLimitMiddleware())
		scored.POST("/assess", a.handleAssess)
		scored.POST("/assess/document", a.security.LimitUploadSize, a.handleAssessDocument)

		api.GET("/assessments", security.RequireSession, a.handleListAssessments)
		api.DELETE("/assessments", security.RequireSession, a.handleDeleteAssessments)

		api.POST("/contact", a.limiter.EndpointRateLimitMiddleware("contact", a.cfg.RateLimit.ContactPerMinute), a.handleContact)

		api.GET("/model", a.handleModel)
		api.GET("/ratelimit", a.limiter.HandleRateLimitStatus())
		api.GET("/privacy", a.handlePrivacy)
	}

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/metrics", func(c *gin.Context) {
		stats := a.metrics.GetStats()
		stats["pipeline_state"] = a.pipeline.State().String()
		stats["rate_limits"] = a.metrics.GetRateLimitStats()
		c.JSON(http.StatusOK, stats)
	})
	r.GET("/metrics/prometheus", monitoring.PrometheusHandler())

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.cache.Stats())
	})
	r.GET("/ratelimit/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.limiter.GetStats())
	})

	// Connection pool stats endpoints
	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":      "database",
			"stats":     a.db.GetPoolStats(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.GET("/pools/compression", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":      "compression",
			"stats":     a.compression.GetStats(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.GET("/pools/redis", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":      "redis",
			"stats":     a.redis.GetPoolStats(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return r
}
