package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"orion-backend/internal/service"
)

// NewRouter wires up the Gin router with middlewares and all route groups.
func NewRouter(
	logger *zap.Logger,
	corsOrigins []string,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	txH *TransactionHandler,
	analyticsH *AnalyticsHandler,
	insightH *InsightHandler,
	auditH *AuditHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(corsOrigins),
		metricsMiddleware(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	protected := r.Group("", JWTAuthMiddleware(jwtSvc))

	tx := protected.Group("/transactions")
	tx.POST("", txH.Create)
	tx.GET("", txH.List)
	tx.GET("/:id", txH.Get)
	tx.PUT("/:id", txH.Update)
	tx.DELETE("/:id", txH.Delete)

	analytics := protected.Group("/analytics")
	analytics.GET("/overview", analyticsH.Overview)
	analytics.GET("/trends", analyticsH.Trends)
	analytics.GET("/forecast", analyticsH.Forecast)

	insights := protected.Group("/insights")
	insights.GET("", insightH.List)
	insights.POST("/generate", insightH.Generate)
	insights.POST("/:id/dismiss", insightH.Dismiss)

	audit := protected.Group("/audit", RequireRole("admin"))
	audit.GET("", auditH.List)

	return r
}

// zapLoggerMiddleware logs one line per request.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware reflects allowed origins for the SPA frontend.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Writer.Header().Set("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
