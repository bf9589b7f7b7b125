// Package api exposes the wizard over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handlers, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), CORS(allowedOrigins))

	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/magnets", h.ListMagnets)
		v1.POST("/magnets/select", h.SelectMagnet)

		sessions := v1.Group("/wizard/sessions")
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PATCH("/:id/answers", h.UpdateAnswers)
		sessions.POST("/:id/next", h.Next)
		sessions.POST("/:id/back", h.Back)
		sessions.PUT("/:id/preview", h.UpdatePreview)
		sessions.POST("/:id/preview/analyze", h.AnalyzePreview)
		sessions.POST("/:id/submit", h.Submit)
		sessions.POST("/:id/reset", h.Reset)
	}

	return router
}
