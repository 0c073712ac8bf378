// internal/app/router.go
package app

import (
	recoHandler "planwise-service/internal/handlers/recommendation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	RecommendationHandler *recoHandler.RecommendationHandler
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health & Metrics ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== Dataset Previews ====================
	api.GET("/users", h.RecommendationHandler.ListUsers)
	api.GET("/plans", h.RecommendationHandler.ListPlans)

	// ==================== Recommendations ====================
	api.GET("/users/:id/recommendations", h.RecommendationHandler.GetRecommendations)
	api.GET("/model", h.RecommendationHandler.GetModelInfo)

	// ==================== Admin ====================
	admin := api.Group("/admin")
	{
		admin.POST("/rebuild", h.RecommendationHandler.Rebuild)
	}
}
