package http

import (
	"github.com/gin-gonic/gin"
	"github.com/handycook/foodscan/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		words := v1.Group("/words")
		{
			words.GET("", handler.GetWords)
			words.POST("/classify", handler.ClassifyWords)
			words.POST("/feedback", handler.RecordFeedback)
		}

		v1.POST("/correct-ocr", handler.CorrectOCR)
	}

	return router
}
