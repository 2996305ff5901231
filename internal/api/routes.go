package api

import (
	"github.com/gin-gonic/gin"

	"startup-foundry/internal/middleware"
	"startup-foundry/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers, jwtService *services.JWTService) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	// API routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		projects := api.Group("/projects")
		{
			projects.POST("/generate", handlers.GenerateProjectHandler)
			projects.GET("/:projectId", handlers.GetProjectHandler)
			projects.GET("/:projectId/archive", handlers.DownloadArchiveHandler)
			projects.POST("/:projectId/deploy", handlers.DeployProjectHandler)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("/:jobId", handlers.GetJobStatusHandler)
			jobs.GET("/:jobId/stream", handlers.StreamJobStatusHandler)
		}

		founders := api.Group("/founders")
		{
			founders.POST("/match", handlers.MatchHandler)
		}

		prompts := api.Group("/prompts")
		{
			prompts.POST("/sanitize", handlers.SanitizeHandler)
		}

		branding := api.Group("/branding")
		{
			branding.POST("/logo", handlers.GenerateLogoHandler)
			branding.POST("/promo-video", handlers.GeneratePromoVideoHandler)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
