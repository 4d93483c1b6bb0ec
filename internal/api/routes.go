package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/sync/trigger", handler.TriggerSync)
		v1.GET("/runs/:run_id", handler.GetRunStatus)
	}
}

// NewRouter builds the engine with the middleware every binary uses.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(CORSMiddleware())

	SetupRoutes(router, handler)
	return router
}
