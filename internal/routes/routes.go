package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"diagnosis-app-server/internal/config"
	"diagnosis-app-server/internal/handlers"
	"diagnosis-app-server/internal/middleware"
)

// NewRouter builds the gin engine with the global middleware stack and all routes.
func NewRouter(cfg *config.Config, log zerolog.Logger, diagnosisHandler *handlers.DiagnosisHandler) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, diagnosisHandler)

	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, diagnosisHandler *handlers.DiagnosisHandler) {
	api := router.Group("/api")
	{
		diagnoses := api.Group("/diagnoses")
		{
			// Latest diagnosis for a client
			diagnoses.GET("/:clientId", diagnosisHandler.GetDiagnosis)

			// Create a diagnosis, or merge into the client's existing one
			diagnoses.POST("/:clientId", diagnosisHandler.CreateOrMergeDiagnosis)

			// Update by diagnosis record id (not client id)
			diagnoses.PUT("/:id", diagnosisHandler.UpdateDiagnosis)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
