package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktake-scan-service/internal/broadcast"
	"stocktake-scan-service/internal/config"
	"stocktake-scan-service/internal/delivery/http/handler"
	"stocktake-scan-service/internal/infrastructure/database/postgres"
	"stocktake-scan-service/internal/logger"
	"stocktake-scan-service/internal/middleware"
	usecaseScan "stocktake-scan-service/internal/usecase/scan"
	usecaseSession "stocktake-scan-service/internal/usecase/session"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, hub *broadcast.Hub, broadcaster broadcast.Broadcaster) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	sessionRepository := postgres.NewSessionRepository(db)
	scanRepository := postgres.NewScanRepository(db)
	catalogRepository := postgres.NewCatalogRepository(db)

	sessionService := usecaseSession.NewService(sessionRepository)
	scanService := usecaseScan.NewService(scanRepository, sessionRepository, catalogRepository, broadcaster)

	sessionHandler := handler.NewSessionHandler(sessionService)
	scanHandler := handler.NewScanHandler(scanService)
	streamHandler := handler.NewStreamHandler(hub, cfg.Stream.KeepAliveInterval)

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			sessionHandler.RegisterRoutes(protected)
			scanHandler.RegisterRoutes(protected)
			streamHandler.RegisterRoutes(protected)
			protected.GET("/metrics/broadcast", streamHandler.BroadcastMetrics)
		}
	}

	logger.Info("All routes initialized")
	return router
}
