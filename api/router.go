package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytmp3-go/api/handlers"
	"github.com/yourusername/ytmp3-go/api/middleware"
	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/pkg/logger"
)

// SetupRouter wires the HTTP API onto queueMgr. Jobs submitted without a
// folder write into defaultFolder. /ready requires every binary in tools.
func SetupRouter(
	queueMgr *app.QueueManager,
	logs *logger.LoggerAdapter,
	defaultFolder string,
	logsDir string,
	tools map[string]string,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(logs))
	router.Use(middleware.Recovery(logs))

	healthHandler := handlers.NewHealthHandler(queueMgr, tools)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		jobHandler := handlers.NewJobHandler(queueMgr, defaultFolder, logs.Logger())
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.AddJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/stats", jobHandler.GetStats)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.POST("/:id/cancel", jobHandler.CancelJob)
		}
		v1.POST("/stop", jobHandler.StopCurrent)
		v1.GET("/progress", jobHandler.GetProgress)
		v1.GET("/events", handlers.NewEventWebSocketHandler(queueMgr, logs.Logger()).HandleWebSocket)

		if logsDir != "" {
			logHandler := handlers.NewLogHandler(logsDir)
			logStream := handlers.NewLogWebSocketHandler(logsDir, logs.Logger())
			logRoutes := v1.Group("/logs")
			{
				logRoutes.GET("/categories", logHandler.GetCategories)
				logRoutes.GET("/stream", logStream.HandleWebSocket)
				logRoutes.GET("/:category", logHandler.GetLogs)
				logRoutes.GET("/:category/search", logHandler.SearchLogs)
				logRoutes.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	return router
}
