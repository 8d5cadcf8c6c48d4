// Package api exposes the dashboard backend over HTTP with gin.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energy-traffic-light/internal/api/handlers"
	"energy-traffic-light/internal/api/middleware"
	"energy-traffic-light/internal/app"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(a *app.App) *gin.Engine {
	if a.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	logger := a.Logger.With(zap.String("component", "http"))

	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, a.Metrics))
	router.Use(middleware.CORS(a.Config.Server.AllowedOrigins))

	simHandler := handlers.NewSimulationHandler(a.Store, a.Clock)
	chartHandler := handlers.NewChartHandler(a.Charts)
	datasetHandler := handlers.NewDatasetHandler(a.Store, a, a.Config.Data.Source)
	widgetHandler := handlers.NewWidgetHandler(a.Board)
	replayHandler := handlers.NewReplayHandler(a.Store, a.Replay)
	exportHandler := handlers.NewExportHandler(a.Store, a.Charts, a.Metrics, logger)
	streamHandler := handlers.NewStreamHandler(a.Broker, a.Hub, a.Clock)
	tariffHandler := handlers.NewTariffHandler(a.Pricer)
	rankHandler := handlers.NewRankHandler(a.Store)

	router.GET("/health", handlers.Health(a.Store, a.Clock, a.Broker))
	if a.Metrics != nil {
		router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/simulation", simHandler.GetState)
		api.POST("/simulation/play", simHandler.Play)
		api.POST("/simulation/pause", simHandler.Pause)
		api.POST("/simulation/toggle", simHandler.Toggle)
		api.PUT("/simulation/speed", simHandler.SetSpeed)
		api.POST("/simulation/jump", simHandler.Jump)
		api.POST("/simulation/advance", simHandler.Advance)

		api.GET("/series/:kind", chartHandler.GetSeries)
		api.GET("/charts/:file", chartHandler.RenderChart)
		api.PUT("/charts/size", chartHandler.Resize)

		api.GET("/datasets", datasetHandler.ListDatasets)
		api.POST("/datasets/reload", datasetHandler.ReloadDatasets)

		api.GET("/widgets", widgetHandler.Summary)
		api.GET("/widgets/traffic-light", widgetHandler.TrafficLight)
		api.GET("/widgets/bill", widgetHandler.Bill)
		api.GET("/widgets/gamification", widgetHandler.Gamification)
		api.GET("/widgets/price", widgetHandler.Price)
		api.GET("/widgets/insights", widgetHandler.Insights)
		api.GET("/widgets/carbon", widgetHandler.Carbon)
		api.GET("/widgets/notifications", widgetHandler.Notifications)
		api.DELETE("/widgets/notifications/:id", widgetHandler.DismissNotification)

		api.GET("/tariffs", tariffHandler.ListTariffs)
		api.GET("/rank/hours", rankHandler.RankHours)
		api.GET("/replay", replayHandler.RunReplay)

		api.GET("/export.xlsx", exportHandler.XLSX)
		api.GET("/export.pdf", exportHandler.PDF)

		api.GET("/stream", streamHandler.SSE)
		api.GET("/ws", streamHandler.WebSocket)
	}

	serveStatic(router, a.Config.Server.StaticDir, logger)
	return router
}

// serveStatic serves the built SPA and falls back to index.html for non-API
// routes.
func serveStatic(router *gin.Engine, staticDir string, logger *zap.Logger) {
	if _, err := os.Stat(staticDir); err != nil {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		router.NoRoute(notFound)
		return
	}
	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	logger.Info("serving static files", zap.String("dir", staticDir))
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
}
