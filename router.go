package main

import (
	"net/http"

	"recycling-helper/config"
	"recycling-helper/handlers"
	"recycling-helper/llm"
	"recycling-helper/middleware"
	"recycling-helper/version"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ServiceName = "recycling-helper"

	EndPointHealth       = "/health"
	EndPointAnalyzeImage = "/analyze-image"
	EndPointVersion      = "/version"
	EndPointMetrics      = "/metrics"
)

func setupRouter(cfg *config.Config, client llm.Client) *gin.Engine {
	analyzeHandler := handlers.NewAnalyzeHandler(cfg, client)

	router := gin.Default()
	router.Use(middleware.MetricsMiddleware())

	router.GET(EndPointHealth, analyzeHandler.HealthCheck)
	router.GET(EndPointVersion, func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get(ServiceName, cfg.GeminiModel))
	})
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	// Only the analyze route is cross-origin.
	cors := middleware.CORSMiddleware(cfg.AllowedOrigins)
	router.POST(EndPointAnalyzeImage, cors, analyzeHandler.AnalyzeImage)
	router.OPTIONS(EndPointAnalyzeImage, cors, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return router
}
