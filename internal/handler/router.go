package handler

import (
	"net/http"
	"slices"
	"time"

	"researchai/internal/config"
	"researchai/internal/web"
	"researchai/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter 组装中间件、API 路由与页面
func NewRouter(cfg *config.Config, chatService Completer, renderer ReportRenderer) *gin.Engine {
	router := gin.New()

	router.Use(RequestID())
	router.Use(gin.LoggerWithWriter(logger.Writer()))
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	if slices.Contains(corsConfig.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	chatHandler := NewChatHandler(chatService)
	reportHandler := NewReportHandler(renderer, cfg.Report.Filename, cfg.App.Development())

	api := router.Group("/api")
	{
		api.Any("/status", only(http.MethodGet, chatHandler.Status))
		api.Any("/chat", only(http.MethodPost, chatHandler.Chat))
		api.Any("/generate-pdf", only(http.MethodPost, reportHandler.GeneratePDF))
	}

	web.Register(router, cfg.App.Name)

	return router
}
