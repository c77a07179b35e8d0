package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"researchai/internal/config"
	"researchai/internal/handler"
	"researchai/internal/model"
	"researchai/internal/report"
	"researchai/internal/service"
	"researchai/internal/telemetry"
	"researchai/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// .env 可选，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Fatalf("Failed to init telemetry: %v", err)
	}

	factory, err := model.NewFactory(cfg.LLM)
	if err != nil {
		logger.Fatalf("Failed to create model factory: %v", err)
	}

	chatService := service.NewChatService(cfg.LLM.Credential, factory)
	renderer := report.NewRenderer(cfg.Report.Title)

	if chatService.Connected() {
		logger.Infof("使用 %s 提供方，模型 %s", cfg.LLM.Provider, cfg.LLM.Model)
	} else {
		logger.Warnf("未找到 API 凭证（环境变量 %s），/api/chat 将返回 500", cfg.LLM.APIKeyEnv)
	}

	if cfg.App.Development() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(cfg, chatService, renderer)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Errorf("telemetry 关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}
