package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"researchai/internal/config"
	"researchai/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InstrumentationName 是本服务 tracer 与 meter 的名字
const InstrumentationName = "researchai"

// Init 安装导出到滚动文件的 tracer/meter provider。
// 未启用时保持 otel 全局 no-op provider，返回的 shutdown 为空操作。
func Init(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	// 中途失败时按相反顺序释放已创建的资源
	var cleanups []func(context.Context) error
	fail := func(err error) (func(context.Context) error, error) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			if cerr := cleanups[i](ctx); cerr != nil {
				logger.Warnf("telemetry cleanup failed: %v", cerr)
			}
		}
		return nil, err
	}

	traceFile, err := rotatingFile(cfg.TraceFile)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, func(context.Context) error { return traceFile.Close() })

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return fail(fmt.Errorf("create trace exporter: %w", err))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	cleanups = append(cleanups, tp.Shutdown)

	metricsFile, err := rotatingFile(cfg.MetricsFile)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, func(context.Context) error { return metricsFile.Close() })

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricsFile))
	if err != nil {
		return fail(fmt.Errorf("create metric exporter: %w", err))
	}
	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	logger.Infof("telemetry enabled: traces=%s metrics=%s", cfg.TraceFile, cfg.MetricsFile)

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
			traceFile.Close(),
			metricsFile.Close(),
		)
	}
	return shutdown, nil
}

func rotatingFile(path string) (*lumberjack.Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create telemetry directory: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}, nil
}
