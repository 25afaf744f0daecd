package observability

import (
	"context"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/config"
	"github.com/pablogoliveira/personia-hub/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	tracerProvider *sdktrace.TracerProvider
)

// InitTracer initializes the OpenTelemetry tracer for the named service
func InitTracer(serviceName string) {
	if config.AppConfig == nil || !config.AppConfig.TracingEnabled {
		logging.Logger.Info("tracing is disabled")
		return
	}

	ctx := context.Background()

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(config.AppConfig.TracingEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		logging.Logger.Error("failed to create OTLP exporter", zap.Error(err))
		return
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("v1.0.0"),
			semconv.DeploymentEnvironment(config.AppConfig.Environment),
		),
	)
	if err != nil {
		logging.Logger.Error("failed to create resource", zap.Error(err))
		return
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithMaxExportBatchSize(512),
			sdktrace.WithBatchTimeout(time.Second*10),
			sdktrace.WithMaxQueueSize(2048),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(config.AppConfig.TracingSampleRatio)),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logging.Logger.Info("tracer initialized",
		zap.String("service", serviceName),
		zap.String("endpoint", config.AppConfig.TracingEndpoint),
		zap.Float64("sample_ratio", config.AppConfig.TracingSampleRatio),
	)
}

// sampler follows the caller's sampling decision and keeps ratio of new traces
func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// ShutdownTracer flushes and shuts down the tracer provider
func ShutdownTracer() {
	if tracerProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logging.Logger.Error("failed to shutdown tracer provider", zap.Error(err))
	}
	tracerProvider = nil
}
