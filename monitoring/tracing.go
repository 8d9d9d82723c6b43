package monitoring

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
)

var traceProvider *sdktrace.TracerProvider

// InitTracing installs an OTLP/HTTP tracer provider. With an empty endpoint
// the global no-op provider stays in place and spans cost nothing.
func InitTracing(ctx context.Context, serviceName, endpoint string, log *zap.Logger) error {
	if endpoint == "" {
		log.Info("tracing disabled, OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(traceProvider)

	log.Info("OpenTelemetry tracing initialized", zap.String("endpoint", endpoint))
	return nil
}

func ShutdownTracing(ctx context.Context, log *zap.Logger) {
	if traceProvider == nil {
		return
	}
	if err := traceProvider.Shutdown(ctx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
}
