// Package tracing wires OpenTelemetry spans around MCP tool calls and the
// Trello requests they make.
//
// Tracing is off unless OTEL_ENABLED=true or an OTLP endpoint is set. Without
// an endpoint, spans are printed to stderr; stdout belongs to the stdio
// transport.
package tracing

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this server.
const TracerName = "trello-mcp-server"

// Config selects the exporter and sampling.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string    // host:port; empty selects the stdout exporter
	OTLPInsecure   bool      // plain HTTP to the collector
	SampleRate     float64   // 0..1, applied to root spans
	Writer         io.Writer // stdout exporter destination; nil means stderr
}

// FromEnv reads the standard OTEL_* variables.
func FromEnv(version string) Config {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg := Config{
		ServiceName:    TracerName,
		ServiceVersion: version,
		Environment:    "development",
		Enabled:        endpoint != "" || envBool("OTEL_ENABLED", false),
		OTLPEndpoint:   endpoint,
		OTLPInsecure:   envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SampleRate:     1.0,
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("OTEL_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil {
		cfg.SampleRate = v
	}
	return cfg
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// Setup installs the global tracer provider and returns its shutdown func.
// A disabled config installs nothing and returns a no-op.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(w))
}

// sampler keeps child spans with their parent's decision.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// StartSpan starts a span on the server's tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// AddToolAttributes tags a span with the MCP tool being called.
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddEndpointAttributes tags a span with the Trello endpoint being invoked.
// The path is the template, never the expanded URL.
func AddEndpointAttributes(span trace.Span, endpoint, method, pathTemplate, invocationID string) {
	span.SetAttributes(
		attribute.String("trello.endpoint", endpoint),
		attribute.String("http.request.method", method),
		attribute.String("url.template", pathTemplate),
	)
	if invocationID != "" {
		span.SetAttributes(attribute.String("trello.invocation_id", invocationID))
	}
}

// AddResponseAttributes records the Trello response status.
func AddResponseAttributes(span trace.Span, statusCode int, noContent bool) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", statusCode),
		attribute.Bool("trello.no_content", noContent),
	)
}

// RecordError marks the span failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
