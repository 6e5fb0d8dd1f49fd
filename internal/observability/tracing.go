package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
	"github.com/Denosadchiy/travel-buddy-ai/pkg/version"
)

// TracerName identifies this service's tracer.
const TracerName = "travel-buddy-ai"

// Attribute keys for planning spans.
const (
	AttrTripID    = "travelbuddy.trip.id"
	AttrPlanStage = "travelbuddy.plan.stage"
)

// TracingConfig controls span export. When disabled, spans are recorded
// against a provider that drops them.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	Insecure   bool
	SampleRate float64
}

// InitTracing installs the global tracer provider. When cfg.Enabled is
// false the provider has no exporter, so stage spans cost nothing. The
// returned shutdown flushes pending spans and must run before exit.
func InitTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp.Shutdown, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			"failed to connect trace exporter to "+cfg.Endpoint, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(TracerName),
			semconv.ServiceVersion(version.Version),
		),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to build trace resource", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRate)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartStage opens a span for one pipeline stage of a trip's planning run.
func StartStage(ctx context.Context, tripID types.ID, stage types.PlanStage) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "plan."+string(stage),
		trace.WithAttributes(
			attribute.String(AttrTripID, tripID.String()),
			attribute.String(AttrPlanStage, string(stage)),
		),
	)
}

// EndStage records the stage outcome on the span and ends it.
func EndStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
