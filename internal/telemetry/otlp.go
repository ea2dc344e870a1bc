package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fakeyudi/aist/internal/bottleneck"
)

const (
	serviceName    = "aist"
	serviceVersion = "0.1.0"
)

// OTLP exports records to an OpenTelemetry collector.
type OTLP struct {
	provider *sdkmetric.MeterProvider
	runID    string

	sessionsTotal    metric.Int64Counter
	tokensTotal      metric.Int64Counter
	costTotal        metric.Float64Counter
	bottlenecksTotal metric.Int64Counter
	wastedTotal      metric.Float64Counter
	durationHist     metric.Float64Histogram
}

// New creates an OTLP gRPC exporter. It returns ErrDisabled when cfg has
// no endpoint.
func New(ctx context.Context, cfg Config) (*OTLP, error) {
	if cfg.Endpoint == "" {
		return nil, ErrDisabled
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return newWithReader(ctx, sdkmetric.NewPeriodicReader(exp))
}

func newWithReader(ctx context.Context, reader sdkmetric.Reader) (*OTLP, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	e := &OTLP{provider: provider, runID: uuid.NewString()}

	if e.sessionsTotal, err = meter.Int64Counter(
		"aist_sessions_total",
		metric.WithDescription("Sessions analysed"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}
	if e.tokensTotal, err = meter.Int64Counter(
		"aist_tokens_total",
		metric.WithDescription("Billable input and output tokens"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("creating tokens counter: %w", err)
	}
	if e.costTotal, err = meter.Float64Counter(
		"aist_cost_usd_total",
		metric.WithDescription("Estimated token cost in USD"),
		metric.WithUnit("USD"),
	); err != nil {
		return nil, fmt.Errorf("creating cost counter: %w", err)
	}
	if e.bottlenecksTotal, err = meter.Int64Counter(
		"aist_bottlenecks_total",
		metric.WithDescription("Detected bottlenecks"),
		metric.WithUnit("{bottleneck}"),
	); err != nil {
		return nil, fmt.Errorf("creating bottlenecks counter: %w", err)
	}
	if e.wastedTotal, err = meter.Float64Counter(
		"aist_wasted_minutes_total",
		metric.WithDescription("Estimated minutes lost to bottlenecks"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating wasted minutes counter: %w", err)
	}
	if e.durationHist, err = meter.Float64Histogram(
		"aist_session_duration_minutes",
		metric.WithDescription("Session duration in minutes"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return e, nil
}

// RunID identifies the process that produced the exported points.
func (e *OTLP) RunID() string { return e.runID }

// ExportSession records r.
func (e *OTLP) ExportSession(ctx context.Context, r Record) error {
	base := []attribute.KeyValue{
		attribute.String("project", r.Project),
		attribute.String("run_id", e.runID),
	}
	opt := metric.WithAttributes(base...)

	e.sessionsTotal.Add(ctx, 1, opt)
	e.tokensTotal.Add(ctx, int64(r.InputTokens+r.OutputTokens), opt)
	e.costTotal.Add(ctx, r.CostUSD, opt)
	e.durationHist.Record(ctx, r.DurationMinutes, opt)

	for _, k := range bottleneck.Kinds {
		st, ok := r.Bottlenecks[k]
		if !ok {
			continue
		}
		kindOpt := metric.WithAttributes(append(base, attribute.String("bottleneck.kind", k.String()))...)
		e.bottlenecksTotal.Add(ctx, int64(st.Count), kindOpt)
		e.wastedTotal.Add(ctx, st.Minutes, kindOpt)
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *OTLP) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
