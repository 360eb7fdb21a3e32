// Package telemetry sets up OpenTelemetry tracing and metrics for block execution.
//
// When disabled, the global no-op providers are used so instrumentation calls stay
// safe without an exporter.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kdougan/js-notebook/internal/version"
)

const instrumentationName = "github.com/kdougan/js-notebook"

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName  string
	OTLPEndpoint string  // e.g., "localhost:4317"; empty disables export
	SampleRate   float64 // 0.0 to 1.0
	Insecure     bool
	BatchTimeout time.Duration
}

// Enabled reports whether an exporter should be started.
func (c *Config) Enabled() bool {
	return c != nil && c.OTLPEndpoint != ""
}

// Provider owns the tracer, the meter and the block execution instruments.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter

	blocksExecuted metric.Int64Counter
	blocksFailed   metric.Int64Counter
	blocksSkipped  metric.Int64Counter
	blockDuration  metric.Float64Histogram
	activeRuns     metric.Int64UpDownCounter
}

// Noop returns a provider backed by the global providers without exporters.
func Noop() *Provider {
	p := &Provider{}
	// Instruments from the global no-op meter cannot fail.
	_ = p.initInstruments()
	return p
}

// New creates a provider. A config without an endpoint yields Noop().
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if !cfg.Enabled() {
		return Noop(), nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = "jsnb"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(name),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{}
	if err := p.initTraceProvider(ctx, cfg, res); err != nil {
		return nil, fmt.Errorf("failed to init trace provider: %w", err)
	}
	if err := p.initMetricProvider(ctx, cfg, res); err != nil {
		return nil, fmt.Errorf("failed to init metric provider: %w", err)
	}
	if err := p.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to init instruments: %w", err)
	}
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, cfg *Config, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}
	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, cfg *Config, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initInstruments() error {
	p.tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(version.Version))
	p.meter = otel.Meter(instrumentationName, metric.WithInstrumentationVersion(version.Version))

	var err error
	if p.blocksExecuted, err = p.meter.Int64Counter("jsnb.blocks.executed",
		metric.WithDescription("Code blocks submitted for evaluation"),
		metric.WithUnit("{block}"),
	); err != nil {
		return err
	}
	if p.blocksFailed, err = p.meter.Int64Counter("jsnb.blocks.failed",
		metric.WithDescription("Code blocks committed as failed"),
		metric.WithUnit("{block}"),
	); err != nil {
		return err
	}
	if p.blocksSkipped, err = p.meter.Int64Counter("jsnb.blocks.skipped",
		metric.WithDescription("Code blocks left untouched by a run"),
		metric.WithUnit("{block}"),
	); err != nil {
		return err
	}
	if p.blockDuration, err = p.meter.Float64Histogram("jsnb.block.duration",
		metric.WithDescription("Block evaluation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	); err != nil {
		return err
	}
	if p.activeRuns, err = p.meter.Int64UpDownCounter("jsnb.runs.active",
		metric.WithDescription("Runs currently in flight"),
		metric.WithUnit("{run}"),
	); err != nil {
		return err
	}
	return nil
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("failed to shutdown trace provider: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to shutdown metric provider: %w", err)
		}
	}
	return firstErr
}

// StartRun starts a span for a run and counts it as active until the returned
// function is called.
func (p *Provider) StartRun(ctx context.Context, sheetID string, start int, force bool) (context.Context, func()) {
	attrs := []attribute.KeyValue{
		attribute.String("jsnb.sheet.id", sheetID),
		attribute.Int("jsnb.run.start", start),
		attribute.Bool("jsnb.run.force", force),
	}
	ctx, span := p.tracer.Start(ctx, "notebook.run", trace.WithAttributes(attrs...))
	p.activeRuns.Add(ctx, 1)
	return ctx, func() {
		p.activeRuns.Add(ctx, -1)
		span.End()
	}
}

// TrackBlock starts a span for one block evaluation. The returned function records
// the outcome; a nil error counts as success.
func (p *Provider) TrackBlock(ctx context.Context, blockID string, index int) (context.Context, func(error)) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("jsnb.block.id", blockID),
		attribute.Int("jsnb.block.index", index),
	}
	ctx, span := p.tracer.Start(ctx, "notebook.block", trace.WithAttributes(attrs...))
	p.blocksExecuted.Add(ctx, 1)
	return ctx, func(err error) {
		p.blockDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			p.blocksFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", fmt.Sprintf("%T", err))))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// RecordSkip counts a code block a run decided not to execute.
func (p *Provider) RecordSkip(ctx context.Context, decision string) {
	p.blocksSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("jsnb.decision", decision)))
}
