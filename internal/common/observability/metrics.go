package observability

import (
	"context"
	"time"

	"printmatch-workers/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options configures New.
type Options struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	TracingEnabled  bool
	TraceSampleRate float64
}

// Observability owns the OpenTelemetry meter and tracer providers. A zero
// value is usable and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
}

func New(opts Options, log logger.Logger) *Observability {
	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
		attribute.String("service.version", opts.ServiceVersion),
		attribute.String("deployment.environment", opts.Environment),
	)

	o := &Observability{tracer: noop.NewTracerProvider().Tracer(opts.ServiceName)}

	if opts.TracingEnabled {
		o.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.TraceSampleRate))),
		)
		otel.SetTracerProvider(o.tracerProvider)
		o.tracer = o.tracerProvider.Tracer(opts.ServiceName)
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter, otel metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return o
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(o.meterProvider)

	meter := o.meterProvider.Meter(opts.ServiceName)

	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// StartJobSpan opens a span for one Zeebe job.
func (o *Observability) StartJobSpan(ctx context.Context, taskType string, jobKey, processInstanceKey int64) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return tracer.Start(ctx, taskType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("zeebe.task_type", taskType),
			attribute.Int64("zeebe.job_key", jobKey),
			attribute.Int64("zeebe.process_instance_key", processInstanceKey),
		),
	)
}

// EndJobSpan records the outcome and closes the span.
func EndJobSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var firstErr error
	if o.tracerProvider != nil {
		firstErr = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
