package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

// ScopeName is the instrumentation scope used by NewGlobal.
const ScopeName = "github.com/NetPo4ki/go-smoke"

// Metrics is a scheduler.Observer recording OpenTelemetry instruments.
type Metrics struct {
	submitted metric.Int64Counter
	finished  metric.Int64Counter
	active    metric.Int64UpDownCounter
	duration  metric.Float64Histogram
}

var _ scheduler.Observer = (*Metrics)(nil)

// New creates the job instruments on meter.
func New(meter metric.Meter) (*Metrics, error) {
	submitted, err := meter.Int64Counter("smoke.jobs.submitted",
		metric.WithDescription("Jobs handed to a scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smoke.jobs.submitted counter: %w", err)
	}
	finished, err := meter.Int64Counter("smoke.jobs.finished",
		metric.WithDescription("Jobs that finished, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smoke.jobs.finished counter: %w", err)
	}
	active, err := meter.Int64UpDownCounter("smoke.jobs.active",
		metric.WithDescription("Jobs currently executing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smoke.jobs.active gauge: %w", err)
	}
	duration, err := meter.Float64Histogram("smoke.jobs.duration",
		metric.WithDescription("Time spent executing a job"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smoke.jobs.duration histogram: %w", err)
	}
	return &Metrics{submitted: submitted, finished: finished, active: active, duration: duration}, nil
}

// NewGlobal creates the instruments on the global meter provider.
func NewGlobal() (*Metrics, error) {
	return New(otel.Meter(ScopeName))
}

func jobAttrs(info scheduler.JobInfo) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("scheduler", info.Scheduler),
		attribute.String("backend", info.Backend.String()),
	}
}

func (m *Metrics) JobSubmitted(info scheduler.JobInfo) {
	m.submitted.Add(context.Background(), 1, metric.WithAttributes(jobAttrs(info)...))
}

func (m *Metrics) JobStarted(info scheduler.JobInfo) {
	m.active.Add(context.Background(), 1, metric.WithAttributes(jobAttrs(info)...))
}

func (m *Metrics) JobFinished(info scheduler.JobInfo, dur time.Duration, err error, panicked bool) {
	ctx := context.Background()
	attrs := jobAttrs(info)
	m.active.Add(ctx, -1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, dur.Seconds(), metric.WithAttributes(attrs...))
	outcome := "ok"
	switch {
	case panicked:
		outcome = "panic"
	case err != nil:
		outcome = "error"
	}
	m.finished.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("outcome", outcome))...))
}
