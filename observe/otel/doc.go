// Package otel provides an OpenTelemetry metrics observer for schedulers.
// It records job submissions, outcomes and durations on a metric.Meter.
package otel
