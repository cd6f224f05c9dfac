// Package prom exports scheduler activity as Prometheus metrics.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

const namespace = "smoke"

// Outcome label values of smoke_jobs_finished_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// Metrics is a scheduler.Observer backed by Prometheus collectors.
type Metrics struct {
	submitted *prometheus.CounterVec
	finished  *prometheus.CounterVec
	active    *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
	queueWait *prometheus.HistogramVec
}

var _ scheduler.Observer = (*Metrics)(nil)

// New creates the job collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	labels := []string{"scheduler", "backend"}
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Jobs handed to a scheduler.",
		}, labels),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Jobs that finished, by outcome.",
		}, append(labels, "outcome")),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_active",
			Help:      "Jobs currently executing.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time spent executing a job.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, labels),
		queueWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_queue_wait_seconds",
			Help:      "Time between submission and start of a job.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, labels),
	}
	for _, c := range []prometheus.Collector{m.submitted, m.finished, m.active, m.duration, m.queueWait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) JobSubmitted(info scheduler.JobInfo) {
	m.submitted.WithLabelValues(info.Scheduler, info.Backend.String()).Inc()
}

func (m *Metrics) JobStarted(info scheduler.JobInfo) {
	m.active.WithLabelValues(info.Scheduler, info.Backend.String()).Inc()
	m.queueWait.WithLabelValues(info.Scheduler, info.Backend.String()).Observe(time.Since(info.Submitted).Seconds())
}

func (m *Metrics) JobFinished(info scheduler.JobInfo, dur time.Duration, err error, panicked bool) {
	name, backend := info.Scheduler, info.Backend.String()
	m.active.WithLabelValues(name, backend).Dec()
	m.duration.WithLabelValues(name, backend).Observe(dur.Seconds())
	outcome := OutcomeOK
	switch {
	case panicked:
		outcome = OutcomePanic
	case err != nil:
		outcome = OutcomeError
	}
	m.finished.WithLabelValues(name, backend, outcome).Inc()
}

// RegisterPool exports the live counters of p under the given scheduler name.
func RegisterPool(reg prometheus.Registerer, name string, p *scheduler.ThreadPool) error {
	constLabels := prometheus.Labels{"scheduler": name}
	gauge := func(metric, help string, f func(scheduler.PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "pool",
			Name:        metric,
			Help:        help,
			ConstLabels: constLabels,
		}, func() float64 { return f(p.Stats()) })
	}
	counter := func(metric, help string, f func(scheduler.PoolStats) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "pool",
			Name:        metric,
			Help:        help,
			ConstLabels: constLabels,
		}, func() float64 { return f(p.Stats()) })
	}
	collectors := []prometheus.Collector{
		gauge("bound", "Maximum concurrently running jobs.", func(s scheduler.PoolStats) float64 { return float64(s.Bound) }),
		gauge("active", "Jobs running on the pool.", func(s scheduler.PoolStats) float64 { return float64(s.Active) }),
		gauge("queued", "Jobs waiting for a free slot.", func(s scheduler.PoolStats) float64 { return float64(s.Queued) }),
		counter("submitted_total", "Jobs submitted to the pool.", func(s scheduler.PoolStats) float64 { return float64(s.Submitted) }),
		counter("completed_total", "Jobs the pool has completed.", func(s scheduler.PoolStats) float64 { return float64(s.Completed) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
