package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	JobReasonDeadlineExceeded = "deadline_exceeded"
	JobReasonLockNotObtained  = "lock_not_obtained"
	JobReasonRecalculation    = "recalculation_failed"
	JobReasonUnknown          = "unknown"
)

// SchedulerMetrics tracks the reconcile job on the Prometheus registry served at /metrics.
type SchedulerMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobErrors      *prometheus.CounterVec
	datesProcessed *prometheus.CounterVec
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// SchedulerWithConfig returns the process-wide scheduler metrics, registering them once.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

// NewSchedulerMetricsForTest builds scheduler metrics on a private registry.
func NewSchedulerMetricsForTest(registerer prometheus.Registerer) *SchedulerMetrics {
	return newSchedulerMetrics(registerer, Config{})
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "benchstay"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": serviceName, "env": environment}

	m := &SchedulerMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "benchstay_scheduler_job_runs_total",
			Help:        "Scheduler job runs by name.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "benchstay_scheduler_job_duration_seconds",
			Help:        "Scheduler job latency.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "benchstay_scheduler_job_errors_total",
			Help:        "Scheduler job errors by low-cardinality reason.",
			ConstLabels: constLabels,
		}, []string{"job", "reason"}),
		datesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "benchstay_scheduler_dates_recalculated_total",
			Help:        "Hotel dates recalculated by the reconcile job.",
			ConstLabels: constLabels,
		}, []string{"job"}),
	}

	if registerer != nil {
		m.jobRuns = registerCollector(registerer, m.jobRuns)
		m.jobDuration = registerCollector(registerer, m.jobDuration)
		m.jobErrors = registerCollector(registerer, m.jobErrors)
		m.datesProcessed = registerCollector(registerer, m.datesProcessed)
	}
	return m
}

func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveRun records one job run and its duration.
func (m *SchedulerMetrics) ObserveRun(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncError records a job failure.
func (m *SchedulerMetrics) IncError(job, reason string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(reason) == "" {
		reason = JobReasonUnknown
	}
	m.jobErrors.WithLabelValues(job, reason).Inc()
}

// AddDates records how many hotel dates a run recalculated.
func (m *SchedulerMetrics) AddDates(job string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.datesProcessed.WithLabelValues(job).Add(float64(n))
}
