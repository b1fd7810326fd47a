package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerMetricsCountRunsAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetricsForTest(reg)

	m.ObserveRun("market_reconcile", 2*time.Second)
	m.ObserveRun("market_reconcile", time.Second)
	m.IncError("market_reconcile", "")
	m.AddDates("market_reconcile", 7)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.jobRuns.WithLabelValues("market_reconcile")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobErrors.WithLabelValues("market_reconcile", JobReasonUnknown)))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.datesProcessed.WithLabelValues("market_reconcile")))
}

func TestSchedulerMetricsRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewSchedulerMetricsForTest(reg)
	second := NewSchedulerMetricsForTest(reg)

	first.ObserveRun("market_reconcile", time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(second.jobRuns.WithLabelValues("market_reconcile")))
}
