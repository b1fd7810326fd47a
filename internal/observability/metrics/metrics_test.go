package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsHighCardinalityLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("trigger", "record_write"),
		attribute.String("hotel_id", "42"),
		attribute.String("report", "performance"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("trigger"), attrs[0].Key)
	assert.Equal(t, attribute.Key("report"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRecalculation(context.Background(), "record_write")
		m.RecordImport(context.Background(), "Hotel", 1, 1)
		m.RecordCacheLookup(context.Background(), "performance", true)
	})
}

func TestRecordRecalculationIsCollected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(Config{ServiceName: "benchstay-test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRecalculation(ctx, "record_write")
	m.RecordRecalculation(ctx, "record_write")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "benchstay_market_recalculations_total" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}
