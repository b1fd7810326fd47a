package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	recalculations        metric.Int64Counter
	recalculationsSkipped metric.Int64Counter
	recordsImported       metric.Int64Counter
	importRowsRejected    metric.Int64Counter
	reportCacheHits       metric.Int64Counter
	reportCacheMisses     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "benchstay"
	}
	meter := provider.Meter(name)

	recalculations, err := meter.Int64Counter("benchstay_market_recalculations_total")
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("benchstay_market_recalculations_skipped_total")
	if err != nil {
		return nil, err
	}
	imported, err := meter.Int64Counter("benchstay_records_imported_total")
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("benchstay_import_rows_rejected_total")
	if err != nil {
		return nil, err
	}
	hits, err := meter.Int64Counter("benchstay_report_cache_hits_total")
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter("benchstay_report_cache_misses_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		recalculations:        recalculations,
		recalculationsSkipped: skipped,
		recordsImported:       imported,
		importRowsRejected:    rejected,
		reportCacheHits:       hits,
		reportCacheMisses:     misses,
	}, nil
}

// NewNoop returns instruments backed by the noop provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordRecalculation counts a completed market recalculation.
func (m *Metrics) RecordRecalculation(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("trigger", strings.TrimSpace(trigger)))
	m.recalculations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRecalculationSkipped counts dates skipped because the hotel had no record.
func (m *Metrics) RecordRecalculationSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.recalculationsSkipped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordImport counts imported and rejected workbook rows for one sheet.
func (m *Metrics) RecordImport(ctx context.Context, sheet string, imported, rejected int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("sheet", strings.TrimSpace(sheet)))...)
	if imported > 0 {
		m.recordsImported.Add(ctx, int64(imported), attrs)
	}
	if rejected > 0 {
		m.importRowsRejected.Add(ctx, int64(rejected), attrs)
	}
}

// RecordCacheLookup counts report cache hits and misses per report.
func (m *Metrics) RecordCacheLookup(ctx context.Context, report string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("report", strings.TrimSpace(report)))...)
	if hit {
		m.reportCacheHits.Add(ctx, 1, attrs)
		return
	}
	m.reportCacheMisses.Add(ctx, 1, attrs)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"trigger": {},
	"reason":  {},
	"sheet":   {},
	"report":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
