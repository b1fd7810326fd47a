package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/benchstay/internal/config"
)

const (
	defaultSamplingRatio = 0.1
	defaultSlowQuery     = 200 * time.Millisecond
)

// Config is the validated logging and telemetry setup shared by the logger,
// tracing and metrics providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	SlowQueryThreshold time.Duration
}

// LoadConfig normalizes cfg.Observability. Unknown levels, formats and
// protocols fall back to info, json and grpc.
func LoadConfig(cfg config.Config) Config {
	raw := cfg.Observability

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "benchstay"
	}

	out := Config{
		ServiceName:          serviceName,
		Environment:          strings.ToLower(strings.TrimSpace(cfg.Environment)),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             oneOf(raw.LogLevel, "info", "debug", "info", "warn", "error"),
		LogFormat:            oneOf(raw.LogFormat, "json", "json", "console"),
		OtelEnabled:          raw.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(raw.OtelEndpoint),
		OtelExporterProtocol: oneOf(raw.OtelProtocol, "grpc", "grpc", "http/protobuf", "http"),
		OtelSamplingRatio:    raw.OtelSamplingRatio,
		SlowQueryThreshold:   raw.SlowQueryThreshold,
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = defaultSamplingRatio
	}
	if out.SlowQueryThreshold <= 0 {
		out.SlowQueryThreshold = defaultSlowQuery
	}
	// No collector to ship to.
	if out.OtelExporterEndpoint == "" {
		out.OtelEnabled = false
	}
	return out
}

// Debug reports whether verbose logging applies: an explicit debug level or
// a non-production environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func oneOf(value, def string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return def
}
