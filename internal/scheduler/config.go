package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/benchstay/internal/config"
)

// Config controls the reconcile job.
type Config struct {
	Enabled      bool
	Spec         string
	LookbackDays int
	LockTTL      time.Duration
	JobTimeout   time.Duration
	Location     *time.Location
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Spec:         "0 30 2 * * *",
		LookbackDays: 7,
		LockTTL:      10 * time.Minute,
		JobTimeout:   30 * time.Minute,
		Location:     time.UTC,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Spec) == "" {
		c.Spec = defaults.Spec
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = defaults.LookbackDays
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.Location == nil {
		c.Location = defaults.Location
	}
	return c
}

// ProvideConfig merges the environment settings with the reporting file.
func ProvideConfig(cfg config.Config, reporting *config.ReportingConfigHolder) Config {
	out := Config{
		Enabled: cfg.Reconcile.Enabled,
		LockTTL: cfg.Reconcile.LockTTL,
	}
	if loc, err := time.LoadLocation(strings.TrimSpace(cfg.Reconcile.Timezone)); err == nil {
		out.Location = loc
	}
	if reporting != nil {
		current := reporting.Get()
		out.Spec = current.ReconcileCron
		out.LookbackDays = current.LookbackDays
	}
	return out.withDefaults()
}
