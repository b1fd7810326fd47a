package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// ReportingConfig controls display precision, report caching and the reconcile job.
type ReportingConfig struct {
	Currency         string        `mapstructure:"currency"`
	CurrencyPlaces   int32         `mapstructure:"currencyPlaces"`
	PercentagePlaces int32         `mapstructure:"percentagePlaces"`
	CacheTTL         time.Duration `mapstructure:"cacheTTL"`
	ReconcileCron    string        `mapstructure:"reconcileCron"`
	LookbackDays     int           `mapstructure:"lookbackDays"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		Currency:         "IDR",
		CurrencyPlaces:   2,
		PercentagePlaces: 1,
		CacheTTL:         5 * time.Minute,
		ReconcileCron:    "0 30 2 * * *",
		LookbackDays:     7,
	}
}

type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

// NewReportingConfigHolder loads reporting.yml and keeps it current while the file changes.
func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/benchstay")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BENCHSTAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportingConfig()
	v.SetDefault("reporting.currency", defaults.Currency)
	v.SetDefault("reporting.currencyPlaces", defaults.CurrencyPlaces)
	v.SetDefault("reporting.percentagePlaces", defaults.PercentagePlaces)
	v.SetDefault("reporting.cacheTTL", defaults.CacheTTL)
	v.SetDefault("reporting.reconcileCron", defaults.ReconcileCron)
	v.SetDefault("reporting.lookbackDays", defaults.LookbackDays)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticReportingConfigHolder(cfg)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticReportingConfigHolder wraps a fixed config, used by tests and when no file exists.
func NewStaticReportingConfigHolder(cfg ReportingConfig) *ReportingConfigHolder {
	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if cfg.CurrencyPlaces < 0 || cfg.PercentagePlaces < 0 {
		return errors.New("reporting precision cannot be negative")
	}
	if cfg.LookbackDays <= 0 {
		return errors.New("reporting.lookbackDays must be positive")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("reporting.cacheTTL cannot be negative")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.ReconcileCron); err != nil {
		return errors.New("reporting.reconcileCron is invalid: " + err.Error())
	}
	return nil
}
