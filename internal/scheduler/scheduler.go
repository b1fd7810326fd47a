package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/benchstay/internal/clock"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	obsmetrics "github.com/smallbiznis/benchstay/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/pkg/dates"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobMarketReconcile = "market_reconcile"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Properties propertydomain.Service
	Market     marketdomain.Service
	Locker     Locker
	Metrics    *obsmetrics.SchedulerMetrics `optional:"true"`
	Config     Config                       `optional:"true"`
}

// Scheduler re-runs the market recalculation over a trailing window of dates
// so records written concurrently converge on the same snapshot.
type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	properties propertydomain.Service
	market     marketdomain.Service
	locker     Locker
	metrics    *obsmetrics.SchedulerMetrics
	cron       *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Properties == nil || p.Market == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	locker := p.Locker
	if locker == nil {
		locker = localLocker{}
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        cfg,
		genID:      p.GenID,
		clock:      p.Clock,
		properties: p.Properties,
		market:     p.Market,
		locker:     locker,
		metrics:    p.Metrics,
	}, nil
}

// Start registers the reconcile job on a seconds-enabled cron runner.
func (s *Scheduler) Start() error {
	runner := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(s.cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := runner.AddFunc(s.cfg.Spec, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Error("scheduler.job.failed", zap.String("job", JobMarketReconcile), zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register %s: %w", JobMarketReconcile, err)
	}
	s.cron = runner
	runner.Start()
	s.log.Info("scheduler started", zap.String("spec", s.cfg.Spec), zap.Int("lookback_days", s.cfg.LookbackDays))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs the reconcile job immediately.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, JobMarketReconcile, s.cfg.JobTimeout, s.ReconcileJob)
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)

	err := fn(ctx)
	s.metrics.ObserveRun(name, s.clock.Now().Sub(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrLockNotObtained):
		s.metrics.IncError(name, obsmetrics.JobReasonLockNotObtained)
		log.Info("job skipped, another replica holds the lock")
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.metrics.IncError(name, obsmetrics.JobReasonDeadlineExceeded)
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return nil
	default:
		s.metrics.IncError(name, obsmetrics.JobReasonRecalculation)
		return fmt.Errorf("%s: %w", name, err)
	}
}

// ReconcileJob recalculates every hotel over the look-back window ending yesterday.
// A failing date is logged and the remaining dates still run.
func (s *Scheduler) ReconcileJob(ctx context.Context) error {
	release, err := s.locker.Obtain(ctx, reconcileLockKey, s.cfg.LockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger(ctx).Warn("failed to release reconcile lock", zap.Error(err))
		}
	}()

	hotels, err := s.properties.ListHotels(ctx)
	if err != nil {
		return fmt.Errorf("list hotels: %w", err)
	}

	start, end := Window(clock.Today(s.clock, s.cfg.Location), s.cfg.LookbackDays)
	run := jobRunFromContext(ctx)
	ctx = marketdomain.WithTrigger(ctx, marketdomain.TriggerReconcile)

	var errs error
	processed := 0
	for _, hotel := range hotels {
		for _, date := range dates.Days(start, end) {
			if err := ctx.Err(); err != nil {
				return errors.Join(errs, err)
			}
			if _, err := s.market.RecalculateDate(ctx, hotel.ID, date); err != nil {
				run.IncError()
				s.logger(ctx).Error("reconcile date failed",
					zap.Int64("hotel_id", hotel.ID.Int64()),
					zap.String("date", dates.Format(date)),
					zap.Error(err),
				)
				errs = errors.Join(errs, err)
				continue
			}
			processed++
		}
	}

	run.AddProcessed(processed)
	s.metrics.AddDates(JobMarketReconcile, processed)
	return errs
}

// Window returns the inclusive range of lookback days before today.
func Window(today time.Time, lookback int) (time.Time, time.Time) {
	today = dates.Normalize(today)
	if lookback <= 0 {
		lookback = 1
	}
	return today.AddDate(0, 0, -lookback), today.AddDate(0, 0, -1)
}
