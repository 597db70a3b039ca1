// Package scheduler runs the periodic job-deadline sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobboard/internal/middleware"
	"jobboard/internal/observability"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSpec is used when no schedule is configured.
const DefaultSpec = "@every 1h"

// Expirer closes jobs whose application deadline has passed.
type Expirer interface {
	ExpireDeadlines(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wraps robfig/cron and owns the expiry sweep.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	spec    string
	now     func() time.Time
}

// New validates spec and registers the sweep. An empty spec means DefaultSpec.
func New(expirer Expirer, spec string) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSpec
	}
	s := &Scheduler{
		cron:    cron.New(),
		expirer: expirer,
		spec:    spec,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid job expiry schedule %q: %w", spec, err)
	}
	return s, nil
}

// Spec returns the effective cron expression.
func (s *Scheduler) Spec() string { return s.spec }

// Start begins firing the sweep in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	middleware.Logger.Info("Job expiry scheduler started", slog.String("spec", s.spec))
}

// Stop halts the scheduler and waits for a running sweep, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		middleware.Logger.Warn("Job expiry scheduler stop timed out")
		return
	}
	middleware.Logger.Info("Job expiry scheduler stopped")
}

// RunOnce performs a single sweep and returns how many jobs it closed.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	ctx, end := observability.StartSpan(ctx, "scheduler.expire_jobs")
	n, err := s.expirer.ExpireDeadlines(ctx, s.now())
	trace.SpanFromContext(ctx).SetAttributes(observability.AttrJobsExpired.Int64(n))
	end(err)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Job expiry sweep failed", slog.String("error", err.Error()))
		return 0
	}
	if n > 0 {
		observability.JobsExpired.Add(float64(n))
		middleware.Logger.InfoContext(ctx, "Expired jobs past deadline", slog.Int64("count", n))
	}
	return n
}
