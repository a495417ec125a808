package cron

import (
	"context"
	"time"

	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
)

// Locker guards job executions across worker instances.
type Locker interface {
	Acquire(ctx context.Context, name string) (func(), bool, error)
}

// ServiceParams holds dependencies for the cron runner.
type ServiceParams struct {
	Registry *Registry
	Lock     Locker
	Log      *logger.Logger
	Metrics  *metrics.CronJobMetrics
	Tick     time.Duration
}

// Service drives registered jobs on a fixed tick, one run per job interval,
// under a per-job distributed lock.
type Service struct {
	registry *Registry
	lock     Locker
	log      *logger.Logger
	metrics  *metrics.CronJobMetrics
	tick     time.Duration
	lastRun  map[string]time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cron: registry is required")
	}
	if params.Lock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cron: lock is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cron: logger is required")
	}
	tick := params.Tick
	if tick <= 0 {
		tick = time.Minute
	}
	return &Service{
		registry: params.Registry,
		lock:     params.Lock,
		log:      params.Log,
		metrics:  params.Metrics,
		tick:     tick,
		lastRun:  make(map[string]time.Time),
	}, nil
}

// Run blocks until ctx is cancelled, executing due jobs every tick. The
// first tick fires immediately so a fresh deploy does not wait a full
// interval before sweeping.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.runDueJobs(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "cron runner stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runDueJobs(ctx)
		}
	}
}

func (s *Service) runDueJobs(ctx context.Context) {
	now := time.Now()
	for _, job := range s.registry.Jobs() {
		if last, ok := s.lastRun[job.Name()]; ok && now.Sub(last) < job.Interval() {
			continue
		}
		s.lastRun[job.Name()] = now
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.log.WithField(ctx, "job", job.Name())

	release, acquired, err := s.lock.Acquire(jobCtx, job.Name())
	if err != nil {
		s.log.Error(jobCtx, "acquiring job lock", err)
		return
	}
	if !acquired {
		s.log.Info(jobCtx, "job lock held elsewhere, skipping")
		return
	}
	defer release()

	start := time.Now()
	err = job.Run(jobCtx)
	s.metrics.ObserveDuration(job.Name(), time.Since(start))
	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.log.Error(jobCtx, "job failed", err)
		return
	}
	s.metrics.IncSuccess(job.Name())
	s.log.Info(jobCtx, "job completed")
}
