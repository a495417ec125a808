package cron

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/exhale-app/exhale-backend/pkg/logger"
	"github.com/exhale-app/exhale-backend/pkg/metrics"
)

type fakeJob struct {
	name     string
	interval time.Duration
	runs     int
	err      error
}

func (j *fakeJob) Name() string            { return j.name }
func (j *fakeJob) Interval() time.Duration { return j.interval }
func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type fakeLocker struct {
	acquired bool
	releases int
}

func (l *fakeLocker) Acquire(ctx context.Context, name string) (func(), bool, error) {
	if !l.acquired {
		return nil, false, nil
	}
	return func() { l.releases++ }, true, nil
}

func newRunner(t *testing.T, registry *Registry, locker Locker) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Registry: registry,
		Lock:     locker,
		Log:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics:  metrics.NewCronJobMetrics(nil),
		Tick:     time.Minute,
	})
	if err != nil {
		t.Fatalf("building runner: %v", err)
	}
	return svc
}

func TestRunDueJobsExecutesAndReleasesLock(t *testing.T) {
	job := &fakeJob{name: "sweep", interval: time.Minute}
	registry := NewRegistry()
	registry.Register(job)
	locker := &fakeLocker{acquired: true}

	runner := newRunner(t, registry, locker)
	runner.runDueJobs(context.Background())

	if job.runs != 1 {
		t.Fatalf("expected one run, got %d", job.runs)
	}
	if locker.releases != 1 {
		t.Fatalf("expected lock released once, got %d", locker.releases)
	}
}

func TestRunDueJobsSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &fakeJob{name: "sweep", interval: time.Minute}
	registry := NewRegistry()
	registry.Register(job)

	runner := newRunner(t, registry, &fakeLocker{acquired: false})
	runner.runDueJobs(context.Background())

	if job.runs != 0 {
		t.Fatalf("expected no runs, got %d", job.runs)
	}
}

func TestRunDueJobsHonorsJobInterval(t *testing.T) {
	job := &fakeJob{name: "sweep", interval: time.Hour}
	registry := NewRegistry()
	registry.Register(job)
	locker := &fakeLocker{acquired: true}

	runner := newRunner(t, registry, locker)
	runner.runDueJobs(context.Background())
	runner.runDueJobs(context.Background())

	if job.runs != 1 {
		t.Fatalf("expected interval to suppress second run, got %d runs", job.runs)
	}
}

func TestRunDueJobsSurvivesJobFailure(t *testing.T) {
	failing := &fakeJob{name: "broken", interval: time.Minute, err: fmt.Errorf("boom")}
	healthy := &fakeJob{name: "sweep", interval: time.Minute}
	registry := NewRegistry()
	registry.Register(failing)
	registry.Register(healthy)
	locker := &fakeLocker{acquired: true}

	runner := newRunner(t, registry, locker)
	runner.runDueJobs(context.Background())

	if failing.runs != 1 || healthy.runs != 1 {
		t.Fatalf("expected both jobs attempted, got %d and %d", failing.runs, healthy.runs)
	}
	if locker.releases != 2 {
		t.Fatalf("expected both locks released, got %d", locker.releases)
	}
}
