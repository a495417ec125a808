package cron

import (
	"context"
	"time"
)

// Job is one scheduled unit of work.
type Job interface {
	Name() string
	// Interval is how often the job should run. The runner tick is the lower
	// bound; jobs with longer intervals are skipped until due.
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Registry holds the jobs a worker instance executes.
type Registry struct {
	jobs []Job
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

func (r *Registry) Jobs() []Job {
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}
