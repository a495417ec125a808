package cron

import (
	"context"
	"time"

	"github.com/exhale-app/exhale-backend/internal/users"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

const sweepBatchSize = 500

// EntitlementSweepJob expires entitled users whose subscription expiry has
// passed. Webhooks are the primary signal; this sweep is the safety net for
// deliveries that never arrived.
type EntitlementSweepJob struct {
	users    *users.Service
	log      *logger.Logger
	interval time.Duration
	grace    time.Duration
}

func NewEntitlementSweepJob(svc *users.Service, log *logger.Logger, interval, grace time.Duration) *EntitlementSweepJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &EntitlementSweepJob{users: svc, log: log, interval: interval, grace: grace}
}

func (j *EntitlementSweepJob) Name() string {
	return "entitlement_sweep"
}

func (j *EntitlementSweepJob) Interval() time.Duration {
	return j.interval
}

// Run expires users whose entitlement lapsed more than the grace period ago.
// The grace window leaves room for late renewal webhooks.
func (j *EntitlementSweepJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.grace)
	expired, err := j.users.ExpireOverdue(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return err
	}
	if expired > 0 {
		j.log.Info(j.log.WithField(ctx, "expired", expired), "entitlement sweep expired users")
	}
	return nil
}
