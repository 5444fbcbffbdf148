package worker

import (
	"context"
	"sync/atomic"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker long running job, Run blocks until ctx is done
type Worker interface {
	Run(ctx context.Context) error
}

type OnWork func(ctx context.Context) error

// BaseJob runs OnWork on a cron schedule, a tick is skipped while the previous one is still running
type BaseJob struct {
	Name   string
	Spec   string
	Cron   *cron.Cron
	OnWork OnWork

	running int32
}

// Run schedules the job and blocks until ctx is done and the in-flight tick returned
func (job *BaseJob) Run(ctx context.Context) error {
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithField("worker", job.Name))

	job.Cron = cron.New()
	if _, err := job.Cron.AddFunc(job.Spec, func() { _ = job.Tick(ctx) }); err != nil {
		return err
	}

	job.Cron.Start()
	<-ctx.Done()
	<-job.Cron.Stop().Done()
	return nil
}

// Tick runs OnWork once unless a run is in progress
func (job *BaseJob) Tick(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&job.running, 0)

	if err := job.OnWork(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("worker: tick failed")
		return err
	}

	return nil
}
