// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New constructs a stopped scheduler.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  log,
	}
}

// Start registers job under schedule (standard cron spec or descriptors such
// as "@every 30m"), starts the runner and performs one immediate run.
func (s *Scheduler) Start(ctx context.Context, schedule string, name string, job Job) error {
	log := s.log.With(zap.String("job", name), zap.String("schedule", schedule))
	_, err := s.cron.AddFunc(schedule, func() { s.run(ctx, log, job) })
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info("scheduler started")

	s.run(ctx, log, job)
	return nil
}

func (s *Scheduler) run(ctx context.Context, log *zap.Logger, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		log.Error("scheduled job failed", zap.Error(err))
		return
	}
	log.Info("scheduled job completed", zap.Duration("took", time.Since(start)))
}

// Entries reports the registered cron entries.
func (s *Scheduler) Entries() []cron.Entry { return s.cron.Entries() }

// Stop halts the runner and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.SugaredLogger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
