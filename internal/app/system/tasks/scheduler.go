// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of periodic work. Spec is a cron expression; when it
// is empty the job runs every Interval.
type Job struct {
	Name     string
	Spec     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

func (j Job) schedule() (string, error) {
	if j.Spec != "" {
		return j.Spec, nil
	}
	if j.Interval <= 0 {
		return "", fmt.Errorf("job %q has neither spec nor interval", j.Name)
	}
	return "@every " + j.Interval.String(), nil
}

// Scheduler runs Jobs on a UTC cron. Overlapping runs of the same job are
// skipped and panics are recovered.
type Scheduler struct {
	cron   *cron.Cron
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{log: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job.
func (s *Scheduler) Add(job Job) error {
	spec, err := job.schedule()
	if err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	s.log.Info("job scheduled", zap.String("job", job.Name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) runJob(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.once.Do(func() {
		done := s.cron.Stop()
		s.cancel()
		select {
		case <-done.Done():
		case <-ctx.Done():
			s.log.Warn("scheduler stop timed out")
		}
	})
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, zap.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, zap.Error(err), zap.Any("kv", keysAndValues))
}
