// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/workers"
	"go.uber.org/zap"
)

// MailDispatchJob requeues stuck email and then drains the outbox.
func MailDispatchJob(d *workers.MailDispatcher, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "mail-dispatch",
		Interval: interval,
		Timeout:  2 * time.Minute,
		Run: func(ctx context.Context) error {
			if _, err := d.RecoverStuck(ctx); err != nil {
				return err
			}
			n, err := d.Drain(ctx)
			if n > 0 {
				logger.Info("dispatched queued email", zap.Int("count", n))
			}
			return err
		},
	}
}

// SentMailPurger deletes delivered email older than a cutoff.
type SentMailPurger interface {
	PurgeSent(ctx context.Context, cutoff time.Time) (int64, error)
}

// SentMailPurgeJob removes delivered email older than retention, daily.
func SentMailPurgeJob(store SentMailPurger, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name: "sent-mail-purge",
		Spec: "@daily",
		Run: func(ctx context.Context) error {
			count, err := store.PurgeSent(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("purged sent email", zap.Int64("count", count), zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
