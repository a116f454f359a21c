// internal/app/system/workers/maildispatcher.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Outbox is the queue the dispatcher drains.
type Outbox interface {
	ClaimDue(ctx context.Context, now time.Time) (*models.EmailTask, error)
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	Reschedule(ctx context.Context, id primitive.ObjectID, lastErr string, next time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, lastErr string) error
	ResetStuck(ctx context.Context, cutoff time.Time) (int64, error)
}

// Dispatch defaults.
const (
	DefaultMaxAttempts = 5
	DefaultBatchSize   = 50
	DefaultStuckAfter  = 10 * time.Minute

	baseBackoff = 30 * time.Second
	maxBackoff  = time.Hour
)

// Backoff is the delay before the next try of a task that has failed
// attempts times: 30s doubled per earlier failure, capped at one hour.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// MailDispatcherConfig tunes a MailDispatcher.
type MailDispatcherConfig struct {
	MaxAttempts int
	BatchSize   int
	StuckAfter  time.Duration
	SendTimeout time.Duration
}

// MailDispatcher is a background worker that delivers queued email. It
// drains the outbox when kicked and whenever the scheduler calls Drain.
type MailDispatcher struct {
	outbox Outbox
	sender mailer.Sender
	log    *zap.Logger
	cfg    MailDispatcherConfig
	now    func() time.Time

	kickCh chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex // one drain at a time
}

// NewMailDispatcher creates a dispatcher. Zero config values take defaults.
func NewMailDispatcher(outbox Outbox, sender mailer.Sender, logger *zap.Logger, cfg MailDispatcherConfig) *MailDispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.StuckAfter <= 0 {
		cfg.StuckAfter = DefaultStuckAfter
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &MailDispatcher{
		outbox: outbox,
		sender: sender,
		log:    logger,
		cfg:    cfg,
		now:    time.Now,
		kickCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Start begins listening for kicks.
func (d *MailDispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("mail dispatcher started",
		zap.Int("max_attempts", d.cfg.MaxAttempts),
		zap.Int("batch_size", d.cfg.BatchSize))
}

// Stop signals the worker to stop and waits for it to finish.
func (d *MailDispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.log.Info("mail dispatcher stopped")
}

// Kick asks the worker to drain soon. It never blocks.
func (d *MailDispatcher) Kick() {
	select {
	case d.kickCh <- struct{}{}:
	default:
	}
}

func (d *MailDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case <-d.kickCh:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if _, err := d.Drain(ctx); err != nil {
				d.log.Error("mail drain failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Drain delivers up to one batch of due tasks and returns how many were
// sent. Send failures are rescheduled, not returned; only queue errors are.
func (d *MailDispatcher) Drain(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sent := 0
	for i := 0; i < d.cfg.BatchSize; i++ {
		task, err := d.outbox.ClaimDue(ctx, d.now().UTC())
		if err != nil {
			return sent, err
		}
		if task == nil {
			return sent, nil
		}
		if d.deliver(ctx, task) {
			sent++
		}
	}
	return sent, nil
}

func (d *MailDispatcher) deliver(ctx context.Context, task *models.EmailTask) bool {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	err := d.sender.Send(sendCtx, mailer.Email{
		To:       task.To,
		Subject:  task.Subject,
		TextBody: task.TextBody,
		HTMLBody: task.HTMLBody,
	})
	cancel()

	log := d.log.With(
		zap.String("task_id", task.ID.Hex()),
		zap.String("kind", task.Kind),
		zap.Int("attempts", task.Attempts))

	if err == nil {
		if err := d.outbox.MarkSent(ctx, task.ID); err != nil {
			log.Error("mark email sent failed", zap.Error(err))
		}
		log.Info("email sent")
		return true
	}

	if task.Attempts >= d.cfg.MaxAttempts {
		if mErr := d.outbox.MarkFailed(ctx, task.ID, err.Error()); mErr != nil {
			log.Error("mark email failed failed", zap.Error(mErr))
		}
		log.Error("email delivery gave up", zap.Error(err))
		return false
	}

	next := d.now().UTC().Add(Backoff(task.Attempts))
	if rErr := d.outbox.Reschedule(ctx, task.ID, err.Error(), next); rErr != nil {
		log.Error("reschedule email failed", zap.Error(rErr))
	}
	log.Warn("email delivery failed; will retry", zap.Error(err), zap.Time("next_attempt_at", next))
	return false
}

// RecoverStuck returns tasks abandoned mid-send to the queue.
func (d *MailDispatcher) RecoverStuck(ctx context.Context) (int64, error) {
	n, err := d.outbox.ResetStuck(ctx, d.now().UTC().Add(-d.cfg.StuckAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.log.Warn("requeued stuck emails", zap.Int64("count", n))
	}
	return n, nil
}
