package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memOutbox struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]*models.EmailTask
	order []primitive.ObjectID
}

func newMemOutbox(tasks ...models.EmailTask) *memOutbox {
	o := &memOutbox{tasks: map[primitive.ObjectID]*models.EmailTask{}}
	for _, t := range tasks {
		t := t
		t.ID = primitive.NewObjectID()
		t.Status = models.EmailPending
		o.tasks[t.ID] = &t
		o.order = append(o.order, t.ID)
	}
	return o
}

func (o *memOutbox) ClaimDue(_ context.Context, now time.Time) (*models.EmailTask, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, id := range o.order {
		t := o.tasks[id]
		if t.Status == models.EmailPending && !t.NextAttemptAt.After(now) {
			t.Status = models.EmailSending
			t.Attempts++
			t.UpdatedAt = now
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (o *memOutbox) MarkSent(_ context.Context, id primitive.ObjectID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.tasks[id]
	t.Status = models.EmailSent
	t.TextBody, t.HTMLBody = "", ""
	return nil
}

func (o *memOutbox) Reschedule(_ context.Context, id primitive.ObjectID, lastErr string, next time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.tasks[id]
	t.Status = models.EmailPending
	t.LastError = lastErr
	t.NextAttemptAt = next
	return nil
}

func (o *memOutbox) MarkFailed(_ context.Context, id primitive.ObjectID, lastErr string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.tasks[id]
	t.Status = models.EmailFailed
	t.LastError = lastErr
	return nil
}

func (o *memOutbox) ResetStuck(_ context.Context, cutoff time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var n int64
	for _, t := range o.tasks {
		if t.Status == models.EmailSending && t.UpdatedAt.Before(cutoff) {
			t.Status = models.EmailPending
			n++
		}
	}
	return n, nil
}

func (o *memOutbox) get(id primitive.ObjectID) models.EmailTask {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.tasks[id]
}

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Email
}

func (s *stubSender) Send(_ context.Context, msg mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{7, 32 * time.Minute},
		{8, time.Hour},
		{50, time.Hour},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempts); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestDrain_SendsAndClearsBodies(t *testing.T) {
	ob := newMemOutbox(
		models.EmailTask{Kind: models.EmailMemberCredentials, To: "a@example.com", Subject: "Hi", TextBody: "secret"},
		models.EmailTask{Kind: models.EmailRegistrationReceived, To: "b@example.com", Subject: "Thanks", TextBody: "thanks"},
	)
	sender := &stubSender{}
	d := NewMailDispatcher(ob, sender, zap.NewNop(), MailDispatcherConfig{})

	n, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if n != 2 || len(sender.sent) != 2 {
		t.Fatalf("sent %d (%d delivered), want 2", n, len(sender.sent))
	}
	for _, id := range ob.order {
		got := ob.get(id)
		if got.Status != models.EmailSent || got.TextBody != "" {
			t.Errorf("task %s: status %q body %q, want sent with no body", id.Hex(), got.Status, got.TextBody)
		}
	}
}

func TestDrain_RetriesThenFails(t *testing.T) {
	ob := newMemOutbox(models.EmailTask{Kind: models.EmailMemberCredentials, To: "a@example.com"})
	id := ob.order[0]
	sender := &stubSender{err: errors.New("relay down")}
	d := NewMailDispatcher(ob, sender, zap.NewNop(), MailDispatcherConfig{MaxAttempts: 3})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	for attempt := 1; attempt <= 3; attempt++ {
		if _, err := d.Drain(context.Background()); err != nil {
			t.Fatalf("Drain failed: %v", err)
		}
		got := ob.get(id)
		if got.Attempts != attempt {
			t.Fatalf("attempts = %d, want %d", got.Attempts, attempt)
		}
		if attempt < 3 {
			if got.Status != models.EmailPending {
				t.Fatalf("after attempt %d status = %q, want pending", attempt, got.Status)
			}
			if want := now.Add(Backoff(attempt)); !got.NextAttemptAt.Equal(want) {
				t.Errorf("next attempt = %v, want %v", got.NextAttemptAt, want)
			}
			// not due yet
			if n, _ := d.Drain(context.Background()); n != 0 || ob.get(id).Attempts != attempt {
				t.Fatal("task retried before its backoff elapsed")
			}
			now = got.NextAttemptAt
		}
	}

	got := ob.get(id)
	if got.Status != models.EmailFailed || got.LastError != "relay down" {
		t.Errorf("final task = %q (%q), want failed with last error", got.Status, got.LastError)
	}
}

func TestRecoverStuck(t *testing.T) {
	ob := newMemOutbox(models.EmailTask{To: "a@example.com"})
	d := NewMailDispatcher(ob, &stubSender{}, zap.NewNop(), MailDispatcherConfig{StuckAfter: time.Minute})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := ob.ClaimDue(context.Background(), start); err != nil {
		t.Fatal(err)
	}

	d.now = func() time.Time { return start.Add(30 * time.Second) }
	if n, _ := d.RecoverStuck(context.Background()); n != 0 {
		t.Errorf("recovered %d fresh tasks, want 0", n)
	}
	d.now = func() time.Time { return start.Add(2 * time.Minute) }
	if n, _ := d.RecoverStuck(context.Background()); n != 1 {
		t.Errorf("recovered %d, want 1", n)
	}
	if got := ob.get(ob.order[0]).Status; got != models.EmailPending {
		t.Errorf("status = %q, want pending", got)
	}
}

func TestKick_DrainsInBackground(t *testing.T) {
	ob := newMemOutbox(models.EmailTask{To: "a@example.com"})
	sender := &stubSender{}
	d := NewMailDispatcher(ob, sender, zap.NewNop(), MailDispatcherConfig{})
	d.Start()
	defer d.Stop()

	d.Kick()
	d.Kick() // coalesced, never blocks

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ob.get(ob.order[0]).Status == models.EmailSent {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("kicked dispatcher did not send the task")
}
