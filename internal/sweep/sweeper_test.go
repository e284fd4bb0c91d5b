package sweep_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/geocoder89/vidtrack/internal/notifications"
	"github.com/geocoder89/vidtrack/internal/sweep"
)

type fakeLister struct {
	listFn func(ctx context.Context) ([]user.User, error)
}

func (f *fakeLister) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return nil, nil
}

type fakeNotifier struct {
	sent []notifications.OverdueReminderInput
	err  error
}

func (f *fakeNotifier) SendOverdueReminder(ctx context.Context, in notifications.OverdueReminderInput) error {
	f.sent = append(f.sent, in)
	return f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSweepNotifiesOnlyOverdueUsers(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	overdueAt := now.Add(-31 * time.Hour)
	onTimeAt := now.Add(-29 * time.Hour)
	boundaryAt := now.Add(-30 * time.Hour)

	users := []user.User{
		{ID: "u1", Name: "Asha", LastVideoAssignedAt: &overdueAt},
		{ID: "u2", Name: "Ravi", LastVideoAssignedAt: &onTimeAt},
		{ID: "u3", Name: "Mina", LastVideoAssignedAt: nil},
		{ID: "u4", Name: "Dev", LastVideoAssignedAt: &boundaryAt},
	}

	lister := &fakeLister{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return users, nil
		},
	}

	notifier := &fakeNotifier{}

	s := sweep.New(sweep.Config{Interval: time.Minute}, lister, notifier, nil, quietLogger()).
		WithNowFunc(func() time.Time { return now })

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("reminders sent = %d, want 1 (%+v)", len(notifier.sent), notifier.sent)
	}

	got := notifier.sent[0]

	if got.UserID != "u1" {
		t.Fatalf("reminded user = %q, want u1", got.UserID)
	}

	if got.OverdueBy != time.Hour {
		t.Fatalf("overdue by = %v, want 1h", got.OverdueBy)
	}
}

func TestSweepSurfacesListErrors(t *testing.T) {
	wantErr := errors.New("store down")

	lister := &fakeLister{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return nil, wantErr
		},
	}

	notifier := &fakeNotifier{}

	s := sweep.New(sweep.Config{Interval: time.Minute}, lister, notifier, nil, quietLogger())

	if err := s.Sweep(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("sweep error = %v, want %v", err, wantErr)
	}

	if len(notifier.sent) != 0 {
		t.Fatalf("no reminders expected on list failure, got %d", len(notifier.sent))
	}
}

func TestSweepToleratesNotifierFailures(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	overdueAt := now.Add(-40 * time.Hour)

	lister := &fakeLister{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: "u1", Name: "Asha", LastVideoAssignedAt: &overdueAt},
				{ID: "u2", Name: "Ravi", LastVideoAssignedAt: &overdueAt},
			}, nil
		},
	}

	notifier := &fakeNotifier{err: errors.New("provider down")}

	s := sweep.New(sweep.Config{Interval: time.Minute}, lister, notifier, nil, quietLogger()).
		WithNowFunc(func() time.Time { return now })

	// delivery failures must not fail the pass or skip remaining users
	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("attempted reminders = %d, want 2", len(notifier.sent))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	lister := &fakeLister{}
	notifier := &fakeNotifier{}

	s := sweep.New(sweep.Config{Interval: 10 * time.Millisecond}, lister, notifier, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestExponentialBackoffCapsAndGrows(t *testing.T) {
	prev := time.Duration(0)

	for attempt := 0; attempt < 12; attempt++ {
		d := sweep.ExponentialBackoff(attempt)

		if d > 5*time.Minute+time.Second {
			t.Fatalf("attempt %d exceeded cap: %v", attempt, d)
		}

		if attempt < 3 && d < prev {
			t.Fatalf("backoff shrank early: attempt %d gave %v after %v", attempt, d, prev)
		}

		prev = d
	}
}
