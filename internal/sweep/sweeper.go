// Package sweep runs the background overdue check: list everyone, flag
// who slipped past the threshold, and emit one reminder each.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/vidtrack/internal/assign"
	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/geocoder89/vidtrack/internal/notifications"
	"github.com/geocoder89/vidtrack/internal/observability"
)

type UsersLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type Config struct {
	Interval time.Duration
}

type Sweeper struct {
	cfg      Config
	repo     UsersLister
	notifier notifications.Notifier
	metrics  *observability.Prom
	log      *slog.Logger
	nowFunc  func() time.Time
}

func New(cfg Config, repo UsersLister, notifier notifications.Notifier, metrics *observability.Prom, log *slog.Logger) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the clock. Useful for testing.
func (s *Sweeper) WithNowFunc(nowFunc func() time.Time) *Sweeper {
	s.nowFunc = nowFunc
	return s
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	failures := 0

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper received shutdown signal")
			return nil

		case <-ticker.C:
			err := s.Sweep(ctx)

			if err != nil {
				failures++
				delay := ExponentialBackoff(failures - 1)
				s.log.Error("sweep failed", "err", err, "retry_in", delay.String())

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				continue
			}

			failures = 0
		}
	}
}

// Sweep performs one pass. A reminder per overdue user; list failures
// abort the pass and surface to the caller for backoff.
func (s *Sweeper) Sweep(ctx context.Context) error {
	start := time.Now()

	users, err := s.repo.List(ctx)

	if err != nil {
		s.observe(start, "error")
		return err
	}

	now := s.nowFunc()
	overdue := 0

	for _, u := range users {
		if assign.Classify(u.LastVideoAssignedAt, now) != assign.StatusOverdue {
			continue
		}

		overdue++

		last := *u.LastVideoAssignedAt

		notifyErr := s.notifier.SendOverdueReminder(ctx, notifications.OverdueReminderInput{
			UserID:         u.ID,
			Name:           u.Name,
			LastAssignedAt: last,
			OverdueBy:      now.Sub(last) - assign.Threshold,
		})

		if notifyErr != nil {
			// a dropped reminder is retried on the next pass anyway
			s.log.Warn("overdue reminder failed", "user_id", u.ID, "err", notifyErr)
		}
	}

	if s.metrics != nil {
		s.metrics.OverdueUsers.Set(float64(overdue))
	}

	s.observe(start, "ok")

	s.log.Debug("sweep complete", "users", len(users), "overdue", overdue)

	return nil
}

func (s *Sweeper) observe(start time.Time, result string) {
	if s.metrics == nil {
		return
	}

	s.metrics.SweepResults.WithLabelValues(result).Inc()
	s.metrics.SweepDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
