package notifications

import (
	"context"
	"time"
)

type OverdueReminderInput struct {
	UserID         string
	Name           string
	LastAssignedAt time.Time
	OverdueBy      time.Duration
}

type Notifier interface {
	SendOverdueReminder(ctx context.Context, input OverdueReminderInput) error
}
