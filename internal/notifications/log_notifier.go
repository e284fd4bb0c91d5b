package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier is the stand-in delivery channel: reminders go to the
// process log, where the operator tooling picks them up.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOverdueReminder(ctx context.Context, in OverdueReminderInput) error {
	n.log.InfoContext(ctx, "notification.overdue_reminder",
		"user_id", in.UserID,
		"name", in.Name,
		"last_assigned_at", in.LastAssignedAt,
		"overdue_by", in.OverdueBy.String(),
	)
	return nil
}
