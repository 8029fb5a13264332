package notify

import (
	"context"
	"log/slog"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
)

// Notifier is told about assignments that have just become overdue.
type Notifier interface {
	NotifyOverdue(ctx context.Context, overdue []models.Assignment) error
}

// LogNotifier only writes a log line per assignment. It is used when SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) NotifyOverdue(ctx context.Context, overdue []models.Assignment) error {
	for _, a := range overdue {
		slog.WarnContext(ctx, "assignment overdue",
			"kind", a.Kind,
			"assignment_id", a.ID,
			"subject", a.SubjectName,
			"schedule", a.ScheduleTitle,
			"next_due", a.NextDue)
	}
	return nil
}

// New returns a Mailer when cfg is usable and a LogNotifier otherwise.
func New(cfg SMTPConfig) Notifier {
	if !cfg.Enabled() {
		return LogNotifier{}
	}
	return NewMailer(cfg)
}
