// Package email delivers outbound notification emails over SMTP.
package email

import (
	"context"

	"requesthub_backend/platform/config"
)

// Sender is the outbound email contract consumed by the notification
// module. All sends are best-effort from the caller's perspective.
type Sender interface {
	SendAssignmentEmail(ctx context.Context, toEmail, agentName, product, priority, requestID string) error
	SendFollowUpReminderEmail(ctx context.Context, toEmail, agentName, followUpType, dueAt, requestID string) error
	SendMergeSummaryEmail(ctx context.Context, toEmail, primaryID string, duplicateCount, conflictCount int) error
}

// NewSender returns the SMTP sender, or a no-op sender when email is not
// configured so development environments run without an SMTP server.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender drops all email silently.
type NoopSender struct{}

func (NoopSender) SendAssignmentEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendMergeSummaryEmail(context.Context, string, string, int, int) error {
	return nil
}
