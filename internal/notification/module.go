// Package notification delivers best-effort notifications for domain
// events. Failures are logged and never surface to the publishing
// operation.
package notification

import (
	"context"
	"time"

	"requesthub_backend/internal/email"
	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/logger"
)

// Module dispatches emails in response to request lifecycle events.
type Module struct {
	sender email.Sender
	agents repository.AgentReader
	cfg    config.EmailConfig
	log    *logger.Logger
}

func New(sender email.Sender, agents repository.AgentReader, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, agents: agents, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it delivers.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.RequestAssigned{}.EventName(), events.HandlerFunc(m.onRequestAssigned))
	bus.Subscribe(events.FollowUpReminderDue{}.EventName(), events.HandlerFunc(m.onFollowUpReminderDue))
	bus.Subscribe(events.RequestsMerged{}.EventName(), events.HandlerFunc(m.onRequestsMerged))
}

func (m *Module) onRequestAssigned(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RequestAssigned)
	if !ok {
		return nil
	}

	agent, err := m.agents.GetAgentByID(ctx, e.AssigneeID)
	if err != nil {
		m.log.NotificationFailure("assignment_email", err)
		return nil
	}
	if agent.Email == "" {
		return nil
	}

	if err := m.sender.SendAssignmentEmail(ctx, agent.Email, agent.Name, e.Product, e.Priority, e.RequestID.String()); err != nil {
		m.log.NotificationFailure("assignment_email", err)
	}
	return nil
}

func (m *Module) onFollowUpReminderDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FollowUpReminderDue)
	if !ok {
		return nil
	}
	if e.AssigneeEmail == "" {
		return nil
	}

	if err := m.sender.SendFollowUpReminderEmail(ctx, e.AssigneeEmail, e.AssigneeName, e.FollowUpType, e.DueAt.Format(time.RFC1123), e.RequestID.String()); err != nil {
		m.log.NotificationFailure("follow_up_reminder_email", err)
	}
	return nil
}

func (m *Module) onRequestsMerged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RequestsMerged)
	if !ok {
		return nil
	}

	// Merge summaries go to the operations mailbox, which doubles as the
	// configured from address.
	to := m.cfg.GetEmailFromAddress()
	if to == "" {
		return nil
	}

	if err := m.sender.SendMergeSummaryEmail(ctx, to, e.PrimaryID.String(), len(e.DuplicateIDs), e.Conflicts); err != nil {
		m.log.NotificationFailure("merge_summary_email", err)
	}
	return nil
}
