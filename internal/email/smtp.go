package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers notification emails via a direct SMTP connection.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendAssignmentEmail(ctx context.Context, toEmail, agentName, product, priority, requestID string) error {
	content, err := renderEmailTemplate("assignment.html", assignmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "New request assigned",
			Heading: "A request has been assigned to you",
		},
		AgentName: agentName,
		Product:   product,
		Priority:  priority,
		RequestID: requestID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAssignment, content)
}

func (s *SMTPSender) SendFollowUpReminderEmail(ctx context.Context, toEmail, agentName, followUpType, dueAt, requestID string) error {
	content, err := renderEmailTemplate("reminder.html", reminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up reminder",
			Heading: "A follow-up is coming due",
		},
		AgentName:    agentName,
		FollowUpType: followUpType,
		DueAt:        dueAt,
		RequestID:    requestID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectReminder, content)
}

func (s *SMTPSender) SendMergeSummaryEmail(ctx context.Context, toEmail, primaryID string, duplicateCount, conflictCount int) error {
	content, err := renderEmailTemplate("merge.html", mergeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Requests merged",
			Heading: "Duplicate requests were consolidated",
		},
		PrimaryID:      primaryID,
		DuplicateCount: duplicateCount,
		ConflictCount:  conflictCount,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectMerge, content)
}
