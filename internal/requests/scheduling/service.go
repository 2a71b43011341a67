// Package scheduling computes follow-up due dates and reminder plans.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// Follow-up types.
const (
	TypeInitialContact     = "initial_contact"
	TypeInformationRequest = "information_request"
	TypeQuoteFollowUp      = "quote_follow_up"
	TypeCheckIn            = "check_in"
	TypeClosing            = "closing"
)

// initialContactSLA is the time-to-first-contact window per priority.
var initialContactSLA = map[string]time.Duration{
	domain.PriorityUrgent: 2 * time.Hour,
	domain.PriorityHigh:   4 * time.Hour,
	domain.PriorityMedium: 24 * time.Hour,
	domain.PriorityLow:    48 * time.Hour,
}

// typeOffsets holds the fixed due-date offsets for non-priority-driven types.
var typeOffsets = map[string]time.Duration{
	TypeInformationRequest: 48 * time.Hour,
	TypeQuoteFollowUp:      72 * time.Hour,
	TypeCheckIn:            168 * time.Hour,
	TypeClosing:            24 * time.Hour,
}

// defaultReminderOffsets lists days-before-due per type.
var defaultReminderOffsets = map[string][]int{
	TypeInitialContact:     {1},
	TypeInformationRequest: {1},
	TypeQuoteFollowUp:      {1, 3, 7, 14},
	TypeCheckIn:            {1, 3},
	TypeClosing:            {1},
}

// Input describes a follow-up to schedule. A nil ScheduledDate is computed
// from (type, priority); nil ReminderOffsets fall back to the type default.
type Input struct {
	Type            string     `json:"type"`
	ScheduledDate   *time.Time `json:"scheduledDate"`
	ReminderOffsets []int      `json:"reminderOffsets"`
	AutoReschedule  bool       `json:"autoReschedule"`
}

// Schedule is the computed follow-up plan.
type Schedule struct {
	RequestID       uuid.UUID  `json:"requestId"`
	Type            string     `json:"type"`
	ScheduledDate   time.Time  `json:"scheduledDate"`
	Priority        string     `json:"priority"`
	AssigneeID      *uuid.UUID `json:"assigneeId,omitempty"`
	ReminderOffsets []int      `json:"reminderOffsets"`
	RemindersQueued int        `json:"remindersQueued"`
	AutoReschedule  bool       `json:"autoReschedule"`
}

// Store is the slice of the request store the scheduler consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.NoteStore
}

// Service schedules follow-ups and their reminders.
type Service struct {
	store     Store
	reminders ports.ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func NewService(store Store, reminders ports.ReminderScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, reminders: reminders, bus: bus, log: log, now: time.Now}
}

// Schedule computes (or accepts) a due date for a follow-up, persists it on
// the request, appends a note, and enqueues one reminder per offset whose
// reminder date is still in the future. Past reminders are skipped silently.
func (s *Service) Schedule(ctx context.Context, requestID uuid.UUID, input Input) (Schedule, error) {
	const op = "scheduling.Schedule"

	if !isValidType(input.Type) {
		return Schedule{}, apperr.Validation(fmt.Sprintf("unknown follow-up type %q", input.Type)).WithOp(op)
	}

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Schedule{}, apperr.NotFound("request not found").WithOp(op)
		}
		return Schedule{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}

	now := s.now()
	dueAt := s.dueDate(input, req.Priority, now)

	if _, err := s.store.Update(ctx, requestID, repository.UpdateRequestParams{FollowUpDate: &dueAt}); err != nil {
		return Schedule{}, apperr.Downstream("failed to persist follow-up date", err).WithOp(op)
	}

	if _, err := s.store.AddNote(ctx, repository.CreateNoteParams{
		RequestID:        requestID,
		Content:          fmt.Sprintf("Follow-up (%s) scheduled for %s", input.Type, dueAt.Format(time.RFC3339)),
		Type:             repository.NoteTypeFollowUp,
		Author:           "follow-up-scheduler",
		FollowUpRequired: true,
		FollowUpDate:     &dueAt,
	}); err != nil {
		s.log.StoreError("scheduling.note", err)
	}

	offsets := input.ReminderOffsets
	if offsets == nil {
		offsets = defaultReminderOffsets[input.Type]
	}

	queued := 0
	for _, daysBefore := range offsets {
		// Reminders need the queue; without it the follow-up date still sticks.
		if s.reminders == nil {
			break
		}
		remindAt := dueAt.AddDate(0, 0, -daysBefore)
		if !remindAt.After(now) {
			continue
		}
		err := s.reminders.ScheduleReminder(ctx, ports.Reminder{
			RequestID: requestID,
			Type:      input.Type,
			DueAt:     dueAt,
			RemindAt:  remindAt,
		})
		if err != nil {
			s.log.NotificationFailure("reminder", err)
			continue
		}
		queued++
	}

	s.bus.Publish(ctx, events.FollowUpScheduled{
		BaseEvent:    events.NewBaseEvent(),
		RequestID:    requestID,
		FollowUpType: input.Type,
		DueAt:        dueAt,
		Priority:     req.Priority,
	})

	return Schedule{
		RequestID:       requestID,
		Type:            input.Type,
		ScheduledDate:   dueAt,
		Priority:        req.Priority,
		AssigneeID:      req.AssignedAgentID,
		ReminderOffsets: offsets,
		RemindersQueued: queued,
		AutoReschedule:  input.AutoReschedule,
	}, nil
}

// ScheduleInitialContact schedules the post-assignment contact follow-up
// with the SLA window for the given priority.
func (s *Service) ScheduleInitialContact(ctx context.Context, requestID uuid.UUID) error {
	_, err := s.Schedule(ctx, requestID, Input{Type: TypeInitialContact})
	return err
}

// ScheduleQuoteFollowUp schedules the post-quote follow-up with its longer
// SLA and staggered reminder offsets.
func (s *Service) ScheduleQuoteFollowUp(ctx context.Context, requestID uuid.UUID) error {
	_, err := s.Schedule(ctx, requestID, Input{Type: TypeQuoteFollowUp})
	return err
}

func (s *Service) dueDate(input Input, priority string, now time.Time) time.Time {
	if input.ScheduledDate != nil {
		return *input.ScheduledDate
	}
	if input.Type == TypeInitialContact {
		window, ok := initialContactSLA[priority]
		if !ok {
			window = initialContactSLA[domain.PriorityLow]
		}
		return now.Add(window)
	}
	return now.Add(typeOffsets[input.Type])
}

func isValidType(t string) bool {
	if t == TypeInitialContact {
		return true
	}
	_, ok := typeOffsets[t]
	return ok
}
