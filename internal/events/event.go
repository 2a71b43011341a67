// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"requesthub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Requests Domain Events
// =============================================================================

// RequestReceived is published when a new request enters the system.
type RequestReceived struct {
	BaseEvent
	RequestID uuid.UUID `json:"requestId"`
	Source    string    `json:"source"`
	Product   string    `json:"product"`
	Priority  string    `json:"priority"`
	LeadScore int       `json:"leadScore"`
}

func (e RequestReceived) EventName() string { return "requests.request.received" }

// RequestAssigned is published when a request gets a responsible agent.
type RequestAssigned struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	AssigneeID   uuid.UUID `json:"assigneeId"`
	AssigneeName string    `json:"assigneeName"`
	Product      string    `json:"product"`
	Reason       string    `json:"reason"`
	Confidence   float64   `json:"confidence"`
	Priority     string    `json:"priority"`
}

func (e RequestAssigned) EventName() string { return "requests.request.assigned" }

// QuoteDrafted is published when the pricing engine creates a draft quote.
type QuoteDrafted struct {
	BaseEvent
	RequestID  uuid.UUID `json:"requestId"`
	QuoteID    uuid.UUID `json:"quoteId"`
	TotalPrice float64   `json:"totalPrice"`
	ValidUntil time.Time `json:"validUntil"`
}

func (e QuoteDrafted) EventName() string { return "requests.quote.drafted" }

// FollowUpScheduled is published when a follow-up date is set on a request.
type FollowUpScheduled struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	FollowUpType string    `json:"followUpType"`
	DueAt        time.Time `json:"dueAt"`
	Priority     string    `json:"priority"`
}

func (e FollowUpScheduled) EventName() string { return "requests.followup.scheduled" }

// FollowUpReminderDue is published by the reminder worker when a queued
// follow-up reminder fires.
type FollowUpReminderDue struct {
	BaseEvent
	RequestID     uuid.UUID `json:"requestId"`
	FollowUpType  string    `json:"followUpType"`
	DueAt         time.Time `json:"dueAt"`
	AssigneeName  string    `json:"assigneeName"`
	AssigneeEmail string    `json:"assigneeEmail"`
}

func (e FollowUpReminderDue) EventName() string { return "requests.followup.reminder_due" }

// RequestsMerged is published after duplicate requests are consolidated.
type RequestsMerged struct {
	BaseEvent
	PrimaryID    uuid.UUID   `json:"primaryId"`
	DuplicateIDs []uuid.UUID `json:"duplicateIds"`
	Conflicts    int         `json:"conflicts"`
}

func (e RequestsMerged) EventName() string { return "requests.request.merged" }

// RequestArchived is published when a stale request is archived.
type RequestArchived struct {
	BaseEvent
	RequestID uuid.UUID `json:"requestId"`
	Reason    string    `json:"reason"`
}

func (e RequestArchived) EventName() string { return "requests.request.archived" }
