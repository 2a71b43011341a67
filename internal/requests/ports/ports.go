// Package ports declares the collaborator interfaces the requests engines
// consume. Implementations live in internal/adapters and internal/scheduler.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Candidate is an assignable agent as seen by the assignment engine.
type Candidate struct {
	ID           uuid.UUID
	Name         string
	Role         string
	Specialties  []string
	ServiceAreas []string
	Workload     int
}

// CandidateProvider supplies the eligible candidate pool for heuristic
// assignment. Workload reflects active assignments at fetch time.
type CandidateProvider interface {
	Candidates(ctx context.Context) ([]Candidate, error)
	CandidateByID(ctx context.Context, id uuid.UUID) (Candidate, error)
}

// Reminder is a single delayed follow-up notification.
type Reminder struct {
	RequestID uuid.UUID
	Type      string
	DueAt     time.Time
	RemindAt  time.Time
}

// ReminderScheduler enqueues delayed reminders. Best-effort from the
// engines' perspective; failures are logged, never propagated.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, reminder Reminder) error
}

// ContactValidator checks that a referenced contact exists and is reachable.
type ContactValidator interface {
	ValidateContact(ctx context.Context, id uuid.UUID) (bool, error)
}

// PropertyValidator checks that a referenced property exists.
type PropertyValidator interface {
	ValidateProperty(ctx context.Context, id uuid.UUID) (bool, error)
}
