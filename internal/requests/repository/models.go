package repository

import (
	"time"

	"github.com/google/uuid"
)

// Request is the central entity of the requests bounded context.
// The repository owns it exclusively; engines read and write through the
// repository and hold no long-lived references.
type Request struct {
	ID                 uuid.UUID
	Status             string
	Priority           string
	LeadSource         string
	Product            string
	Message            string
	Budget             string
	RelationToProperty string
	ContactID          *uuid.UUID
	PropertyID         *uuid.UUID
	Area               string
	AssignedAgentID    *uuid.UUID
	AssignedAgentName  *string
	AssignedAgentRole  *string
	FollowUpDate       *time.Time
	RequestedVisitAt   *time.Time
	LeadScore          int
	HasAttachments     bool
	QuoteTotal         *float64
	ArchivedAt         *time.Time
	MergedIntoID       *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Note types for the append-only request annotation trail.
const (
	NoteTypeInternal = "internal"
	NoteTypeFollowUp = "follow_up"
	NoteTypeSystem   = "system"
)

// RequestNote is an append-only annotation on a request. Notes are never
// mutated after creation.
type RequestNote struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	Content          string
	Type             string
	Author           string
	IsPrivate        bool
	FollowUpRequired bool
	FollowUpDate     *time.Time
	CreatedAt        time.Time
}

// RequestAssignment records who is responsible for a request. At most one
// assignment per request is active; prior assignments are history.
type RequestAssignment struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	AssigneeID       uuid.UUID
	AssigneeName     string
	AssigneeRole     string
	Reason           string
	Confidence       float64
	WorkloadBefore   int
	WorkloadAfter    int
	SpecialtyMatched bool
	Active           bool
	CreatedAt        time.Time
}

// Quote lifecycle statuses.
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// Quote is a priced proposal derived from a request. Immutable once
// created except for its lifecycle status.
type Quote struct {
	ID               uuid.UUID
	RequestID        uuid.UUID
	BasePrice        float64
	ComplexityFactor float64
	MaterialsFactor  float64
	TimelineFactor   float64
	LocationFactor   float64
	TotalPrice       float64
	ValidityDays     int
	Status           string
	Notes            string
	CreatedAt        time.Time
}

// Agent is a row of the agent directory backing the candidate provider.
type Agent struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Role         string
	Specialties  []string
	ServiceAreas []string
	Available    bool
	CreatedAt    time.Time
}

// CreateRequestParams carries the fields accepted when creating a request.
type CreateRequestParams struct {
	LeadSource         string
	Product            string
	Message            string
	Budget             string
	RelationToProperty string
	ContactID          *uuid.UUID
	PropertyID         *uuid.UUID
	Area               string
	RequestedVisitAt   *time.Time
	HasAttachments     bool
	Priority           string
}

// UpdateRequestParams carries a partial update; nil fields are left untouched.
type UpdateRequestParams struct {
	Status             *string
	Priority           *string
	LeadSource         *string
	Product            *string
	Message            *string
	Budget             *string
	RelationToProperty *string
	ContactID          *uuid.UUID
	PropertyID         *uuid.UUID
	Area               *string
	FollowUpDate       *time.Time
	LeadScore          *int
	QuoteTotal         *float64
	ArchivedAt         *time.Time
	MergedIntoID       *uuid.UUID
}

// CreateNoteParams carries the fields for appending a note.
type CreateNoteParams struct {
	RequestID        uuid.UUID
	Content          string
	Type             string
	Author           string
	IsPrivate        bool
	FollowUpRequired bool
	FollowUpDate     *time.Time
}

// CreateAssignmentParams carries the fields for recording an assignment.
type CreateAssignmentParams struct {
	RequestID        uuid.UUID
	AssigneeID       uuid.UUID
	AssigneeName     string
	AssigneeRole     string
	Reason           string
	Confidence       float64
	WorkloadBefore   int
	WorkloadAfter    int
	SpecialtyMatched bool
}

// CreateQuoteParams carries the fields for creating a quote.
type CreateQuoteParams struct {
	RequestID        uuid.UUID
	BasePrice        float64
	ComplexityFactor float64
	MaterialsFactor  float64
	TimelineFactor   float64
	LocationFactor   float64
	TotalPrice       float64
	ValidityDays     int
	Notes            string
}

// FindParams filters requests for batch scans and listings.
type FindParams struct {
	Statuses        []string
	UpdatedBefore   *time.Time
	ExcludeArchived bool
	Limit           int
	Offset          int
}
