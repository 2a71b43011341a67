// Package transport defines the request/response DTOs for the requests API.
package transport

import (
	"time"

	"requesthub_backend/internal/requests/repository"

	"github.com/google/uuid"
)

// CreateRequestRequest is the inbound payload for a new service request.
type CreateRequestRequest struct {
	LeadSource         string     `json:"leadSource" validate:"omitempty,max=100"`
	Product            string     `json:"product" validate:"omitempty,max=200"`
	Message            string     `json:"message" validate:"omitempty,max=10000"`
	Budget             string     `json:"budget" validate:"omitempty,max=100"`
	RelationToProperty string     `json:"relationToProperty" validate:"omitempty,max=100"`
	ContactID          *uuid.UUID `json:"contactId"`
	PropertyID         *uuid.UUID `json:"propertyId"`
	Area               string     `json:"area" validate:"omitempty,max=100"`
	RequestedVisitAt   *time.Time `json:"requestedVisitAt"`
	HasAttachments     bool       `json:"hasAttachments"`
	Priority           string     `json:"priority" validate:"omitempty,oneof=urgent high medium low"`
}

// ProcessOptions steers the new-request workflow. Nil pointers take the
// defaults: score, schedule and notify on, auto-assign off, validation on.
type ProcessOptions struct {
	AutoScore            *bool `json:"autoScore"`
	AutoAssign           *bool `json:"autoAssign"`
	AutoScheduleFollowUp *bool `json:"autoScheduleFollowUp"`
	SendNotifications    *bool `json:"sendNotifications"`
	SkipValidation       *bool `json:"skipValidation"`
}

// ProcessNewRequestRequest wraps creation data plus workflow options.
type ProcessNewRequestRequest struct {
	Request CreateRequestRequest `json:"request" validate:"required"`
	Options ProcessOptions       `json:"options"`
}

// AssignRequest selects manual or heuristic assignment.
type AssignRequest struct {
	AssigneeID *uuid.UUID `json:"assigneeId"`
	Strategy   string     `json:"strategy" validate:"omitempty,oneof=round_robin skill_match geographic auto_balance"`
}

// GenerateQuoteRequest is the inbound pricing payload.
type GenerateQuoteRequest struct {
	BasePrice        float64  `json:"basePrice" validate:"required,gt=0"`
	ComplexityFactor *float64 `json:"complexityFactor" validate:"omitempty,gt=0"`
	MaterialsFactor  *float64 `json:"materialsFactor" validate:"omitempty,gt=0"`
	TimelineFactor   *float64 `json:"timelineFactor" validate:"omitempty,gt=0"`
	LocationFactor   *float64 `json:"locationFactor" validate:"omitempty,gt=0"`
	ValidityDays     int      `json:"validityDays" validate:"omitempty,gt=0,lte=365"`
	Notes            string   `json:"notes" validate:"omitempty,max=2000"`
}

// ScheduleFollowUpRequest is the inbound scheduling payload.
type ScheduleFollowUpRequest struct {
	Type            string     `json:"type" validate:"required,oneof=initial_contact information_request quote_follow_up check_in closing"`
	ScheduledDate   *time.Time `json:"scheduledDate"`
	ReminderOffsets []int      `json:"reminderOffsets" validate:"omitempty,dive,gt=0"`
	AutoReschedule  bool       `json:"autoReschedule"`
}

// ValidateTransitionRequest asks whether a status change would be legal.
type ValidateTransitionRequest struct {
	NewStatus  string     `json:"newStatus" validate:"required"`
	AssigneeID *uuid.UUID `json:"assigneeId"`
}

// MergeRequest consolidates duplicates into the addressed primary.
type MergeRequest struct {
	DuplicateIDs []uuid.UUID `json:"duplicateIds" validate:"required,min=1"`
	Policy       string      `json:"policy" validate:"omitempty,oneof=keep_primary use_latest manual_review"`
	Notify       bool        `json:"notify"`
}

// ArchiveRequest configures a batch archival run.
type ArchiveRequest struct {
	OlderThanDays       int      `json:"olderThanDays" validate:"omitempty,gt=0"`
	Statuses            []string `json:"statuses"`
	ExcludeActiveQuotes bool     `json:"excludeActiveQuotes"`
	BatchSize           int      `json:"batchSize" validate:"omitempty,gt=0,lte=1000"`
	DryRun              bool     `json:"dryRun"`
}

// RequestResponse is the outbound projection of a request.
type RequestResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	LeadSource         string     `json:"leadSource,omitempty"`
	Product            string     `json:"product,omitempty"`
	Message            string     `json:"message,omitempty"`
	Budget             string     `json:"budget,omitempty"`
	RelationToProperty string     `json:"relationToProperty,omitempty"`
	ContactID          *uuid.UUID `json:"contactId,omitempty"`
	PropertyID         *uuid.UUID `json:"propertyId,omitempty"`
	Area               string     `json:"area,omitempty"`
	AssignedAgentID    *uuid.UUID `json:"assignedAgentId,omitempty"`
	AssignedAgentName  *string    `json:"assignedAgentName,omitempty"`
	AssignedAgentRole  *string    `json:"assignedAgentRole,omitempty"`
	FollowUpDate       *time.Time `json:"followUpDate,omitempty"`
	RequestedVisitAt   *time.Time `json:"requestedVisitAt,omitempty"`
	LeadScore          int        `json:"leadScore"`
	HasAttachments     bool       `json:"hasAttachments"`
	QuoteTotal         *float64   `json:"quoteTotal,omitempty"`
	ArchivedAt         *time.Time `json:"archivedAt,omitempty"`
	MergedIntoID       *uuid.UUID `json:"mergedIntoId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NoteResponse is the outbound projection of a request note.
type NoteResponse struct {
	ID               uuid.UUID  `json:"id"`
	Content          string     `json:"content"`
	Type             string     `json:"type"`
	Author           string     `json:"author"`
	IsPrivate        bool       `json:"isPrivate"`
	FollowUpRequired bool       `json:"followUpRequired"`
	FollowUpDate     *time.Time `json:"followUpDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// AssignmentResponse is the outbound projection of an assignment record.
type AssignmentResponse struct {
	ID               uuid.UUID `json:"id"`
	AssigneeID       uuid.UUID `json:"assigneeId"`
	AssigneeName     string    `json:"assigneeName"`
	AssigneeRole     string    `json:"assigneeRole"`
	Reason           string    `json:"reason"`
	Confidence       float64   `json:"confidence"`
	SpecialtyMatched bool      `json:"specialtyMatched"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RequestDetailResponse is a request with its notes and assignment history.
type RequestDetailResponse struct {
	Request     RequestResponse      `json:"request"`
	Notes       []NoteResponse       `json:"notes"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// ToRequestResponse maps a stored request to its outbound shape.
func ToRequestResponse(req repository.Request) RequestResponse {
	return RequestResponse{
		ID:                 req.ID,
		Status:             req.Status,
		Priority:           req.Priority,
		LeadSource:         req.LeadSource,
		Product:            req.Product,
		Message:            req.Message,
		Budget:             req.Budget,
		RelationToProperty: req.RelationToProperty,
		ContactID:          req.ContactID,
		PropertyID:         req.PropertyID,
		Area:               req.Area,
		AssignedAgentID:    req.AssignedAgentID,
		AssignedAgentName:  req.AssignedAgentName,
		AssignedAgentRole:  req.AssignedAgentRole,
		FollowUpDate:       req.FollowUpDate,
		RequestedVisitAt:   req.RequestedVisitAt,
		LeadScore:          req.LeadScore,
		HasAttachments:     req.HasAttachments,
		QuoteTotal:         req.QuoteTotal,
		ArchivedAt:         req.ArchivedAt,
		MergedIntoID:       req.MergedIntoID,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
}

// ToRequestDetailResponse maps a hydrated request to its outbound shape.
func ToRequestDetailResponse(req repository.Request, notes []repository.RequestNote, assignments []repository.RequestAssignment) RequestDetailResponse {
	noteResponses := make([]NoteResponse, len(notes))
	for i, n := range notes {
		noteResponses[i] = NoteResponse{
			ID:               n.ID,
			Content:          n.Content,
			Type:             n.Type,
			Author:           n.Author,
			IsPrivate:        n.IsPrivate,
			FollowUpRequired: n.FollowUpRequired,
			FollowUpDate:     n.FollowUpDate,
			CreatedAt:        n.CreatedAt,
		}
	}
	assignmentResponses := make([]AssignmentResponse, len(assignments))
	for i, a := range assignments {
		assignmentResponses[i] = AssignmentResponse{
			ID:               a.ID,
			AssigneeID:       a.AssigneeID,
			AssigneeName:     a.AssigneeName,
			AssigneeRole:     a.AssigneeRole,
			Reason:           a.Reason,
			Confidence:       a.Confidence,
			SpecialtyMatched: a.SpecialtyMatched,
			Active:           a.Active,
			CreatedAt:        a.CreatedAt,
		}
	}
	return RequestDetailResponse{
		Request:     ToRequestResponse(req),
		Notes:       noteResponses,
		Assignments: assignmentResponses,
	}
}
