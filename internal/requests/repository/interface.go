package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by the store adapter.
var (
	ErrNotFound      = errors.New("request not found")
	ErrAgentNotFound = errors.New("agent not found")
	ErrQuoteNotFound = errors.New("quote not found")
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// RequestReader provides read-only access to request data.
type RequestReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Request, error)
	GetWithRelations(ctx context.Context, id uuid.UUID) (Request, []RequestNote, []RequestAssignment, error)
	Find(ctx context.Context, params FindParams) ([]Request, error)
}

// RequestWriter provides write operations for request lifecycle management.
type RequestWriter interface {
	Create(ctx context.Context, params CreateRequestParams) (Request, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateRequestParams) (Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Request, error)
}

// NoteStore manages the append-only note trail.
type NoteStore interface {
	AddNote(ctx context.Context, params CreateNoteParams) (RequestNote, error)
	ListNotes(ctx context.Context, requestID uuid.UUID) ([]RequestNote, error)
}

// AssignmentStore manages assignment records. Creating an assignment
// deactivates any prior active assignment and denormalizes the assignee
// onto the request row; history is retained, never deleted.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, params CreateAssignmentParams) (RequestAssignment, error)
	// AppendAssignmentHistory inserts an inactive assignment row without
	// touching the active assignment or the request. Used by merging to
	// carry a duplicate's history onto the primary.
	AppendAssignmentHistory(ctx context.Context, params CreateAssignmentParams) (RequestAssignment, error)
	ListAssignments(ctx context.Context, requestID uuid.UUID) ([]RequestAssignment, error)
}

// QuoteStore manages quotes attached to requests.
type QuoteStore interface {
	CreateQuote(ctx context.Context, params CreateQuoteParams) (Quote, error)
	ListQuotes(ctx context.Context, requestID uuid.UUID) ([]Quote, error)
	HasActiveQuote(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// AgentReader provides read access to the agent directory, including the
// per-agent count of active assignments used as the workload signal.
type AgentReader interface {
	GetAgentByID(ctx context.Context, id uuid.UUID) (Agent, error)
	ListAvailableAgents(ctx context.Context) ([]Agent, error)
	CountActiveAssignments(ctx context.Context, agentID uuid.UUID) (int, error)
}

// ActivityLogger records the best-effort activity trail on requests.
type ActivityLogger interface {
	AddActivity(ctx context.Context, requestID uuid.UUID, actor string, action string, meta map[string]interface{}) error
}

// =====================================
// Composite Interface
// =====================================

// RequestsRepository is the complete Request Store adapter contract.
// Composed of smaller, focused interfaces so each engine can declare a
// consumer-driven subset.
type RequestsRepository interface {
	RequestReader
	RequestWriter
	NoteStore
	AssignmentStore
	QuoteStore
	AgentReader
	ActivityLogger
}

// Ensure Repository implements RequestsRepository
var _ RequestsRepository = (*Repository)(nil)
