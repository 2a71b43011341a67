// Package orchestration sequences the request engines behind the public
// operations facade.
package orchestration

import (
	"context"
	"errors"
	"fmt"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/archival"
	"requesthub_backend/internal/requests/assignment"
	"requesthub_backend/internal/requests/merging"
	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/pricing"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/internal/requests/scheduling"
	"requesthub_backend/internal/requests/scoring"
	"requesthub_backend/internal/requests/status"
	"requesthub_backend/internal/requests/transport"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// ProcessResult is the outcome of the new-request workflow. Optional steps
// that ran contribute their results; steps that failed non-fatally
// contribute a warning instead.
type ProcessResult struct {
	Request    transport.RequestResponse `json:"request"`
	Score      *scoring.Result           `json:"score,omitempty"`
	Assignment *assignment.Result        `json:"assignment,omitempty"`
	FollowUp   *scheduling.Schedule      `json:"followUp,omitempty"`
	Warnings   []string                  `json:"-"`
}

// Orchestrator sequences the engines for the public request operations.
type Orchestrator struct {
	repo      repository.RequestsRepository
	scoring   *scoring.Service
	assigning *assignment.Service
	pricing   *pricing.Service
	status    *status.Validator
	merging   *merging.Service
	archival  *archival.Service
	followUps *scheduling.Service
	contacts  ports.ContactValidator
	props     ports.PropertyValidator
	bus       events.Bus
	log       *logger.Logger
}

// OrchestratorDeps bundles the collaborators for NewOrchestrator.
type OrchestratorDeps struct {
	Repo      repository.RequestsRepository
	Scoring   *scoring.Service
	Assigning *assignment.Service
	Pricing   *pricing.Service
	Status    *status.Validator
	Merging   *merging.Service
	Archival  *archival.Service
	FollowUps *scheduling.Service
	Contacts  ports.ContactValidator
	Props     ports.PropertyValidator
	Bus       events.Bus
	Log       *logger.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		repo:      deps.Repo,
		scoring:   deps.Scoring,
		assigning: deps.Assigning,
		pricing:   deps.Pricing,
		status:    deps.Status,
		merging:   deps.Merging,
		archival:  deps.Archival,
		followUps: deps.FollowUps,
		contacts:  deps.Contacts,
		props:     deps.Props,
		bus:       deps.Bus,
		log:       deps.Log,
	}
}

// processDefaults resolves the optional workflow flags.
type processDefaults struct {
	autoScore            bool
	autoAssign           bool
	autoScheduleFollowUp bool
	sendNotifications    bool
	skipValidation       bool
}

func resolveOptions(opts transport.ProcessOptions) processDefaults {
	resolved := processDefaults{
		autoScore:            true,
		autoAssign:           false,
		autoScheduleFollowUp: true,
		sendNotifications:    true,
		skipValidation:       false,
	}
	if opts.AutoScore != nil {
		resolved.autoScore = *opts.AutoScore
	}
	if opts.AutoAssign != nil {
		resolved.autoAssign = *opts.AutoAssign
	}
	if opts.AutoScheduleFollowUp != nil {
		resolved.autoScheduleFollowUp = *opts.AutoScheduleFollowUp
	}
	if opts.SendNotifications != nil {
		resolved.sendNotifications = *opts.SendNotifications
	}
	if opts.SkipValidation != nil {
		resolved.skipValidation = *opts.SkipValidation
	}
	return resolved
}

// ProcessNewRequest runs the full intake workflow: optional reference
// validation, creation, scoring, assignment and follow-up scheduling.
// Failures in optional steps degrade to warnings; the created request is
// never rolled back once persisted.
func (o *Orchestrator) ProcessNewRequest(ctx context.Context, req transport.CreateRequestRequest, opts transport.ProcessOptions) (ProcessResult, error) {
	const op = "requests.ProcessNewRequest"
	flags := resolveOptions(opts)

	if !flags.skipValidation {
		if err := o.validateReferences(ctx, req); err != nil {
			return ProcessResult{}, err
		}
	}

	created, err := o.repo.Create(ctx, repository.CreateRequestParams{
		LeadSource:         req.LeadSource,
		Product:            req.Product,
		Message:            req.Message,
		Budget:             req.Budget,
		RelationToProperty: req.RelationToProperty,
		ContactID:          req.ContactID,
		PropertyID:         req.PropertyID,
		Area:               req.Area,
		RequestedVisitAt:   req.RequestedVisitAt,
		HasAttachments:     req.HasAttachments,
		Priority:           req.Priority,
	})
	if err != nil {
		return ProcessResult{}, apperr.Downstream("failed to create request", err).WithOp(op)
	}

	if err := o.repo.AddActivity(ctx, created.ID, "orchestrator", "request_created", map[string]interface{}{
		"source":  created.LeadSource,
		"product": created.Product,
	}); err != nil {
		o.log.AuditFailure("request_created", err)
	}

	result := ProcessResult{}

	if flags.autoScore {
		score, err := o.scoring.Score(ctx, created.ID)
		if err != nil {
			o.log.Warn("auto-scoring failed", "requestId", created.ID, "error", err)
			result.Warnings = append(result.Warnings, "scoring failed: "+err.Error())
		} else {
			result.Score = &score
		}
	}

	if flags.autoAssign {
		assigned, err := o.assigning.Assign(ctx, created.ID, assignment.Options{})
		if err != nil {
			o.log.Warn("auto-assignment failed", "requestId", created.ID, "error", err)
			result.Warnings = append(result.Warnings, "assignment failed: "+err.Error())
		} else {
			result.Assignment = &assigned
		}
	}

	// Assignment already schedules the initial contact; only schedule here
	// when the request is still unassigned.
	if flags.autoScheduleFollowUp && result.Assignment == nil {
		followUp, err := o.followUps.Schedule(ctx, created.ID, scheduling.Input{Type: scheduling.TypeInitialContact})
		if err != nil {
			o.log.Warn("follow-up scheduling failed", "requestId", created.ID, "error", err)
			result.Warnings = append(result.Warnings, "follow-up scheduling failed: "+err.Error())
		} else {
			result.FollowUp = &followUp
		}
	}

	// Reload so the response reflects everything the engines wrote.
	final, err := o.repo.GetByID(ctx, created.ID)
	if err != nil {
		final = created
	}

	if flags.sendNotifications {
		o.bus.Publish(ctx, events.RequestReceived{
			BaseEvent: events.NewBaseEvent(),
			RequestID: final.ID,
			Source:    final.LeadSource,
			Product:   final.Product,
			Priority:  final.Priority,
			LeadScore: final.LeadScore,
		})
	}

	result.Request = transport.ToRequestResponse(final)
	return result, nil
}

func (o *Orchestrator) validateReferences(ctx context.Context, req transport.CreateRequestRequest) error {
	const op = "requests.validateReferences"

	if req.ContactID != nil && o.contacts != nil {
		ok, err := o.contacts.ValidateContact(ctx, *req.ContactID)
		if err != nil {
			return apperr.Downstream("contact validation failed", err).WithOp(op)
		}
		if !ok {
			return apperr.Validation("referenced contact does not exist").
				WithOp(op).
				WithDetails(map[string]interface{}{"contactId": req.ContactID})
		}
	}
	if req.PropertyID != nil && o.props != nil {
		ok, err := o.props.ValidateProperty(ctx, *req.PropertyID)
		if err != nil {
			return apperr.Downstream("property validation failed", err).WithOp(op)
		}
		if !ok {
			return apperr.Validation("referenced property does not exist").
				WithOp(op).
				WithDetails(map[string]interface{}{"propertyId": req.PropertyID})
		}
	}
	return nil
}

// CalculateLeadScore recomputes and persists the lead score.
func (o *Orchestrator) CalculateLeadScore(ctx context.Context, id uuid.UUID) (scoring.Result, error) {
	return o.scoring.Score(ctx, id)
}

// AssignToAgent assigns a request manually or heuristically.
func (o *Orchestrator) AssignToAgent(ctx context.Context, id uuid.UUID, opts assignment.Options) (assignment.Result, error) {
	result, err := o.assigning.Assign(ctx, id, opts)
	if err != nil {
		return assignment.Result{}, err
	}
	if auditErr := o.repo.AddActivity(ctx, id, "orchestrator", "request_assigned", map[string]interface{}{
		"assigneeId": result.Assignment.AssigneeID,
		"reason":     result.Assignment.Reason,
	}); auditErr != nil {
		o.log.AuditFailure("request_assigned", auditErr)
	}
	return result, nil
}

// GenerateQuoteFromRequest prices a request into a draft quote.
func (o *Orchestrator) GenerateQuoteFromRequest(ctx context.Context, id uuid.UUID, input pricing.Input) (pricing.QuoteResult, error) {
	result, err := o.pricing.GenerateQuote(ctx, id, input)
	if err != nil {
		return pricing.QuoteResult{}, err
	}
	o.bus.Publish(ctx, events.QuoteDrafted{
		BaseEvent:  events.NewBaseEvent(),
		RequestID:  id,
		QuoteID:    result.Quote.ID,
		TotalPrice: result.Quote.TotalPrice,
		ValidUntil: result.Quote.CreatedAt.AddDate(0, 0, result.Quote.ValidityDays),
	})
	return result, nil
}

// ScheduleFollowUp schedules a follow-up of the given type.
func (o *Orchestrator) ScheduleFollowUp(ctx context.Context, id uuid.UUID, input scheduling.Input) (scheduling.Schedule, error) {
	return o.followUps.Schedule(ctx, id, input)
}

// ValidateStatusTransition checks a proposed status change without
// persisting anything.
func (o *Orchestrator) ValidateStatusTransition(ctx context.Context, id uuid.UUID, newStatus string, tctx status.Context) (status.ValidationResult, error) {
	return o.status.Validate(ctx, id, newStatus, tctx)
}

// MergeRequests consolidates duplicates into the primary.
func (o *Orchestrator) MergeRequests(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID, opts merging.Options) (merging.Result, error) {
	result, err := o.merging.Merge(ctx, primaryID, duplicateIDs, opts)
	if err != nil {
		return merging.Result{}, err
	}
	if auditErr := o.repo.AddActivity(ctx, primaryID, "orchestrator", "requests_merged", map[string]interface{}{
		"duplicates": len(duplicateIDs),
		"conflicts":  len(result.Resolutions),
	}); auditErr != nil {
		o.log.AuditFailure("requests_merged", auditErr)
	}
	return result, nil
}

// ArchiveOldRequests runs one batch archival pass.
func (o *Orchestrator) ArchiveOldRequests(ctx context.Context, opts archival.Options) (archival.Result, error) {
	return o.archival.Archive(ctx, opts)
}

// GetRequest loads a request with its notes and assignment history.
func (o *Orchestrator) GetRequest(ctx context.Context, id uuid.UUID) (transport.RequestDetailResponse, error) {
	const op = "requests.GetRequest"
	req, notes, assignments, err := o.repo.GetWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.RequestDetailResponse{}, apperr.NotFound("request not found").WithOp(op)
		}
		return transport.RequestDetailResponse{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}
	return transport.ToRequestDetailResponse(req, notes, assignments), nil
}

// ListRequests returns requests matching the filter.
func (o *Orchestrator) ListRequests(ctx context.Context, params repository.FindParams) ([]transport.RequestResponse, error) {
	const op = "requests.ListRequests"
	for _, s := range params.Statuses {
		if s == "" {
			return nil, apperr.Validation(fmt.Sprintf("invalid status filter %q", s)).WithOp(op)
		}
	}
	items, err := o.repo.Find(ctx, params)
	if err != nil {
		return nil, apperr.Downstream("failed to list requests", err).WithOp(op)
	}
	responses := make([]transport.RequestResponse, len(items))
	for i, item := range items {
		responses[i] = transport.ToRequestResponse(item)
	}
	return responses, nil
}
