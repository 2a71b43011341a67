package assignment

import (
	"context"
	"errors"
	"fmt"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// ReasonManual marks assignments where the caller chose the assignee.
const ReasonManual = "manual"

// Options steers one assignment. A non-nil AssigneeID forces manual mode;
// otherwise Strategy picks the heuristic (falling back to the configured
// default when empty).
type Options struct {
	AssigneeID *uuid.UUID `json:"assigneeId"`
	Strategy   string     `json:"strategy"`
}

// Result is the outcome of a successful assignment.
type Result struct {
	Assignment        repository.RequestAssignment `json:"assignment"`
	Strategy          string                       `json:"strategy"`
	Priority          string                       `json:"priority"`
	PriorityEscalated bool                         `json:"priorityEscalated"`
}

// Store is the slice of the request store the assignment engine consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.AssignmentStore
}

// FollowUpScheduler schedules the initial-contact follow-up after a
// successful assignment. Best-effort.
type FollowUpScheduler interface {
	ScheduleInitialContact(ctx context.Context, requestID uuid.UUID) error
}

// Service assigns requests to agents.
type Service struct {
	store      Store
	candidates ports.CandidateProvider
	scheduler  FollowUpScheduler
	bus        events.Bus
	cfg        config.AssignmentConfig
	log        *logger.Logger
}

func NewService(store Store, candidates ports.CandidateProvider, scheduler FollowUpScheduler, bus events.Bus, cfg config.AssignmentConfig, log *logger.Logger) *Service {
	return &Service{store: store, candidates: candidates, scheduler: scheduler, bus: bus, cfg: cfg, log: log}
}

// Assign selects an agent for the request and persists the assignment.
// Validation and candidate-selection failures never mutate state.
func (s *Service) Assign(ctx context.Context, requestID uuid.UUID, opts Options) (Result, error) {
	const op = "assignment.Assign"

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("request not found").WithOp(op)
		}
		return Result{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}

	if domain.IsTerminal(req.Status) {
		return Result{}, apperr.Conflict(fmt.Sprintf("cannot assign a request in status %q", req.Status)).WithOp(op)
	}

	var (
		chosen     ports.Candidate
		conf       float64
		reason     string
		specialtyMatched bool
	)

	if opts.AssigneeID != nil {
		chosen, err = s.candidates.CandidateByID(ctx, *opts.AssigneeID)
		if err != nil {
			return Result{}, apperr.NotFound("requested assignee not found or unavailable").WithOp(op)
		}
		conf = 1.0
		reason = ReasonManual
		specialtyMatched = specialtyOverlap(req.Product, chosen.Specialties) > 0
	} else {
		strategy := opts.Strategy
		if strategy == "" {
			strategy = s.cfg.GetDefaultStrategy()
		}
		if !IsValidStrategy(strategy) {
			return Result{}, apperr.Validation(fmt.Sprintf("unknown assignment strategy %q", strategy)).WithOp(op)
		}

		pool, err := s.candidates.Candidates(ctx)
		if err != nil {
			return Result{}, apperr.Downstream("failed to load candidate pool", err).WithOp(op)
		}
		if len(pool) == 0 {
			return Result{}, apperr.Conflict("no eligible assignment candidates available").WithOp(op)
		}

		p := selectCandidate(strategy, req, pool)
		chosen = p.candidate
		conf = confidence(p, pool)
		reason = strategy
		specialtyMatched = p.specialtyMatched
	}

	assignment, err := s.store.CreateAssignment(ctx, repository.CreateAssignmentParams{
		RequestID:        requestID,
		AssigneeID:       chosen.ID,
		AssigneeName:     chosen.Name,
		AssigneeRole:     chosen.Role,
		Reason:           reason,
		Confidence:       conf,
		WorkloadBefore:   chosen.Workload,
		WorkloadAfter:    chosen.Workload + 1,
		SpecialtyMatched: specialtyMatched,
	})
	if err != nil {
		return Result{}, apperr.Downstream("failed to persist assignment", err).WithOp(op)
	}

	update := repository.UpdateRequestParams{}
	if req.Status == domain.StatusNew {
		status := domain.StatusAssigned
		update.Status = &status
	}

	priority := req.Priority
	escalated := false
	if conf >= s.cfg.GetHighConfidenceThreshold() && req.Priority != domain.PriorityUrgent {
		priority = domain.EscalatePriority(req.Priority)
		escalated = priority != req.Priority
		if escalated {
			update.Priority = &priority
		}
	}

	if update.Status != nil || update.Priority != nil {
		if _, err := s.store.Update(ctx, requestID, update); err != nil {
			return Result{}, apperr.Downstream("failed to update request after assignment", err).WithOp(op)
		}
	}

	if err := s.scheduler.ScheduleInitialContact(ctx, requestID); err != nil {
		s.log.NotificationFailure("initial_contact_follow_up", err)
	}

	s.bus.Publish(ctx, events.RequestAssigned{
		BaseEvent:    events.NewBaseEvent(),
		RequestID:    requestID,
		AssigneeID:   chosen.ID,
		AssigneeName: chosen.Name,
		Product:      req.Product,
		Reason:       reason,
		Confidence:   conf,
		Priority:     priority,
	})

	return Result{
		Assignment:        assignment,
		Strategy:          reason,
		Priority:          priority,
		PriorityEscalated: escalated,
	}, nil
}
