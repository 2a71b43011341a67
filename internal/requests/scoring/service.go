package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the slice of the request store the scoring engine consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.NoteStore
}

// Service scores requests and writes the score and priority back.
type Service struct {
	store Store
	cfg   config.AssignmentConfig
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, cfg config.AssignmentConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log, now: time.Now}
}

// Score computes the lead score for a request and persists the resulting
// score and priority. A priority change also leaves a system note.
func (s *Service) Score(ctx context.Context, requestID uuid.UUID) (Result, error) {
	const op = "scoring.Score"

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("request not found").WithOp(op)
		}
		return Result{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}

	result := Compute(req, s.cfg.GetServiceAreas(), s.now())

	params := repository.UpdateRequestParams{
		LeadScore: &result.OverallScore,
	}
	priorityChanged := req.Priority != result.Priority
	if priorityChanged {
		params.Priority = &result.Priority
	}

	if _, err := s.store.Update(ctx, requestID, params); err != nil {
		return Result{}, apperr.Downstream("failed to persist score", err).WithOp(op)
	}

	if priorityChanged {
		_, err := s.store.AddNote(ctx, repository.CreateNoteParams{
			RequestID: requestID,
			Content:   fmt.Sprintf("Priority adjusted from %s to %s based on lead score %d (grade %s)", req.Priority, result.Priority, result.OverallScore, result.Grade),
			Type:      repository.NoteTypeSystem,
			Author:    "scoring-engine",
		})
		if err != nil {
			s.log.StoreError("scoring.note", err)
		}
	}

	return result, nil
}
