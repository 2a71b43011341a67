package pricing

import (
	"context"
	"errors"
	"fmt"

	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the slice of the request store the pricing engine consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.NoteStore
	repository.QuoteStore
}

// FollowUpScheduler schedules the post-quote follow-up. Best-effort.
type FollowUpScheduler interface {
	ScheduleQuoteFollowUp(ctx context.Context, requestID uuid.UUID) error
}

// QuoteResult is what quote generation returns to callers.
type QuoteResult struct {
	Quote     repository.Quote `json:"quote"`
	Breakdown Breakdown        `json:"breakdown"`
}

// Service generates draft quotes from requests.
type Service struct {
	store     Store
	scheduler FollowUpScheduler
	log       *logger.Logger
}

func NewService(store Store, scheduler FollowUpScheduler, log *logger.Logger) *Service {
	return &Service{store: store, scheduler: scheduler, log: log}
}

// GenerateQuote prices a request and records the draft quote.
// The request must be in a quotable status and carry the information the
// checklist demands; validation failures never touch the store.
func (s *Service) GenerateQuote(ctx context.Context, requestID uuid.UUID, input Input) (QuoteResult, error) {
	const op = "pricing.GenerateQuote"

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return QuoteResult{}, apperr.NotFound("request not found").WithOp(op)
		}
		return QuoteResult{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}

	if !domain.IsQuotable(req.Status) {
		return QuoteResult{}, apperr.Conflict(fmt.Sprintf("cannot quote a request in status %q", req.Status)).WithOp(op)
	}

	if missing := missingQuoteFields(req); len(missing) > 0 {
		return QuoteResult{}, apperr.Validation("missing required information for quoting").
			WithOp(op).
			WithDetails(map[string]interface{}{"missingFields": missing})
	}

	if input.BasePrice <= 0 {
		return QuoteResult{}, apperr.Validation("basePrice must be positive").WithOp(op)
	}

	calc := Calculate(input)

	validity := input.ValidityDays
	if validity <= 0 {
		validity = DefaultValidityDays
	}

	quote, err := s.store.CreateQuote(ctx, repository.CreateQuoteParams{
		RequestID:        requestID,
		BasePrice:        input.BasePrice,
		ComplexityFactor: calc.Complexity,
		MaterialsFactor:  calc.Materials,
		TimelineFactor:   calc.Timeline,
		LocationFactor:   calc.Location,
		TotalPrice:       calc.Total,
		ValidityDays:     validity,
		Notes:            input.Notes,
	})
	if err != nil {
		return QuoteResult{}, apperr.Downstream("failed to create quote", err).WithOp(op)
	}

	total := calc.Total
	if _, err := s.store.Update(ctx, requestID, repository.UpdateRequestParams{
		Status:     strPtr(domain.StatusQuoteReady),
		QuoteTotal: &total,
	}); err != nil {
		return QuoteResult{}, apperr.Downstream("failed to update request status", err).WithOp(op)
	}

	if _, err := s.store.AddNote(ctx, repository.CreateNoteParams{
		RequestID: requestID,
		Content:   fmt.Sprintf("Quote drafted: total %.2f (base %.2f, validity %d days)", calc.Total, input.BasePrice, validity),
		Type:      repository.NoteTypeSystem,
		Author:    "pricing-engine",
	}); err != nil {
		s.log.StoreError("pricing.note", err)
	}

	if err := s.scheduler.ScheduleQuoteFollowUp(ctx, requestID); err != nil {
		s.log.NotificationFailure("quote_follow_up", err)
	}

	return QuoteResult{Quote: quote, Breakdown: calc.Breakdown}, nil
}

// missingQuoteFields is the fixed pre-quote checklist.
func missingQuoteFields(req repository.Request) []string {
	var missing []string
	if req.Product == "" {
		missing = append(missing, "product")
	}
	if req.Budget == "" {
		missing = append(missing, "budget")
	}
	if req.PropertyID == nil {
		missing = append(missing, "propertyId")
	}
	if req.ContactID == nil {
		missing = append(missing, "contactId")
	}
	return missing
}

func strPtr(s string) *string { return &s }
