package pricing

import (
	"context"
	"strings"
	"testing"

	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	requests map[uuid.UUID]repository.Request
	quotes   []repository.Quote
	notes    []repository.RequestNote
}

func newFakeStore(reqs ...repository.Request) *fakeStore {
	s := &fakeStore{requests: make(map[uuid.UUID]repository.Request)}
	for _, req := range reqs {
		s.requests[req.ID] = req
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return repository.Request{}, repository.ErrNotFound
	}
	return req, nil
}

func (s *fakeStore) GetWithRelations(ctx context.Context, id uuid.UUID) (repository.Request, []repository.RequestNote, []repository.RequestAssignment, error) {
	req, err := s.GetByID(ctx, id)
	return req, nil, nil, err
}

func (s *fakeStore) Find(_ context.Context, _ repository.FindParams) ([]repository.Request, error) {
	return nil, nil
}

func (s *fakeStore) Create(_ context.Context, _ repository.CreateRequestParams) (repository.Request, error) {
	return repository.Request{}, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateRequestParams) (repository.Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return repository.Request{}, repository.ErrNotFound
	}
	if params.Status != nil {
		req.Status = *params.Status
	}
	if params.QuoteTotal != nil {
		req.QuoteTotal = params.QuoteTotal
	}
	s.requests[id] = req
	return req, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Request, error) {
	return s.Update(ctx, id, repository.UpdateRequestParams{Status: &status})
}

func (s *fakeStore) AddNote(_ context.Context, params repository.CreateNoteParams) (repository.RequestNote, error) {
	note := repository.RequestNote{ID: uuid.New(), RequestID: params.RequestID, Content: params.Content, Type: params.Type, Author: params.Author}
	s.notes = append(s.notes, note)
	return note, nil
}

func (s *fakeStore) ListNotes(_ context.Context, requestID uuid.UUID) ([]repository.RequestNote, error) {
	var notes []repository.RequestNote
	for _, note := range s.notes {
		if note.RequestID == requestID {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (s *fakeStore) CreateQuote(_ context.Context, params repository.CreateQuoteParams) (repository.Quote, error) {
	quote := repository.Quote{
		ID:               uuid.New(),
		RequestID:        params.RequestID,
		BasePrice:        params.BasePrice,
		ComplexityFactor: params.ComplexityFactor,
		MaterialsFactor:  params.MaterialsFactor,
		TimelineFactor:   params.TimelineFactor,
		LocationFactor:   params.LocationFactor,
		TotalPrice:       params.TotalPrice,
		ValidityDays:     params.ValidityDays,
		Status:           repository.QuoteStatusDraft,
		Notes:            params.Notes,
	}
	s.quotes = append(s.quotes, quote)
	return quote, nil
}

func (s *fakeStore) ListQuotes(_ context.Context, requestID uuid.UUID) ([]repository.Quote, error) {
	var quotes []repository.Quote
	for _, quote := range s.quotes {
		if quote.RequestID == requestID {
			quotes = append(quotes, quote)
		}
	}
	return quotes, nil
}

func (s *fakeStore) HasActiveQuote(ctx context.Context, requestID uuid.UUID) (bool, error) {
	quotes, _ := s.ListQuotes(ctx, requestID)
	for _, quote := range quotes {
		if quote.Status == repository.QuoteStatusDraft || quote.Status == repository.QuoteStatusSent {
			return true, nil
		}
	}
	return false, nil
}

type fakeScheduler struct {
	calls int
}

func (s *fakeScheduler) ScheduleQuoteFollowUp(_ context.Context, _ uuid.UUID) error {
	s.calls++
	return nil
}

func quotableRequest() repository.Request {
	contactID := uuid.New()
	propertyID := uuid.New()
	return repository.Request{
		ID:         uuid.New(),
		Status:     domain.StatusAssigned,
		Priority:   domain.PriorityMedium,
		Product:    "bathroom renovation",
		Budget:     "€40.000",
		ContactID:  &contactID,
		PropertyID: &propertyID,
	}
}

func TestGenerateQuoteHappyPath(t *testing.T) {
	req := quotableRequest()
	store := newFakeStore(req)
	scheduler := &fakeScheduler{}
	svc := NewService(store, scheduler, logger.New("test"))

	result, err := svc.GenerateQuote(context.Background(), req.ID, Input{
		BasePrice:        20000,
		ComplexityFactor: f(1.2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Quote.TotalPrice != 24000 {
		t.Fatalf("expected total 24000, got %f", result.Quote.TotalPrice)
	}
	if result.Quote.ValidityDays != DefaultValidityDays {
		t.Fatalf("expected default validity %d, got %d", DefaultValidityDays, result.Quote.ValidityDays)
	}
	if result.Quote.Status != repository.QuoteStatusDraft {
		t.Fatalf("new quotes must be drafts, got %q", result.Quote.Status)
	}

	updated := store.requests[req.ID]
	if updated.Status != domain.StatusQuoteReady {
		t.Fatalf("request should move to quote_ready, got %q", updated.Status)
	}
	if updated.QuoteTotal == nil || *updated.QuoteTotal != 24000 {
		t.Fatalf("quote total should be written back onto the request: %+v", updated.QuoteTotal)
	}
	if len(store.notes) != 1 {
		t.Fatalf("expected one audit note, got %d", len(store.notes))
	}
	if scheduler.calls != 1 {
		t.Fatalf("expected one follow-up schedule call, got %d", scheduler.calls)
	}
}

func TestGenerateQuoteRejectsNonQuotableStatus(t *testing.T) {
	req := quotableRequest()
	req.Status = domain.StatusClosedWon
	store := newFakeStore(req)
	svc := NewService(store, &fakeScheduler{}, logger.New("test"))

	_, err := svc.GenerateQuote(context.Background(), req.ID, Input{BasePrice: 1000})
	if err == nil {
		t.Fatal("expected error for non-quotable status")
	}
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(domainErr.Message, domain.StatusClosedWon) {
		t.Fatalf("error should name the offending status: %q", domainErr.Message)
	}
	if len(store.quotes) != 0 {
		t.Fatal("no quote may be created on validation failure")
	}
}

func TestGenerateQuoteReportsMissingFields(t *testing.T) {
	req := quotableRequest()
	req.Budget = ""
	req.PropertyID = nil
	store := newFakeStore(req)
	svc := NewService(store, &fakeScheduler{}, logger.New("test"))

	_, err := svc.GenerateQuote(context.Background(), req.ID, Input{BasePrice: 1000})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := domainErr.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured details, got %T", domainErr.Details)
	}
	missing, _ := details["missingFields"].([]string)
	if len(missing) != 2 {
		t.Fatalf("expected budget and propertyId to be reported, got %v", missing)
	}
}

func TestGenerateQuoteRejectsNonPositiveBasePrice(t *testing.T) {
	req := quotableRequest()
	store := newFakeStore(req)
	svc := NewService(store, &fakeScheduler{}, logger.New("test"))

	for _, base := range []float64{0, -500} {
		_, err := svc.GenerateQuote(context.Background(), req.ID, Input{BasePrice: base})
		domainErr, ok := err.(*apperr.Error)
		if !ok || domainErr.Kind != apperr.KindValidation {
			t.Fatalf("basePrice %f should be rejected, got %v", base, err)
		}
	}
	if len(store.quotes) != 0 {
		t.Fatal("no quote may be created for invalid prices")
	}
}

func TestGenerateQuoteUnknownRequest(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeScheduler{}, logger.New("test"))

	_, err := svc.GenerateQuote(context.Background(), uuid.New(), Input{BasePrice: 1000})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
