package status

import (
	"context"
	"testing"
	"time"

	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/config"

	"github.com/google/uuid"
)

type fakeStore struct {
	requests map[uuid.UUID]repository.Request
	quotes   map[uuid.UUID][]repository.Quote
}

func newFakeStore(reqs ...repository.Request) *fakeStore {
	s := &fakeStore{
		requests: make(map[uuid.UUID]repository.Request),
		quotes:   make(map[uuid.UUID][]repository.Quote),
	}
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

func (s *fakeStore) CreateQuote(_ context.Context, params repository.CreateQuoteParams) (repository.Quote, error) {
	quote := repository.Quote{ID: uuid.New(), RequestID: params.RequestID, TotalPrice: params.TotalPrice, Status: repository.QuoteStatusDraft}
	s.quotes[params.RequestID] = append(s.quotes[params.RequestID], quote)
	return quote, nil
}

func (s *fakeStore) ListQuotes(_ context.Context, requestID uuid.UUID) ([]repository.Quote, error) {
	return s.quotes[requestID], nil
}

func (s *fakeStore) HasActiveQuote(_ context.Context, requestID uuid.UUID) (bool, error) {
	return len(s.quotes[requestID]) > 0, nil
}

type fakeHours struct {
	start, end int
	days       []time.Weekday
}

func (h fakeHours) GetBusinessHoursStart() int      { return h.start }
func (h fakeHours) GetBusinessHoursEnd() int        { return h.end }
func (h fakeHours) GetBusinessDays() []time.Weekday { return h.days }

var _ config.BusinessHoursConfig = fakeHours{}

func officeHours() fakeHours {
	return fakeHours{start: 8, end: 18, days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}}
}

// Tuesday, 10:00 — inside office hours.
var insideHours = time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

// Saturday, 22:00 — outside office hours.
var outsideHours = time.Date(2026, time.March, 14, 22, 0, 0, 0, time.UTC)

func newTestValidator(store Store, at time.Time) *Validator {
	v := NewValidator(store, officeHours())
	v.now = func() time.Time { return at }
	return v
}

func TestValidateAllowsLegalTransition(t *testing.T) {
	agentID := uuid.New()
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew, AssignedAgentID: &agentID}
	v := newTestValidator(newFakeStore(req), insideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusAssigned, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid transition, got errors %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("valid result must carry no errors: %v", result.Errors)
	}
}

func TestValidateRejectsAssigneeRequiredWithoutAssignee(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	v := newTestValidator(newFakeStore(req), insideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusAssigned, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsValid {
		t.Fatal("transition to assigned without an assignee must be invalid")
	}
	if len(result.Errors) == 0 {
		t.Fatal("invalid result must explain itself")
	}
	if len(result.RequiredFields) == 0 || result.RequiredFields[0] != "assigneeId" {
		t.Fatalf("expected assigneeId in required fields, got %v", result.RequiredFields)
	}
}

func TestValidateAcceptsAssigneeFromTransitionContext(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	v := newTestValidator(newFakeStore(req), insideHours)

	assignee := uuid.New()
	result, err := v.Validate(context.Background(), req.ID, domain.StatusAssigned, Context{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("assignee supplied in context should satisfy the guard: %v", result.Errors)
	}
}

func TestValidateRejectsTerminalStatus(t *testing.T) {
	for _, status := range []string{domain.StatusArchived, domain.StatusMerged} {
		req := repository.Request{ID: uuid.New(), Status: status}
		v := newTestValidator(newFakeStore(req), insideHours)

		result, err := v.Validate(context.Background(), req.ID, domain.StatusNew, Context{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsValid {
			t.Fatalf("terminal status %s must reject all transitions", status)
		}
	}
}

func TestValidateRejectsUnknownTarget(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	v := newTestValidator(newFakeStore(req), insideHours)

	result, err := v.Validate(context.Background(), req.ID, "on_hold", Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsValid {
		t.Fatal("unknown target status must be invalid")
	}
}

func TestValidateClosedWonMissingQuoteIsNonBlocking(t *testing.T) {
	agentID := uuid.New()
	req := repository.Request{ID: uuid.New(), Status: domain.StatusQuoted, AssignedAgentID: &agentID}
	v := newTestValidator(newFakeStore(req), insideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusClosedWon, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("missing quote total must not block closing: %v", result.Errors)
	}
	if len(result.RequiredFields) == 0 || result.RequiredFields[0] != "quoteTotal" {
		t.Fatalf("expected quoteTotal in required fields, got %v", result.RequiredFields)
	}
}

func TestValidateClosedWonQuoteTableSatisfiesRequirement(t *testing.T) {
	agentID := uuid.New()
	req := repository.Request{ID: uuid.New(), Status: domain.StatusQuoted, AssignedAgentID: &agentID}
	store := newFakeStore(req)
	if _, err := store.CreateQuote(context.Background(), repository.CreateQuoteParams{RequestID: req.ID, TotalPrice: 5000}); err != nil {
		t.Fatal(err)
	}
	v := newTestValidator(store, insideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusClosedWon, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, field := range result.RequiredFields {
		if field == "quoteTotal" {
			t.Fatal("existing quotes should satisfy the quoteTotal requirement")
		}
	}
}

func TestValidateWarnsOutsideBusinessHours(t *testing.T) {
	agentID := uuid.New()
	req := repository.Request{ID: uuid.New(), Status: domain.StatusQuoteReady, AssignedAgentID: &agentID}
	v := newTestValidator(newFakeStore(req), outsideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusQuoted, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("out-of-hours transitions warn, never block: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected an out-of-hours warning")
	}
}

func TestValidateNoWarningInsideBusinessHours(t *testing.T) {
	agentID := uuid.New()
	req := repository.Request{ID: uuid.New(), Status: domain.StatusQuoteReady, AssignedAgentID: &agentID}
	v := newTestValidator(newFakeStore(req), insideHours)

	result, err := v.Validate(context.Background(), req.ID, domain.StatusQuoted, Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("no warning expected inside office hours, got %v", result.Warnings)
	}
}
