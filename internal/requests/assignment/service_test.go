package assignment

import (
	"context"
	"testing"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	requests    map[uuid.UUID]repository.Request
	assignments []repository.RequestAssignment
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
	return req, nil, s.assignments, err
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
	if params.Priority != nil {
		req.Priority = *params.Priority
	}
	s.requests[id] = req
	return req, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Request, error) {
	return s.Update(ctx, id, repository.UpdateRequestParams{Status: &status})
}

func (s *fakeStore) CreateAssignment(_ context.Context, params repository.CreateAssignmentParams) (repository.RequestAssignment, error) {
	for i := range s.assignments {
		if s.assignments[i].RequestID == params.RequestID {
			s.assignments[i].Active = false
		}
	}
	a := repository.RequestAssignment{
		ID:               uuid.New(),
		RequestID:        params.RequestID,
		AssigneeID:       params.AssigneeID,
		AssigneeName:     params.AssigneeName,
		AssigneeRole:     params.AssigneeRole,
		Reason:           params.Reason,
		Confidence:       params.Confidence,
		WorkloadBefore:   params.WorkloadBefore,
		WorkloadAfter:    params.WorkloadAfter,
		SpecialtyMatched: params.SpecialtyMatched,
		Active:           true,
	}
	s.assignments = append(s.assignments, a)

	req := s.requests[params.RequestID]
	req.AssignedAgentID = &a.AssigneeID
	req.AssignedAgentName = &a.AssigneeName
	s.requests[params.RequestID] = req
	return a, nil
}

func (s *fakeStore) AppendAssignmentHistory(_ context.Context, params repository.CreateAssignmentParams) (repository.RequestAssignment, error) {
	a := repository.RequestAssignment{ID: uuid.New(), RequestID: params.RequestID, AssigneeID: params.AssigneeID, Reason: params.Reason}
	s.assignments = append(s.assignments, a)
	return a, nil
}

func (s *fakeStore) ListAssignments(_ context.Context, requestID uuid.UUID) ([]repository.RequestAssignment, error) {
	var out []repository.RequestAssignment
	for _, a := range s.assignments {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCandidates struct {
	pool []ports.Candidate
}

func (f *fakeCandidates) Candidates(_ context.Context) ([]ports.Candidate, error) {
	return f.pool, nil
}

func (f *fakeCandidates) CandidateByID(_ context.Context, id uuid.UUID) (ports.Candidate, error) {
	for _, c := range f.pool {
		if c.ID == id {
			return c, nil
		}
	}
	return ports.Candidate{}, repository.ErrAgentNotFound
}

type fakeFollowUps struct {
	calls int
}

func (f *fakeFollowUps) ScheduleInitialContact(_ context.Context, _ uuid.UUID) error {
	f.calls++
	return nil
}

type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *fakeBus) Subscribe(_ string, _ events.Handler) {}

type fakeConfig struct {
	threshold float64
	strategy  string
}

func (c fakeConfig) GetServiceAreas() []string           { return nil }
func (c fakeConfig) GetHighConfidenceThreshold() float64 { return c.threshold }
func (c fakeConfig) GetDefaultStrategy() string          { return c.strategy }

func newTestService(store *fakeStore, candidates *fakeCandidates) (*Service, *fakeFollowUps, *fakeBus) {
	followUps := &fakeFollowUps{}
	bus := &fakeBus{}
	svc := NewService(store, candidates, followUps, bus, fakeConfig{threshold: 0.80, strategy: StrategyAutoBalance}, logger.New("test"))
	return svc, followUps, bus
}

func TestAssignManual(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityMedium, Product: "roof repair"}
	store := newFakeStore(req)
	chosen := candidate("manual pick", 2, []string{"roof"}, nil)
	svc, followUps, bus := newTestService(store, &fakeCandidates{pool: []ports.Candidate{chosen}})

	result, err := svc.Assign(context.Background(), req.ID, Options{AssigneeID: &chosen.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Assignment.Reason != ReasonManual {
		t.Fatalf("manual assignment should record reason %q, got %q", ReasonManual, result.Assignment.Reason)
	}
	if result.Assignment.Confidence != 1.0 {
		t.Fatalf("manual assignment confidence must be 1.0, got %f", result.Assignment.Confidence)
	}
	if store.requests[req.ID].Status != domain.StatusAssigned {
		t.Fatalf("new request should move to assigned, got %q", store.requests[req.ID].Status)
	}
	if followUps.calls != 1 {
		t.Fatalf("expected one initial-contact follow-up, got %d", followUps.calls)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one assignment event, got %d", len(bus.published))
	}
}

func TestAssignManualUnknownAgent(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	store := newFakeStore(req)
	svc, _, _ := newTestService(store, &fakeCandidates{})

	bogus := uuid.New()
	_, err := svc.Assign(context.Background(), req.ID, Options{AssigneeID: &bogus})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(store.assignments) != 0 {
		t.Fatal("failed assignment must not persist anything")
	}
}

func TestAssignHeuristicUsesDefaultStrategy(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityMedium}
	store := newFakeStore(req)
	idle := candidate("idle", 0, nil, nil)
	loaded := candidate("loaded", 5, nil, nil)
	svc, _, _ := newTestService(store, &fakeCandidates{pool: []ports.Candidate{loaded, idle}})

	result, err := svc.Assign(context.Background(), req.ID, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != StrategyAutoBalance {
		t.Fatalf("expected default strategy auto_balance, got %q", result.Strategy)
	}
	if result.Assignment.AssigneeID != idle.ID {
		t.Fatalf("auto_balance should pick the idle agent, got %s", result.Assignment.AssigneeName)
	}
	if result.Assignment.WorkloadAfter != result.Assignment.WorkloadBefore+1 {
		t.Fatal("workload after must be workload before plus one")
	}
}

func TestAssignRejectsUnknownStrategy(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	store := newFakeStore(req)
	svc, _, _ := newTestService(store, &fakeCandidates{pool: []ports.Candidate{candidate("a", 0, nil, nil)}})

	_, err := svc.Assign(context.Background(), req.ID, Options{Strategy: "coin_flip"})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignEmptyPool(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew}
	store := newFakeStore(req)
	svc, _, _ := newTestService(store, &fakeCandidates{})

	_, err := svc.Assign(context.Background(), req.ID, Options{})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict error for empty pool, got %v", err)
	}
}

func TestAssignTerminalRequest(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusArchived}
	store := newFakeStore(req)
	svc, _, _ := newTestService(store, &fakeCandidates{pool: []ports.Candidate{candidate("a", 0, nil, nil)}})

	_, err := svc.Assign(context.Background(), req.ID, Options{})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict for terminal request, got %v", err)
	}
}

func TestAssignEscalatesPriorityOnHighConfidence(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityMedium, Product: "roof repair", Area: "Utrecht"}
	store := newFakeStore(req)
	// Perfect match: specialty + area + least loaded → confidence 1.0.
	perfect := candidate("perfect", 0, []string{"roof"}, []string{"Utrecht"})
	svc, _, _ := newTestService(store, &fakeCandidates{pool: []ports.Candidate{perfect}})

	result, err := svc.Assign(context.Background(), req.ID, Options{Strategy: StrategySkillMatch})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.PriorityEscalated {
		t.Fatalf("high-confidence assignment should escalate priority, confidence %f", result.Assignment.Confidence)
	}
	if result.Priority != domain.PriorityHigh {
		t.Fatalf("medium should escalate to high, got %q", result.Priority)
	}
	if store.requests[req.ID].Priority != domain.PriorityHigh {
		t.Fatal("escalated priority must be persisted")
	}
}

func TestAssignDeactivatesPriorAssignment(t *testing.T) {
	req := repository.Request{ID: uuid.New(), Status: domain.StatusAssigned, Priority: domain.PriorityLow}
	store := newFakeStore(req)
	first := candidate("first", 0, nil, nil)
	second := candidate("second", 0, nil, nil)
	svc, _, _ := newTestService(store, &fakeCandidates{pool: []ports.Candidate{first, second}})

	if _, err := svc.Assign(context.Background(), req.ID, Options{AssigneeID: &first.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Assign(context.Background(), req.ID, Options{AssigneeID: &second.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active := 0
	for _, a := range store.assignments {
		if a.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("exactly one assignment may be active, got %d", active)
	}
	if len(store.assignments) != 2 {
		t.Fatalf("assignment history must be retained, got %d rows", len(store.assignments))
	}
}
