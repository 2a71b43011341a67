package archival

import (
	"context"
	"errors"
	"testing"
	"time"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	requests     map[uuid.UUID]repository.Request
	activeQuotes map[uuid.UUID]bool
	notes        []repository.RequestNote

	updates     int
	failUpdates map[uuid.UUID]error
	lastFind    repository.FindParams
}

func newFakeStore(reqs ...repository.Request) *fakeStore {
	s := &fakeStore{
		requests:     make(map[uuid.UUID]repository.Request),
		activeQuotes: make(map[uuid.UUID]bool),
		failUpdates:  make(map[uuid.UUID]error),
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

func (s *fakeStore) Find(_ context.Context, params repository.FindParams) ([]repository.Request, error) {
	s.lastFind = params
	var out []repository.Request
	for _, req := range s.requests {
		if req.ArchivedAt != nil {
			continue
		}
		statusOK := false
		for _, status := range params.Statuses {
			if req.Status == status {
				statusOK = true
				break
			}
		}
		if !statusOK {
			continue
		}
		if params.UpdatedBefore != nil && !req.UpdatedAt.Before(*params.UpdatedBefore) {
			continue
		}
		out = append(out, req)
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, _ repository.CreateRequestParams) (repository.Request, error) {
	return repository.Request{}, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateRequestParams) (repository.Request, error) {
	if err, ok := s.failUpdates[id]; ok {
		return repository.Request{}, err
	}
	req, ok := s.requests[id]
	if !ok {
		return repository.Request{}, repository.ErrNotFound
	}
	if params.Status != nil {
		req.Status = *params.Status
	}
	if params.ArchivedAt != nil {
		req.ArchivedAt = params.ArchivedAt
	}
	s.requests[id] = req
	s.updates++
	return req, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Request, error) {
	return s.Update(ctx, id, repository.UpdateRequestParams{Status: &status})
}

func (s *fakeStore) AddNote(_ context.Context, params repository.CreateNoteParams) (repository.RequestNote, error) {
	note := repository.RequestNote{ID: uuid.New(), RequestID: params.RequestID, Content: params.Content}
	s.notes = append(s.notes, note)
	return note, nil
}

func (s *fakeStore) ListNotes(_ context.Context, _ uuid.UUID) ([]repository.RequestNote, error) {
	return s.notes, nil
}

func (s *fakeStore) CreateQuote(_ context.Context, _ repository.CreateQuoteParams) (repository.Quote, error) {
	return repository.Quote{}, nil
}

func (s *fakeStore) ListQuotes(_ context.Context, _ uuid.UUID) ([]repository.Quote, error) {
	return nil, nil
}

func (s *fakeStore) HasActiveQuote(_ context.Context, requestID uuid.UUID) (bool, error) {
	return s.activeQuotes[requestID], nil
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

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*Service, *fakeBus) {
	bus := &fakeBus{}
	svc := NewService(store, bus, logger.New("test"))
	svc.now = func() time.Time { return testNow }
	return svc, bus
}

func staleRequest(status string, ageDays int) repository.Request {
	return repository.Request{
		ID:        uuid.New(),
		Status:    status,
		UpdatedAt: testNow.AddDate(0, 0, -ageDays),
	}
}

func TestArchiveStaleClosedRequests(t *testing.T) {
	old := staleRequest(domain.StatusClosedWon, 120)
	fresh := staleRequest(domain.StatusClosedLost, 10)
	open := staleRequest(domain.StatusInProgress, 200)
	store := newFakeStore(old, fresh, open)
	svc, bus := newTestService(store)

	result, err := svc.Archive(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Archived != 1 {
		t.Fatalf("only the stale closed request qualifies, archived %d", result.Archived)
	}
	if store.requests[old.ID].Status != domain.StatusArchived {
		t.Fatalf("expected archived status, got %q", store.requests[old.ID].Status)
	}
	if store.requests[old.ID].ArchivedAt == nil {
		t.Fatal("archived requests must carry a timestamp")
	}
	if store.requests[fresh.ID].Status != domain.StatusClosedLost {
		t.Fatal("recently updated requests must be left alone")
	}
	if store.requests[open.ID].Status != domain.StatusInProgress {
		t.Fatal("non-terminal statuses are not archived by default")
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one archived event, got %d", len(bus.published))
	}
}

func TestArchiveDryRunWritesNothing(t *testing.T) {
	old := staleRequest(domain.StatusClosedWon, 120)
	store := newFakeStore(old)
	svc, bus := newTestService(store)

	result, err := svc.Archive(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DryRun || result.Archived != 1 {
		t.Fatalf("dry run should count candidates: %+v", result)
	}
	if store.updates != 0 {
		t.Fatalf("dry run must not write, saw %d updates", store.updates)
	}
	if len(store.notes) != 0 {
		t.Fatal("dry run must not add notes")
	}
	if len(bus.published) != 0 {
		t.Fatal("dry run must not publish events")
	}
	if store.requests[old.ID].Status != domain.StatusClosedWon {
		t.Fatal("dry run must leave the request untouched")
	}
}

func TestArchiveSkipsActiveQuotes(t *testing.T) {
	withQuote := staleRequest(domain.StatusClosedWon, 120)
	without := staleRequest(domain.StatusClosedWon, 120)
	store := newFakeStore(withQuote, without)
	store.activeQuotes[withQuote.ID] = true
	svc, _ := newTestService(store)

	result, err := svc.Archive(context.Background(), Options{ExcludeActiveQuotes: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Archived != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 archived and 1 skipped, got %+v", result)
	}
	if store.requests[withQuote.ID].Status != domain.StatusClosedWon {
		t.Fatal("requests with active quotes must not be archived")
	}
}

func TestArchivePerRequestErrorsDoNotAbortBatch(t *testing.T) {
	failing := staleRequest(domain.StatusClosedWon, 120)
	healthy := staleRequest(domain.StatusClosedWon, 120)
	store := newFakeStore(failing, healthy)
	store.failUpdates[failing.ID] = errors.New("row locked")
	svc, _ := newTestService(store)

	result, err := svc.Archive(context.Background(), Options{})
	if err != nil {
		t.Fatalf("batch must not fail on per-request errors: %v", err)
	}
	if result.Archived != 1 {
		t.Fatalf("healthy request should still be archived, got %d", result.Archived)
	}
	if len(result.Errors) != 1 || result.Errors[0].RequestID != failing.ID {
		t.Fatalf("expected one item error for the failing request, got %+v", result.Errors)
	}
}

func TestArchiveRejectsUnknownStatusFilter(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.Archive(context.Background(), Options{Statuses: []string{"vanished"}})
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestArchiveAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	if _, err := svc.Archive(context.Background(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastFind.Limit != DefaultBatchSize {
		t.Fatalf("expected default batch size %d, got %d", DefaultBatchSize, store.lastFind.Limit)
	}
	if len(store.lastFind.Statuses) != 2 {
		t.Fatalf("expected default terminal statuses, got %v", store.lastFind.Statuses)
	}
	wantCutoff := testNow.AddDate(0, 0, -DefaultOlderThanDays)
	if store.lastFind.UpdatedBefore == nil || !store.lastFind.UpdatedBefore.Equal(wantCutoff) {
		t.Fatalf("expected cutoff %v, got %v", wantCutoff, store.lastFind.UpdatedBefore)
	}
	if !store.lastFind.ExcludeArchived {
		t.Fatal("archival scans must exclude already-archived requests")
	}
}
