// Package archival batch-scans stale terminal requests and marks them archived.
package archival

import (
	"context"
	"fmt"
	"time"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// Defaults applied when options are zero-valued.
const (
	DefaultOlderThanDays = 90
	DefaultBatchSize     = 100
)

// defaultStatuses is the terminal-ish candidate set.
var defaultStatuses = []string{domain.StatusClosedWon, domain.StatusClosedLost}

// Options configures one archival run.
type Options struct {
	OlderThanDays       int      `json:"olderThanDays"`
	Statuses            []string `json:"statuses"`
	ExcludeActiveQuotes bool     `json:"excludeActiveQuotes"`
	BatchSize           int      `json:"batchSize"`
	DryRun              bool     `json:"dryRun"`
}

// ItemError records a per-candidate failure without aborting the batch.
type ItemError struct {
	RequestID uuid.UUID `json:"requestId"`
	Error     string    `json:"error"`
}

// Result summarizes one archival run.
type Result struct {
	Archived int         `json:"archived"`
	Skipped  int         `json:"skipped"`
	DryRun   bool        `json:"dryRun"`
	Errors   []ItemError `json:"errors"`
}

// Store is the slice of the request store the archival processor consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.NoteStore
	repository.QuoteStore
}

// Service archives stale requests in bounded batches.
type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log, now: time.Now}
}

// Archive scans for eligible candidates and stamps them archived.
// Candidates are processed sequentially so a partial failure yields a
// precise per-id error list. In dry-run mode nothing is written.
func (s *Service) Archive(ctx context.Context, opts Options) (Result, error) {
	const op = "archival.Archive"

	olderThan := opts.OlderThanDays
	if olderThan <= 0 {
		olderThan = DefaultOlderThanDays
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = defaultStatuses
	}
	for _, status := range statuses {
		if !domain.IsValidStatus(status) {
			return Result{}, apperr.Validation(fmt.Sprintf("unknown status %q in archival filter", status)).WithOp(op)
		}
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -olderThan)

	candidates, err := s.store.Find(ctx, repository.FindParams{
		Statuses:        statuses,
		UpdatedBefore:   &cutoff,
		ExcludeArchived: true,
		Limit:           batchSize,
	})
	if err != nil {
		return Result{}, apperr.Downstream("failed to scan archival candidates", err).WithOp(op)
	}

	result := Result{DryRun: opts.DryRun, Errors: []ItemError{}}

	for _, candidate := range candidates {
		if opts.ExcludeActiveQuotes {
			active, err := s.store.HasActiveQuote(ctx, candidate.ID)
			if err != nil {
				result.Errors = append(result.Errors, ItemError{RequestID: candidate.ID, Error: err.Error()})
				continue
			}
			if active {
				result.Skipped++
				continue
			}
		}

		if opts.DryRun {
			result.Archived++
			continue
		}

		archivedStatus := domain.StatusArchived
		if _, err := s.store.Update(ctx, candidate.ID, repository.UpdateRequestParams{
			Status:     &archivedStatus,
			ArchivedAt: &now,
		}); err != nil {
			result.Errors = append(result.Errors, ItemError{RequestID: candidate.ID, Error: err.Error()})
			continue
		}

		if _, err := s.store.AddNote(ctx, repository.CreateNoteParams{
			RequestID: candidate.ID,
			Content:   fmt.Sprintf("Automatically archived: status %s unchanged for more than %d days", candidate.Status, olderThan),
			Type:      repository.NoteTypeSystem,
			Author:    "archival-processor",
		}); err != nil {
			s.log.StoreError("archival.note", err)
		}

		s.bus.Publish(ctx, events.RequestArchived{
			BaseEvent: events.NewBaseEvent(),
			RequestID: candidate.ID,
			Reason:    fmt.Sprintf("stale for %d+ days in status %s", olderThan, candidate.Status),
		})

		result.Archived++
	}

	return result, nil
}
