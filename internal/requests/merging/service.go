// Package merging consolidates duplicate requests into one canonical record.
// History is relabeled, never deleted.
package merging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
)

// Conflict policies, enumerated so new policies can be added without
// touching call sites.
const (
	PolicyKeepPrimary  = "keep_primary"
	PolicyUseLatest    = "use_latest"
	PolicyManualReview = "manual_review"
)

// Resolutions recorded per conflicting field.
const (
	ResolutionKeptPrimary = "kept_primary"
	ResolutionUsedLatest  = "used_latest"
	ResolutionNeedsReview = "needs_review"
)

// Options steers one merge.
type Options struct {
	Policy string `json:"policy"`
	Notify bool   `json:"notify"`
}

// FieldResolution records one per-field conflict decision. Silent
// overwrites are forbidden; every resolved field produces an entry.
type FieldResolution struct {
	Field        string      `json:"field"`
	PrimaryValue interface{} `json:"primaryValue"`
	MergedValue  interface{} `json:"mergedValue"`
	Resolution   string      `json:"resolution"`
}

// Result is the outcome of a merge.
type Result struct {
	PrimaryID          uuid.UUID         `json:"primaryId"`
	MergedIDs          []uuid.UUID       `json:"mergedIds"`
	Resolutions        []FieldResolution `json:"resolutions"`
	NotesCarried       int               `json:"notesCarried"`
	AssignmentsCarried int               `json:"assignmentsCarried"`
}

// Store is the slice of the request store the merge engine consumes.
type Store interface {
	repository.RequestReader
	repository.RequestWriter
	repository.NoteStore
	repository.AssignmentStore
}

// Service merges duplicate requests.
type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log, now: time.Now}
}

// Merge absorbs the duplicates into the primary. Duplicate notes and
// assignments are copied onto the primary with origin annotations;
// duplicates are stamped merged and archived, linked to the primary.
func (s *Service) Merge(ctx context.Context, primaryID uuid.UUID, duplicateIDs []uuid.UUID, opts Options) (Result, error) {
	const op = "merging.Merge"

	if len(duplicateIDs) == 0 {
		return Result{}, apperr.Validation("at least one duplicate id is required").WithOp(op)
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyKeepPrimary
	}
	if policy != PolicyKeepPrimary && policy != PolicyUseLatest && policy != PolicyManualReview {
		return Result{}, apperr.Validation(fmt.Sprintf("unknown merge policy %q", policy)).WithOp(op)
	}
	for _, id := range duplicateIDs {
		if id == primaryID {
			return Result{}, apperr.Validation("primary cannot be merged into itself").WithOp(op)
		}
	}

	primary, _, _, err := s.store.GetWithRelations(ctx, primaryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("primary request not found").WithOp(op)
		}
		return Result{}, apperr.Downstream("failed to load primary request", err).WithOp(op)
	}
	if domain.IsTerminal(primary.Status) {
		return Result{}, apperr.Conflict(fmt.Sprintf("primary request is %s and cannot absorb duplicates", primary.Status)).WithOp(op)
	}

	type hydrated struct {
		req         repository.Request
		notes       []repository.RequestNote
		assignments []repository.RequestAssignment
	}
	duplicates := make([]hydrated, 0, len(duplicateIDs))
	for _, id := range duplicateIDs {
		req, notes, assignments, err := s.store.GetWithRelations(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Result{}, apperr.NotFound(fmt.Sprintf("duplicate request %s not found", id)).WithOp(op)
			}
			return Result{}, apperr.Downstream("failed to load duplicate request", err).WithOp(op)
		}
		if domain.IsTerminal(req.Status) {
			return Result{}, apperr.Conflict(fmt.Sprintf("duplicate %s is already %s", id, req.Status)).WithOp(op)
		}
		duplicates = append(duplicates, hydrated{req, notes, assignments})
	}

	dupRequests := make([]repository.Request, len(duplicates))
	for i, d := range duplicates {
		dupRequests[i] = d.req
	}
	resolutions, update := resolveFields(policy, primary, dupRequests)

	if update != (repository.UpdateRequestParams{}) {
		if _, err := s.store.Update(ctx, primaryID, update); err != nil {
			return Result{}, apperr.Downstream("failed to apply merged fields", err).WithOp(op)
		}
	}

	notesCarried := 0
	assignmentsCarried := 0
	for _, d := range duplicates {
		for _, note := range d.notes {
			_, err := s.store.AddNote(ctx, repository.CreateNoteParams{
				RequestID:        primaryID,
				Content:          fmt.Sprintf("[merged from %s] %s", d.req.ID, note.Content),
				Type:             note.Type,
				Author:           note.Author,
				IsPrivate:        note.IsPrivate,
				FollowUpRequired: note.FollowUpRequired,
				FollowUpDate:     note.FollowUpDate,
			})
			if err != nil {
				return Result{}, apperr.Downstream("failed to carry note onto primary", err).WithOp(op)
			}
			notesCarried++
		}
		for _, a := range d.assignments {
			_, err := s.store.AppendAssignmentHistory(ctx, repository.CreateAssignmentParams{
				RequestID:        primaryID,
				AssigneeID:       a.AssigneeID,
				AssigneeName:     a.AssigneeName,
				AssigneeRole:     a.AssigneeRole,
				Reason:           fmt.Sprintf("merged_from:%s", d.req.ID),
				Confidence:       a.Confidence,
				WorkloadBefore:   a.WorkloadBefore,
				WorkloadAfter:    a.WorkloadAfter,
				SpecialtyMatched: a.SpecialtyMatched,
			})
			if err != nil {
				return Result{}, apperr.Downstream("failed to carry assignment history onto primary", err).WithOp(op)
			}
			assignmentsCarried++
		}
	}

	// Duplicates are relabeled, not deleted.
	now := s.now()
	mergedStatus := domain.StatusMerged
	for _, d := range duplicates {
		id := d.req.ID
		if _, err := s.store.Update(ctx, id, repository.UpdateRequestParams{
			Status:       &mergedStatus,
			ArchivedAt:   &now,
			MergedIntoID: &primaryID,
		}); err != nil {
			return Result{}, apperr.Downstream("failed to stamp duplicate as merged", err).WithOp(op)
		}
		if _, err := s.store.AddNote(ctx, repository.CreateNoteParams{
			RequestID: id,
			Content:   fmt.Sprintf("Merged into request %s", primaryID),
			Type:      repository.NoteTypeSystem,
			Author:    "merge-engine",
		}); err != nil {
			s.log.StoreError("merging.duplicate_note", err)
		}
	}

	if _, err := s.store.AddNote(ctx, repository.CreateNoteParams{
		RequestID: primaryID,
		Content: fmt.Sprintf("Merged %d duplicate request(s) using policy %s; %d field conflict(s) resolved, %d note(s) and %d assignment(s) carried over",
			len(duplicates), policy, len(resolutions), notesCarried, assignmentsCarried),
		Type:   repository.NoteTypeSystem,
		Author: "merge-engine",
	}); err != nil {
		s.log.StoreError("merging.summary_note", err)
	}

	if opts.Notify {
		s.bus.Publish(ctx, events.RequestsMerged{
			BaseEvent:    events.NewBaseEvent(),
			PrimaryID:    primaryID,
			DuplicateIDs: duplicateIDs,
			Conflicts:    len(resolutions),
		})
	}

	return Result{
		PrimaryID:          primaryID,
		MergedIDs:          duplicateIDs,
		Resolutions:        resolutions,
		NotesCarried:       notesCarried,
		AssignmentsCarried: assignmentsCarried,
	}, nil
}

// mergeField is one overlapping field of the request record.
type mergeField struct {
	name  string
	value func(repository.Request) interface{}
	empty func(repository.Request) bool
	set   func(*repository.UpdateRequestParams, repository.Request)
}

var mergeFields = []mergeField{
	{
		name:  "leadSource",
		value: func(r repository.Request) interface{} { return r.LeadSource },
		empty: func(r repository.Request) bool { return r.LeadSource == "" },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { v := r.LeadSource; u.LeadSource = &v },
	},
	{
		name:  "product",
		value: func(r repository.Request) interface{} { return r.Product },
		empty: func(r repository.Request) bool { return r.Product == "" },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { v := r.Product; u.Product = &v },
	},
	{
		name:  "message",
		value: func(r repository.Request) interface{} { return r.Message },
		empty: func(r repository.Request) bool { return r.Message == "" },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { v := r.Message; u.Message = &v },
	},
	{
		name:  "budget",
		value: func(r repository.Request) interface{} { return r.Budget },
		empty: func(r repository.Request) bool { return r.Budget == "" },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { v := r.Budget; u.Budget = &v },
	},
	{
		name:  "relationToProperty",
		value: func(r repository.Request) interface{} { return r.RelationToProperty },
		empty: func(r repository.Request) bool { return r.RelationToProperty == "" },
		set: func(u *repository.UpdateRequestParams, r repository.Request) {
			v := r.RelationToProperty
			u.RelationToProperty = &v
		},
	},
	{
		name:  "area",
		value: func(r repository.Request) interface{} { return r.Area },
		empty: func(r repository.Request) bool { return r.Area == "" },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { v := r.Area; u.Area = &v },
	},
	{
		name:  "contactId",
		value: func(r repository.Request) interface{} { return r.ContactID },
		empty: func(r repository.Request) bool { return r.ContactID == nil },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { u.ContactID = r.ContactID },
	},
	{
		name:  "propertyId",
		value: func(r repository.Request) interface{} { return r.PropertyID },
		empty: func(r repository.Request) bool { return r.PropertyID == nil },
		set:   func(u *repository.UpdateRequestParams, r repository.Request) { u.PropertyID = r.PropertyID },
	},
}

// resolveFields applies the conflict policy per overlapping field and
// returns the explicit resolution list plus the update for the primary.
func resolveFields(policy string, primary repository.Request, duplicates []repository.Request) ([]FieldResolution, repository.UpdateRequestParams) {
	resolutions := make([]FieldResolution, 0)
	var update repository.UpdateRequestParams

	for _, field := range mergeFields {
		// Latest non-empty duplicate value for this field.
		var latest *repository.Request
		for i := range duplicates {
			d := &duplicates[i]
			if field.empty(*d) {
				continue
			}
			if latest == nil || d.CreatedAt.After(latest.CreatedAt) {
				latest = d
			}
		}
		if latest == nil {
			continue
		}
		if !field.empty(primary) && fmt.Sprint(field.value(primary)) == fmt.Sprint(field.value(*latest)) {
			continue
		}

		resolution := FieldResolution{
			Field:        field.name,
			PrimaryValue: field.value(primary),
			MergedValue:  field.value(*latest),
		}

		switch policy {
		case PolicyUseLatest:
			// Most recently created non-empty value wins; an empty primary
			// always takes the duplicate's value.
			if field.empty(primary) || latest.CreatedAt.After(primary.CreatedAt) {
				field.set(&update, *latest)
				resolution.Resolution = ResolutionUsedLatest
			} else {
				resolution.Resolution = ResolutionKeptPrimary
			}
		case PolicyManualReview:
			resolution.Resolution = ResolutionNeedsReview
		default:
			if field.empty(primary) {
				// keep_primary still adopts values the primary lacks entirely.
				field.set(&update, *latest)
				resolution.Resolution = ResolutionUsedLatest
			} else {
				resolution.Resolution = ResolutionKeptPrimary
			}
		}

		resolutions = append(resolutions, resolution)
	}

	return resolutions, update
}
