// Package status validates request status transitions: structural legality
// first, business guards layered on top.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"requesthub_backend/internal/requests/domain"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/apperr"
	"requesthub_backend/platform/config"

	"github.com/google/uuid"
)

// ValidationResult reports everything a caller needs to render actionable
// feedback: blocking errors, advisory warnings, missing fields and the
// business rules consulted.
type ValidationResult struct {
	IsValid        bool     `json:"isValid"`
	CurrentStatus  string   `json:"currentStatus"`
	TargetStatus   string   `json:"targetStatus"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	RequiredFields []string `json:"requiredFields"`
	BusinessRules  []string `json:"businessRules"`
}

// Context carries transition context supplied by the caller, such as an
// assignee being set in the same operation.
type Context struct {
	AssigneeID *uuid.UUID
}

// Store is the slice of the request store the validator consumes.
type Store interface {
	repository.RequestReader
	repository.QuoteStore
}

// Validator enforces the guarded status state machine.
type Validator struct {
	store Store
	hours config.BusinessHoursConfig
	now   func() time.Time
}

func NewValidator(store Store, hours config.BusinessHoursConfig) *Validator {
	return &Validator{store: store, hours: hours, now: time.Now}
}

// Validate checks the transition of a stored request to newStatus.
// Errors block persistence by the caller; warnings are informational.
func (v *Validator) Validate(ctx context.Context, requestID uuid.UUID, newStatus string, tctx Context) (ValidationResult, error) {
	const op = "status.Validate"

	req, err := v.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ValidationResult{}, apperr.NotFound("request not found").WithOp(op)
		}
		return ValidationResult{}, apperr.Downstream("failed to load request", err).WithOp(op)
	}

	result := v.Check(req, newStatus, tctx)

	// closed_won wants quote data; the quote table is the authority when
	// the denormalized total is absent.
	if newStatus == domain.StatusClosedWon && req.QuoteTotal == nil {
		quotes, err := v.store.ListQuotes(ctx, requestID)
		if err == nil && len(quotes) > 0 {
			result.RequiredFields = removeField(result.RequiredFields, "quoteTotal")
		}
	}

	return result, nil
}

// Check evaluates the transition rules against an already-loaded request.
// Pure with respect to the store.
func (v *Validator) Check(req repository.Request, newStatus string, tctx Context) ValidationResult {
	result := ValidationResult{
		IsValid:        true,
		CurrentStatus:  req.Status,
		TargetStatus:   newStatus,
		Errors:         []string{},
		Warnings:       []string{},
		RequiredFields: []string{},
		BusinessRules:  []string{},
	}

	if !domain.IsValidStatus(newStatus) {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("unknown status %q", newStatus))
		return result
	}

	if domain.IsTerminal(req.Status) {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("request is %s and accepts no further transitions", req.Status))
		result.BusinessRules = append(result.BusinessRules, "terminal statuses are immutable")
		return result
	}

	if !domain.CanTransition(req.Status, newStatus) {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("transition from %s to %s is not allowed", req.Status, newStatus))
		result.BusinessRules = append(result.BusinessRules, fmt.Sprintf("allowed targets from %s: %v", req.Status, domain.AllowedTargets(req.Status)))
		return result
	}

	if domain.RequiresAssignee(newStatus) && req.AssignedAgentID == nil && tctx.AssigneeID == nil {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("status %s requires an assignee", newStatus))
		result.RequiredFields = append(result.RequiredFields, "assigneeId")
		result.BusinessRules = append(result.BusinessRules, "assignment-requiring statuses need a responsible agent")
	}

	// Missing quote data on a won close is surfaced, not blocking: the
	// caller decides whether to proceed.
	if newStatus == domain.StatusClosedWon && req.QuoteTotal == nil {
		result.RequiredFields = append(result.RequiredFields, "quoteTotal")
		result.BusinessRules = append(result.BusinessRules, "closing as won should carry a quote amount")
	}

	if domain.IsCustomerFacing(newStatus) && !v.withinBusinessHours(v.now()) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("transition to %s outside business hours", newStatus))
	}

	return result
}

func (v *Validator) withinBusinessHours(t time.Time) bool {
	dayOK := false
	for _, day := range v.hours.GetBusinessDays() {
		if t.Weekday() == day {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}
	return t.Hour() >= v.hours.GetBusinessHoursStart() && t.Hour() < v.hours.GetBusinessHoursEnd()
}

func removeField(fields []string, name string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != name {
			out = append(out, f)
		}
	}
	return out
}
