// Package repository implements the Request Store adapter on PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `id, status, priority, lead_source, product, message, budget, relation_to_property,
	contact_id, property_id, area, assigned_agent_id, assigned_agent_name, assigned_agent_role,
	follow_up_date, requested_visit_at, lead_score, has_attachments, quote_total,
	archived_at, merged_into_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.Status, &req.Priority, &req.LeadSource, &req.Product, &req.Message, &req.Budget, &req.RelationToProperty,
		&req.ContactID, &req.PropertyID, &req.Area, &req.AssignedAgentID, &req.AssignedAgentName, &req.AssignedAgentRole,
		&req.FollowUpDate, &req.RequestedVisitAt, &req.LeadScore, &req.HasAttachments, &req.QuoteTotal,
		&req.ArchivedAt, &req.MergedIntoID, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (r *Repository) Create(ctx context.Context, params CreateRequestParams) (Request, error) {
	priority := params.Priority
	if priority == "" {
		priority = "medium"
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO requests (
			status, priority, lead_source, product, message, budget, relation_to_property,
			contact_id, property_id, area, requested_visit_at, has_attachments
		) VALUES ('new', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+requestColumns,
		priority, params.LeadSource, params.Product, params.Message, params.Budget, params.RelationToProperty,
		params.ContactID, params.PropertyID, params.Area, params.RequestedVisitAt, params.HasAttachments,
	)
	return scanRequest(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	return scanRequest(row)
}

// GetWithRelations returns a request hydrated with its notes and assignments.
func (r *Repository) GetWithRelations(ctx context.Context, id uuid.UUID) (Request, []RequestNote, []RequestAssignment, error) {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return Request{}, nil, nil, err
	}

	notes, err := r.ListNotes(ctx, id)
	if err != nil {
		return Request{}, nil, nil, err
	}

	assignments, err := r.ListAssignments(ctx, id)
	if err != nil {
		return Request{}, nil, nil, err
	}

	return req, notes, assignments, nil
}

func (r *Repository) Find(ctx context.Context, params FindParams) ([]Request, error) {
	var conditions []string
	var args []interface{}

	if len(params.Statuses) > 0 {
		args = append(args, params.Statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if params.UpdatedBefore != nil {
		args = append(args, *params.UpdatedBefore)
		conditions = append(conditions, fmt.Sprintf("updated_at < $%d", len(args)))
	}
	if params.ExcludeArchived {
		conditions = append(conditions, "archived_at IS NULL")
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}

// Update applies a partial update; nil fields are left untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateRequestParams) (Request, error) {
	sets := []string{"updated_at = now()"}
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Priority != nil {
		add("priority", *params.Priority)
	}
	if params.LeadSource != nil {
		add("lead_source", *params.LeadSource)
	}
	if params.Product != nil {
		add("product", *params.Product)
	}
	if params.Message != nil {
		add("message", *params.Message)
	}
	if params.Budget != nil {
		add("budget", *params.Budget)
	}
	if params.RelationToProperty != nil {
		add("relation_to_property", *params.RelationToProperty)
	}
	if params.ContactID != nil {
		add("contact_id", *params.ContactID)
	}
	if params.PropertyID != nil {
		add("property_id", *params.PropertyID)
	}
	if params.Area != nil {
		add("area", *params.Area)
	}
	if params.FollowUpDate != nil {
		add("follow_up_date", *params.FollowUpDate)
	}
	if params.LeadScore != nil {
		add("lead_score", *params.LeadScore)
	}
	if params.QuoteTotal != nil {
		add("quote_total", *params.QuoteTotal)
	}
	if params.ArchivedAt != nil {
		add("archived_at", *params.ArchivedAt)
	}
	if params.MergedIntoID != nil {
		add("merged_into_id", *params.MergedIntoID)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE requests SET %s WHERE id = $%d RETURNING `+requestColumns,
		strings.Join(sets, ", "), len(args))

	return scanRequest(r.pool.QueryRow(ctx, query, args...))
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Request, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE requests SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+requestColumns, id, status)
	return scanRequest(row)
}
