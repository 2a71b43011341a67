package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const assignmentColumns = `id, request_id, assignee_id, assignee_name, assignee_role, reason, confidence,
	workload_before, workload_after, specialty_matched, active, created_at`

func scanAssignment(row pgx.Row) (RequestAssignment, error) {
	var a RequestAssignment
	err := row.Scan(
		&a.ID, &a.RequestID, &a.AssigneeID, &a.AssigneeName, &a.AssigneeRole, &a.Reason, &a.Confidence,
		&a.WorkloadBefore, &a.WorkloadAfter, &a.SpecialtyMatched, &a.Active, &a.CreatedAt,
	)
	return a, err
}

// CreateAssignment records a new active assignment in a single transaction:
// the prior active assignment (if any) is deactivated, the new one inserted,
// and the assignee denormalized onto the request row for cheap reads.
func (r *Repository) CreateAssignment(ctx context.Context, params CreateAssignmentParams) (RequestAssignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return RequestAssignment{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE request_assignments SET active = false
		WHERE request_id = $1 AND active = true`, params.RequestID)
	if err != nil {
		return RequestAssignment{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO request_assignments (
			request_id, assignee_id, assignee_name, assignee_role, reason, confidence,
			workload_before, workload_after, specialty_matched, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING `+assignmentColumns,
		params.RequestID, params.AssigneeID, params.AssigneeName, params.AssigneeRole, params.Reason, params.Confidence,
		params.WorkloadBefore, params.WorkloadAfter, params.SpecialtyMatched,
	)
	assignment, err := scanAssignment(row)
	if err != nil {
		return RequestAssignment{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE requests SET assigned_agent_id = $2, assigned_agent_name = $3, assigned_agent_role = $4, updated_at = now()
		WHERE id = $1`,
		params.RequestID, params.AssigneeID, params.AssigneeName, params.AssigneeRole,
	)
	if err != nil {
		return RequestAssignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return RequestAssignment{}, err
	}
	return assignment, nil
}

// AppendAssignmentHistory inserts an inactive assignment row. The active
// assignment and the request's denormalized assignee are left alone.
func (r *Repository) AppendAssignmentHistory(ctx context.Context, params CreateAssignmentParams) (RequestAssignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO request_assignments (
			request_id, assignee_id, assignee_name, assignee_role, reason, confidence,
			workload_before, workload_after, specialty_matched, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)
		RETURNING `+assignmentColumns,
		params.RequestID, params.AssigneeID, params.AssigneeName, params.AssigneeRole, params.Reason, params.Confidence,
		params.WorkloadBefore, params.WorkloadAfter, params.SpecialtyMatched,
	)
	return scanAssignment(row)
}

func (r *Repository) ListAssignments(ctx context.Context, requestID uuid.UUID) ([]RequestAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM request_assignments
		WHERE request_id = $1
		ORDER BY created_at DESC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]RequestAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
