package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const noteColumns = `id, request_id, content, type, author, is_private, follow_up_required, follow_up_date, created_at`

func scanNote(row pgx.Row) (RequestNote, error) {
	var n RequestNote
	err := row.Scan(
		&n.ID, &n.RequestID, &n.Content, &n.Type, &n.Author,
		&n.IsPrivate, &n.FollowUpRequired, &n.FollowUpDate, &n.CreatedAt,
	)
	return n, err
}

func (r *Repository) AddNote(ctx context.Context, params CreateNoteParams) (RequestNote, error) {
	noteType := params.Type
	if noteType == "" {
		noteType = NoteTypeInternal
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO request_notes (request_id, content, type, author, is_private, follow_up_required, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+noteColumns,
		params.RequestID, params.Content, noteType, params.Author,
		params.IsPrivate, params.FollowUpRequired, params.FollowUpDate,
	)
	return scanNote(row)
}

func (r *Repository) ListNotes(ctx context.Context, requestID uuid.UUID) ([]RequestNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+noteColumns+` FROM request_notes
		WHERE request_id = $1
		ORDER BY created_at ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]RequestNote, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
