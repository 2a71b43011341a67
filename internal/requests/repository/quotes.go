package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const quoteColumns = `id, request_id, base_price, complexity_factor, materials_factor, timeline_factor,
	location_factor, total_price, validity_days, status, notes, created_at`

func scanQuote(row pgx.Row) (Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.RequestID, &q.BasePrice, &q.ComplexityFactor, &q.MaterialsFactor, &q.TimelineFactor,
		&q.LocationFactor, &q.TotalPrice, &q.ValidityDays, &q.Status, &q.Notes, &q.CreatedAt,
	)
	return q, err
}

func (r *Repository) CreateQuote(ctx context.Context, params CreateQuoteParams) (Quote, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO quotes (
			request_id, base_price, complexity_factor, materials_factor, timeline_factor,
			location_factor, total_price, validity_days, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'draft', $9)
		RETURNING `+quoteColumns,
		params.RequestID, params.BasePrice, params.ComplexityFactor, params.MaterialsFactor, params.TimelineFactor,
		params.LocationFactor, params.TotalPrice, params.ValidityDays, params.Notes,
	)
	return scanQuote(row)
}

func (r *Repository) ListQuotes(ctx context.Context, requestID uuid.UUID) ([]Quote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE request_id = $1
		ORDER BY created_at DESC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// HasActiveQuote reports whether the request carries a quote that is still
// in play (draft or sent). Accepted and rejected quotes do not count.
func (r *Repository) HasActiveQuote(ctx context.Context, requestID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM quotes
			WHERE request_id = $1 AND status IN ('draft', 'sent')
		)`, requestID).Scan(&exists)
	return exists, err
}
