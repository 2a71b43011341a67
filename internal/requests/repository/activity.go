package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// AddActivity appends a row to the best-effort activity trail. Callers treat
// failures as non-fatal and log them instead of propagating.
func (r *Repository) AddActivity(ctx context.Context, requestID uuid.UUID, actor string, action string, meta map[string]interface{}) error {
	var metaJSON []byte
	if meta != nil {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return err
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO request_activity (request_id, actor, action, meta)
		VALUES ($1, $2, $3, $4)`,
		requestID, actor, action, metaJSON)
	return err
}
