package adapters

import (
	"context"
	"errors"

	"requesthub_backend/internal/requests/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used to parse contact phone numbers stored
// without a country prefix.
const defaultPhoneRegion = "NL"

// ContactValidator checks that a referenced contact exists and carries a
// reachable phone number.
type ContactValidator struct {
	pool *pgxpool.Pool
}

func NewContactValidator(pool *pgxpool.Pool) *ContactValidator {
	return &ContactValidator{pool: pool}
}

func (v *ContactValidator) ValidateContact(ctx context.Context, id uuid.UUID) (bool, error) {
	var phone string
	err := v.pool.QueryRow(ctx, `SELECT phone FROM contacts WHERE id = $1`, id).Scan(&phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	// A contact without a usable phone number is treated as unreachable.
	parsed, err := phonenumbers.Parse(phone, defaultPhoneRegion)
	if err != nil {
		return false, nil
	}
	return phonenumbers.IsValidNumber(parsed), nil
}

// PropertyValidator checks that a referenced property exists.
type PropertyValidator struct {
	pool *pgxpool.Pool
}

func NewPropertyValidator(pool *pgxpool.Pool) *PropertyValidator {
	return &PropertyValidator{pool: pool}
}

func (v *PropertyValidator) ValidateProperty(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := v.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Compile-time checks.
var (
	_ ports.ContactValidator  = (*ContactValidator)(nil)
	_ ports.PropertyValidator = (*PropertyValidator)(nil)
)
