package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	dupName := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	assert.ErrorIs(t, translate(dupName), ErrDuplicateUsername)

	dupEmail := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"}
	assert.ErrorIs(t, translate(dupEmail), ErrDuplicateEmail)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
