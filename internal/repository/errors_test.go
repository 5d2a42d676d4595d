package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"musicportal/internal/domain"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, want: domain.ErrNotFound},
		{name: "wrapped record not found", err: fmt.Errorf("load: %w", gorm.ErrRecordNotFound), want: domain.ErrNotFound},
		{name: "pg check violation", err: &pgconn.PgError{Code: "23514"}, want: domain.ErrCapacityViolation},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: domain.ErrResourceConflict},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: bookings.availability_id"), want: domain.ErrResourceConflict},
		{name: "sqlite check", err: errors.New("CHECK constraint failed: chk_equipment_available_qty"), want: domain.ErrCapacityViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	assert.NoError(t, translate(nil))
	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}
