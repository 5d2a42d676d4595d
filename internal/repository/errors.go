package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"musicportal/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// translate maps driver and gorm errors onto the domain taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation:
			return errors.Join(domain.ErrCapacityViolation, err)
		case pgUniqueViolation:
			return errors.Join(domain.ErrResourceConflict, err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
		return errors.Join(domain.ErrResourceConflict, err)
	}
	if isCheckConstraintError(err) {
		return errors.Join(domain.ErrCapacityViolation, err)
	}
	return err
}

// SQLite drivers only expose constraint failures through the message text.
func isUniqueConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

func isCheckConstraintError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "check constraint failed")
}
