package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicportal/internal/domain"
)

// UserRepository reads display names from the portal's profile table.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// DisplayName never fails on an unknown user; names are a read convenience only.
func (r *UserRepository) DisplayName(ctx context.Context, userID int64) (string, error) {
	var name string
	tx := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("name").
		Where("id = ?", userID).
		Scan(&name)
	if tx.Error != nil {
		return "", translate(tx.Error)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("user #%d", userID), nil
	}
	return name, nil
}

// Upsert is used by the seeder to mirror profiles locally.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "updated_at"}),
		}).
		Create(u).Error)
}
