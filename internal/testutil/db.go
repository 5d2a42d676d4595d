// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"musicportal/internal/database"
	"musicportal/internal/domain"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, id int64, name string, role domain.UserRole) domain.Actor {
	t.Helper()
	u := domain.User{ID: id, Name: name, Role: role}
	if err := db.WithContext(context.Background()).Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return domain.Actor{UserID: id, Role: role}
}

func CreateResource(t *testing.T, db *gorm.DB, kind domain.ResourceKind, name string) *domain.Resource {
	t.Helper()
	r := &domain.Resource{Kind: kind, Name: name, Capacity: 4, IsActive: true, CreatedBy: 1}
	if err := db.WithContext(context.Background()).Create(r).Error; err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}
	return r
}

func CreateEquipment(t *testing.T, db *gorm.DB, name string, total, available int) *domain.Equipment {
	t.Helper()
	e := &domain.Equipment{Name: name, Category: "audio", TotalQty: total, AvailableQty: available, IsActive: true, CreatedBy: 1}
	if err := db.WithContext(context.Background()).Create(e).Error; err != nil {
		t.Fatalf("failed to create equipment: %v", err)
	}
	return e
}

func ReloadEquipment(t *testing.T, db *gorm.DB, id int64) domain.Equipment {
	t.Helper()
	var e domain.Equipment
	if err := db.First(&e, id).Error; err != nil {
		t.Fatalf("failed to reload equipment: %v", err)
	}
	return e
}
