package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"musicportal/internal/config"
	"musicportal/internal/database"
	"musicportal/internal/domain"
	jwtsvc "musicportal/internal/pkg/jwt"
	"musicportal/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	// ================== USERS ==================
	people := []domain.User{
		{ID: 1, Name: "Portal Admin", Role: domain.RoleAdmin},
		{ID: 2, Name: "Mr. Teo", Role: domain.RoleTeacher},
		{ID: 3, Name: "Alice", Role: domain.RoleStudent},
		{ID: 4, Name: "Bob", Role: domain.RoleStudent},
	}
	now := time.Now().UTC()
	for i := range people {
		people[i].CreatedAt = now
		people[i].UpdatedAt = now
		if err := users.Upsert(ctx, &people[i]); err != nil {
			logger.Fatal("user upsert failed", zap.Int64("user_id", people[i].ID), zap.Error(err))
		}
	}
	logger.Info("users seeded", zap.Int("count", len(people)))

	// ================== RESOURCES ==================
	resources := []domain.Resource{
		{Kind: domain.ResourceStudio, Name: "Studio A", Description: "Tracking room with drum kit", Location: "Block C, level 2", Capacity: 6},
		{Kind: domain.ResourceStudio, Name: "Studio B", Description: "Mixing suite", Location: "Block C, level 2", Capacity: 3},
		{Kind: domain.ResourceBooth, Name: "ERC Booth 1", Location: "Library", Capacity: 1},
		{Kind: domain.ResourceRoom, Name: "ERC Room 3", Location: "Library", Capacity: 8},
	}
	for i := range resources {
		r := resources[i]
		r.IsActive = true
		r.CreatedBy = 1
		if err := db.WithContext(ctx).
			Where("name = ?", r.Name).
			Attrs(r).
			FirstOrCreate(&resources[i]).Error; err != nil {
			logger.Fatal("resource seed failed", zap.String("name", r.Name), zap.Error(err))
		}
	}
	logger.Info("resources seeded", zap.Int("count", len(resources)))

	// ================== EQUIPMENT ==================
	items := []domain.Equipment{
		{Name: "Shure SM58", Category: "microphone", TotalQty: 10},
		{Name: "Audio-Technica ATH-M50x", Category: "headphones", TotalQty: 8},
		{Name: "Focusrite Scarlett 2i2", Category: "interface", TotalQty: 4},
		{Name: "XLR cable 5m", Category: "cable", TotalQty: 25},
	}
	for i := range items {
		e := items[i]
		e.AvailableQty = e.TotalQty
		e.IsActive = true
		e.CreatedBy = 1
		if err := db.WithContext(ctx).
			Where("name = ?", e.Name).
			Attrs(e).
			FirstOrCreate(&items[i]).Error; err != nil {
			logger.Fatal("equipment seed failed", zap.String("name", e.Name), zap.Error(err))
		}
	}
	logger.Info("equipment seeded", zap.Int("count", len(items)))

	// ================== DEV TOKENS ==================
	if cfg.IsProdLike() {
		return
	}
	j := jwtsvc.New(cfg.JWTSecret, 30*24*time.Hour)
	for _, u := range people {
		token, err := j.Issue(domain.Actor{UserID: u.ID, Role: u.Role})
		if err != nil {
			logger.Fatal("token generation failed", zap.Error(err))
		}
		fmt.Printf("%-8s %-14s %s\n", u.Role, u.Name, token)
	}
}
