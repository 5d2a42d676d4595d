package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"musicportal/internal/domain"
)

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if IsPostgres(dsn) {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info("using SQLite for local development", zap.String("dsn", dsn))

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// One writer connection keeps SQLite from returning SQLITE_BUSY and makes ":memory:" a single database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table owned by the reservation core.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Resource{},
		&domain.Equipment{},
		&domain.Availability{},
		&domain.Booking{},
		&domain.Loan{},
		&domain.EquipmentLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// One slot per user per window.
	if err := db.Exec(`
	  CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_slot_per_user
	  ON bookings (availability_id, booker_id)
	  WHERE availability_id IS NOT NULL AND status = 'confirmed';
	`).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}

	// Outstanding loans per equipment item.
	if err := db.Exec(`
	  CREATE INDEX IF NOT EXISTS idx_equipment_loans_open
	  ON equipment_loans (equipment_id, return_date)
	  WHERE status IN ('pending', 'active');
	`).Error; err != nil {
		return fmt.Errorf("create open loans index: %w", err)
	}

	return nil
}
