package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"musicportal/internal/domain"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) WithTx(tx *gorm.DB) *LoanRepository {
	return &LoanRepository{db: tx}
}

type LoanFilter struct {
	UserID      int64
	EquipmentID int64
	Status      domain.LoanStatus
	// Now is required when Status is overdue, which is projected from active loans.
	Now time.Time
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	var l domain.Loan
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// CompareAndSetStatus moves a loan from one stored status to another only if it
// is still in the expected status. A false result means another writer got there first.
func (r *LoanRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to domain.LoanStatus, decidedBy int64, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"decided_by": decidedBy,
	}
	if to == domain.LoanReturned {
		updates["returned_at"] = at
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.Loan{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

func (r *LoanRepository) List(ctx context.Context, f LoanFilter) ([]domain.Loan, error) {
	q := r.db.WithContext(ctx).Model(&domain.Loan{}).Order("request_date DESC, id DESC")
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EquipmentID > 0 {
		q = q.Where("equipment_id = ?", f.EquipmentID)
	}
	switch f.Status {
	case "":
	case domain.LoanOverdue:
		q = q.Where("status = ? AND return_date < ?", domain.LoanActive, f.Now)
	case domain.LoanActive:
		q = q.Where("status = ? AND return_date >= ?", domain.LoanActive, f.Now)
	default:
		q = q.Where("status = ?", f.Status)
	}

	var out []domain.Loan
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}
