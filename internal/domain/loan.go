package domain

import "time"

type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanActive   LoanStatus = "active"
	LoanRejected LoanStatus = "rejected"
	LoanReturned LoanStatus = "returned"
	// LoanOverdue is never stored; see EffectiveLoanStatus.
	LoanOverdue LoanStatus = "overdue"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanActive, LoanRejected, LoanReturned, LoanOverdue:
		return true
	}
	return false
}

// HoldsQuantity reports whether a loan in this stored status still has units reserved.
func (s LoanStatus) HoldsQuantity() bool {
	return s == LoanPending || s == LoanActive
}

// Releases reports whether entering this status gives the loan's units back to the pool.
func (s LoanStatus) Releases() bool {
	return s == LoanRejected || s == LoanReturned
}

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending: {LoanActive, LoanRejected},
	LoanActive:  {LoanReturned},
}

// CanTransitionLoan checks a stored transition. Overdue is derived, so it is never a valid target;
// an overdue loan is stored as active and returns through active -> returned.
func CanTransitionLoan(from, to LoanStatus) bool {
	for _, s := range loanTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Loan struct {
	ID          int64      `json:"id"`
	EquipmentID int64      `json:"equipment_id" gorm:"not null;index"`
	UserID      int64      `json:"user_id" gorm:"not null;index"`
	UserName    string     `json:"user_name"`
	Qty         int        `json:"qty" gorm:"not null;check:chk_equipment_loans_qty,qty > 0"`
	RequestDate time.Time  `json:"request_date" gorm:"not null"`
	ReturnDate  time.Time  `json:"return_date" gorm:"not null;index"`
	Status      LoanStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	DecidedBy   *int64     `json:"decided_by,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Loan) TableName() string { return "equipment_loans" }

// EffectiveLoanStatus is the label readers show: an active loan past its return date is overdue.
func EffectiveLoanStatus(l Loan, now time.Time) LoanStatus {
	if l.Status == LoanActive && l.ReturnDate.Before(now) {
		return LoanOverdue
	}
	return l.Status
}
