package inventory

import (
	"time"

	"musicportal/internal/domain"
)

type RequestLoanRequest struct {
	Qty int `json:"qty"`
	// ReturnDate defaults to now plus the configured loan period.
	ReturnDate *time.Time `json:"return_date"`
}

type UpdateLoanStatusRequest struct {
	Status domain.LoanStatus `json:"status" binding:"required"`
}

type AdjustQuantityRequest struct {
	TotalQty *int `json:"total_qty" binding:"required"`
}

// LoanResponse is a stored loan plus the status readers should display.
type LoanResponse struct {
	domain.Loan
	DisplayStatus domain.LoanStatus `json:"display_status"`
}

func toLoanResponse(l domain.Loan, now time.Time) LoanResponse {
	return LoanResponse{Loan: l, DisplayStatus: domain.EffectiveLoanStatus(l, now)}
}
