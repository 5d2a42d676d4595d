package inventory

import (
	"github.com/gin-gonic/gin"

	"musicportal/internal/middleware"
)

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/equipment/:id/loans", h.RequestLoan)
	rg.PATCH("/equipment/:id/quantity", middleware.StaffOnly(), h.AdjustQuantity)

	loans := rg.Group("/loans")
	{
		loans.GET("", h.ListLoans)
		loans.GET("/:id", h.GetLoan)
		loans.PATCH("/:id/status", middleware.StaffOnly(), h.UpdateLoanStatus)
	}
}
