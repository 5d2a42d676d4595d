package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
	"musicportal/internal/middleware"
	"musicportal/internal/pkg/request"
	"musicportal/internal/pkg/response"
	"musicportal/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RequestLoan handles POST /equipment/:id/loans
func (h *Handler) RequestLoan(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	equipmentID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req RequestLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	loan, err := h.service.RequestLoan(c.Request.Context(), actor, equipmentID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"loan": loan})
}

// AdjustQuantity handles PATCH /equipment/:id/quantity
func (h *Handler) AdjustQuantity(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	equipmentID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.AdjustCatalogQuantity(c.Request.Context(), actor, equipmentID, *req.TotalQty)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": item})
}

// ListLoans handles GET /loans?user_id=&equipment_id=&status=
func (h *Handler) ListLoans(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	f := repository.LoanFilter{Status: domain.LoanStatus(c.Query("status"))}
	if v, err := strconv.ParseInt(c.Query("user_id"), 10, 64); err == nil {
		f.UserID = v
	}
	if v, err := strconv.ParseInt(c.Query("equipment_id"), 10, 64); err == nil {
		f.EquipmentID = v
	}

	loans, err := h.service.ListLoans(c.Request.Context(), actor, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loans": loans})
}

func (h *Handler) GetLoan(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	loanID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(c.Request.Context(), actor, loanID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": loan})
}

// UpdateLoanStatus handles PATCH /loans/:id/status
func (h *Handler) UpdateLoanStatus(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	loanID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req UpdateLoanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	loan, err := h.service.SetLoanStatus(c.Request.Context(), actor, loanID, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": loan})
}
