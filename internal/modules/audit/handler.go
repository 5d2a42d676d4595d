package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
	"musicportal/internal/middleware"
	"musicportal/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListLogs handles GET /logs?target_kind=&target_id=
func (h *Handler) ListLogs(c *gin.Context) {
	kind := domain.TargetKind(c.Query("target_kind"))
	targetID, err := strconv.ParseInt(c.Query("target_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "target_id must be a number")
		return
	}

	logs, err := h.service.ListByTarget(c.Request.Context(), kind, targetID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logs": logs})
}

// CreateLog handles POST /logs
func (h *Handler) CreateLog(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	entry, err := h.service.RecordManual(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"log": entry})
}
