package catalog

import (
	"net/http"

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

/* ---------- RESOURCE HANDLERS ---------- */

// ListResources handles GET /resources?kind=&include_inactive=
func (h *Handler) ListResources(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	f := repository.ResourceFilter{
		Kind:            domain.ResourceKind(c.Query("kind")),
		IncludeInactive: request.Bool(c, "include_inactive"),
	}

	resources, err := h.service.ListResources(c.Request.Context(), actor, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": resources})
}

func (h *Handler) GetResource(c *gin.Context) {
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.GetResource(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

func (h *Handler) CreateResource(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.CreateResource(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource": res})
}

func (h *Handler) UpdateResource(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.UpdateResource(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

func (h *Handler) DeactivateResource(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateResource(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": false})
}

/* ---------- EQUIPMENT HANDLERS ---------- */

// ListEquipment handles GET /equipment?category=&include_inactive=
func (h *Handler) ListEquipment(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	f := repository.EquipmentFilter{
		Category:        c.Query("category"),
		IncludeInactive: request.Bool(c, "include_inactive"),
	}

	items, err := h.service.ListEquipment(c.Request.Context(), actor, f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetEquipment(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": item})
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.CreateEquipment(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": item})
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.UpdateEquipment(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": item})
}

func (h *Handler) DeactivateEquipment(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateEquipment(c.Request.Context(), actor, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": false})
}
