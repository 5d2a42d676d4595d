package reservation

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"musicportal/internal/middleware"
	"musicportal/internal/pkg/request"
	"musicportal/internal/pkg/response"
)

// maxPage keeps (page-1)*limit well inside int range.
const maxPage = 10000

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/* ---------- BOOKING HANDLERS ---------- */

// CreateBooking handles POST /resources/:id/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	resourceID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.RequestBooking(c.Request.Context(), actor, resourceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

// ListResourceBookings handles GET /resources/:id/bookings?from=&to=
func (h *Handler) ListResourceBookings(c *gin.Context) {
	resourceID, ok := request.ID(c, "id")
	if !ok {
		return
	}
	from, ok := request.Time(c, "from")
	if !ok {
		return
	}
	to, ok := request.Time(c, "to")
	if !ok {
		return
	}

	bookings, err := h.service.ListResourceBookings(c.Request.Context(), resourceID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// ListMyBookings handles GET /users/me/bookings?limit=&page=
func (h *Handler) ListMyBookings(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	limit := request.Int(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := request.Int(c, "page", 1)
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameter",
			map[string]string{"page": fmt.Sprintf("must be at most %d", maxPage)})
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), actor, limit, (page-1)*limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings, "page": page, "limit": limit})
}

func (h *Handler) GetBooking(c *gin.Context) {
	bookingID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.Actor(c)
	b, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// UpdateBookingStatus handles PATCH /bookings/:id/status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	bookingID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.SetBookingStatus(c.Request.Context(), actor, bookingID, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// WithdrawBooking handles DELETE /bookings/:id
func (h *Handler) WithdrawBooking(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	bookingID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	if err := h.service.WithdrawBooking(c.Request.Context(), actor, bookingID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": bookingID, "deleted": true})
}

/* ---------- AVAILABILITY HANDLERS ---------- */

// PublishAvailability handles POST /resources/:id/availability
func (h *Handler) PublishAvailability(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	resourceID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req PublishAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	window, err := h.service.PublishAvailability(c.Request.Context(), actor, resourceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"availability": window})
}

// ListAvailability handles GET /resources/:id/availability?from=&to=
func (h *Handler) ListAvailability(c *gin.Context) {
	resourceID, ok := request.ID(c, "id")
	if !ok {
		return
	}
	from, ok := request.Time(c, "from")
	if !ok {
		return
	}
	to, ok := request.Time(c, "to")
	if !ok {
		return
	}

	windows, err := h.service.ListAvailability(c.Request.Context(), resourceID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"availability": windows})
}

// BookSlot handles POST /availability/:id/bookings
func (h *Handler) BookSlot(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	availabilityID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req BookSlotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	b, err := h.service.BookAvailabilitySlot(c.Request.Context(), actor, availabilityID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

// DeleteAvailability handles DELETE /availability/:id?cascade=true
func (h *Handler) DeleteAvailability(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	availabilityID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.service.DeleteAvailability(c.Request.Context(), actor, availabilityID, request.Bool(c, "cascade"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": availabilityID, "cancelled_bookings": cancelled})
}
