package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
	{domain.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions"},
	{domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough units available"},
	{domain.ErrCapacityViolation, http.StatusConflict, "CAPACITY_VIOLATION", "Change would exceed declared capacity"},
	{domain.ErrResourceConflict, http.StatusConflict, "RESOURCE_CONFLICT", "Resource is already booked for the selected time"},
	{domain.ErrSlotFull, http.StatusConflict, "SLOT_FULL", "No slots left in this availability window"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", "Status change is not allowed"},
	{domain.ErrHasActiveBookings, http.StatusConflict, "HAS_ACTIVE_BOOKINGS", "Availability still has active bookings"},
}

// FromError writes the error envelope for a service error. It reports the
// HTTP status it used so callers can log 5xx responses.
func FromError(c *gin.Context, err error) int {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verr.Fields)
		return http.StatusBadRequest
	}
	if errors.Is(err, domain.ErrValidation) {
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return http.StatusBadRequest
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Error(c, m.status, m.code, m.message)
			return m.status
		}
	}

	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	return http.StatusInternalServerError
}
