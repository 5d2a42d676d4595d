package reservation

import (
	"time"

	"musicportal/internal/domain"
)

type CreateBookingRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Purpose   string    `json:"purpose"`
}

type UpdateBookingStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required"`
}

type PublishAvailabilityRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	MaxSlots  int       `json:"max_slots" validate:"gt=0,lte=100"`
}

type BookSlotRequest struct {
	Purpose string `json:"purpose"`
}

// AvailabilityResponse is a published window with what is left of it.
type AvailabilityResponse struct {
	domain.Availability
	RemainingSlots int `json:"remaining_slots"`
}

func toAvailabilityResponse(a domain.Availability) AvailabilityResponse {
	return AvailabilityResponse{Availability: a, RemainingSlots: a.RemainingSlots()}
}
