package reservation

import (
	"github.com/gin-gonic/gin"

	"musicportal/internal/middleware"
)

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	resources := rg.Group("/resources/:id")
	{
		resources.POST("/bookings", h.CreateBooking)
		resources.GET("/bookings", h.ListResourceBookings)
		resources.POST("/availability", middleware.StaffOnly(), h.PublishAvailability)
		resources.GET("/availability", h.ListAvailability)
	}

	rg.GET("/users/me/bookings", h.ListMyBookings)

	bookings := rg.Group("/bookings")
	{
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateBookingStatus)
		bookings.DELETE("/:id", h.WithdrawBooking)
	}

	availability := rg.Group("/availability")
	{
		availability.POST("/:id/bookings", h.BookSlot)
		availability.DELETE("/:id", middleware.StaffOnly(), h.DeleteAvailability)
	}
}
