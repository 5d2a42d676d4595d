package catalog

import (
	"github.com/gin-gonic/gin"

	"musicportal/internal/middleware"
)

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	resources := rg.Group("/resources")
	{
		resources.GET("", h.ListResources)
		resources.GET("/:id", h.GetResource)
		resources.POST("", middleware.StaffOnly(), h.CreateResource)
		resources.PUT("/:id", middleware.StaffOnly(), h.UpdateResource)
		resources.DELETE("/:id", middleware.StaffOnly(), h.DeactivateResource)
	}

	equipment := rg.Group("/equipment")
	{
		equipment.GET("", h.ListEquipment)
		equipment.GET("/:id", h.GetEquipment)
		equipment.POST("", middleware.StaffOnly(), h.CreateEquipment)
		equipment.PUT("/:id", middleware.StaffOnly(), h.UpdateEquipment)
		equipment.DELETE("/:id", middleware.StaffOnly(), h.DeactivateEquipment)
	}
}
