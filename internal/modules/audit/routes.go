package audit

import (
	"github.com/gin-gonic/gin"

	"musicportal/internal/middleware"
)

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	logs := rg.Group("/logs")
	{
		logs.GET("", h.ListLogs)
		logs.POST("", middleware.StaffOnly(), h.CreateLog)
	}
}
