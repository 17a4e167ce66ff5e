package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type AdminController struct {
	tables services.TableService
}

func NewAdminController(tables services.TableService) *AdminController {
	return &AdminController{tables: tables}
}

// GetDashboardStats -> GET /admin/dashboard/stats
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.tables.DashboardStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}
