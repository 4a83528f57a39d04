package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/waterbox"
)

// WaterBoxHandler serves water boxes joined with their assignments
type WaterBoxHandler struct {
	BaseHandler
	service *waterbox.Service
}

// NewWaterBoxHandler creates a new WaterBoxHandler
func NewWaterBoxHandler(base BaseHandler, service *waterbox.Service) *WaterBoxHandler {
	return &WaterBoxHandler{BaseHandler: base, service: service}
}

// List handles GET /admin/water-boxes
// @ID           listWaterBoxes
// @Summary      List water boxes
// @Tags         water-boxes
// @Produce      json
// @Param        page query int false "Page number, from 1"
// @Param        page_size query int false "Rows per page"
// @Param        search query string false "Free text search"
// @Param        sort_by query string false "Sort column"
// @Param        sort_dir query string false "asc or desc"
// @Param        organization_id query string false "Organization, super administrators only"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/water-boxes [get]
func (h *WaterBoxHandler) List(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.List)(c)
}
