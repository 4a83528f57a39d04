package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/distribution"
)

// DistributionHandler serves routes, schedules and distribution programs
type DistributionHandler struct {
	BaseHandler
	service *distribution.Service
}

// NewDistributionHandler creates a new DistributionHandler
func NewDistributionHandler(base BaseHandler, service *distribution.Service) *DistributionHandler {
	return &DistributionHandler{BaseHandler: base, service: service}
}

// Routes handles GET /admin/distribution/routes
// @ID           listRoutes
// @Summary      List distribution routes
// @Tags         distribution
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
// @Router       /admin/distribution/routes [get]
func (h *DistributionHandler) Routes(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Routes)(c)
}

// Schedules handles GET /admin/distribution/schedules
// @ID           listSchedules
// @Summary      List distribution schedules
// @Tags         distribution
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
// @Router       /admin/distribution/schedules [get]
func (h *DistributionHandler) Schedules(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Schedules)(c)
}

// Programs handles GET /admin/distribution/programs
// @ID           listPrograms
// @Summary      List distribution programs
// @Tags         distribution
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
// @Router       /admin/distribution/programs [get]
func (h *DistributionHandler) Programs(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Programs)(c)
}
