package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/quality"
)

// QualityHandler serves water quality tests and chlorine records
type QualityHandler struct {
	BaseHandler
	service *quality.Service
}

// NewQualityHandler creates a new QualityHandler
func NewQualityHandler(base BaseHandler, service *quality.Service) *QualityHandler {
	return &QualityHandler{BaseHandler: base, service: service}
}

// Tests handles GET /admin/water-quality/tests
// @ID           listQualityTests
// @Summary      List water quality tests
// @Tags         water-quality
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
// @Router       /admin/water-quality/tests [get]
func (h *QualityHandler) Tests(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Tests)(c)
}

// Chlorine handles GET /admin/water-quality/chlorine
// @ID           listChlorineRecords
// @Summary      List chlorine records
// @Tags         water-quality
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
// @Router       /admin/water-quality/chlorine [get]
func (h *QualityHandler) Chlorine(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Chlorine)(c)
}
