package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/organization"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/interfaces/http/middleware"
)

// OrganizationHandler serves organizations, zones and streets
type OrganizationHandler struct {
	BaseHandler
	service *organization.Service
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(base BaseHandler, service *organization.Service) *OrganizationHandler {
	return &OrganizationHandler{BaseHandler: base, service: service}
}

// List handles GET /admin/organizations
// @ID           listOrganizations
// @Summary      List organizations
// @Tags         organizations
// @Produce      json
// @Param        page query int false "Page number, from 1"
// @Param        page_size query int false "Rows per page"
// @Param        search query string false "Free text search"
// @Param        sort_by query string false "Sort column"
// @Param        sort_dir query string false "asc or desc"
// @Param        organization_id query string false "Organization, super administrators only"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), organizationFilter(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, result)
}

// Get handles GET /admin/organizations/:id
// @ID           getOrganization
// @Summary      Get an organization
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/organizations/{id} [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !canAccessOrganization(c, id) {
		h.HandleError(c, shared.ErrForbidden)
		return
	}
	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Zones handles GET /admin/organizations/:id/zones
// @ID           listOrganizationZones
// @Summary      List the zones of an organization
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/organizations/{id}/zones [get]
func (h *OrganizationHandler) Zones(c *gin.Context) {
	id := c.Param("id")
	if !canAccessOrganization(c, id) {
		h.HandleError(c, shared.ErrForbidden)
		return
	}
	q, err := listQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.service.Zones(c.Request.Context(), id, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, result)
}

// Streets handles GET /admin/zones/:id/streets. Callers bound to an
// organization only reach the zones of that organization.
// @ID           listZoneStreets
// @Summary      List the streets of a zone
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Identifier"
// @Param        page query int false "Page number, from 1"
// @Param        page_size query int false "Rows per page"
// @Param        search query string false "Free text search"
// @Param        sort_by query string false "Sort column"
// @Param        sort_dir query string false "asc or desc"
// @Param        organization_id query string false "Organization, super administrators only"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/zones/{id}/streets [get]
func (h *OrganizationHandler) Streets(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.service.Streets(c.Request.Context(), organizationFilter(c), c.Param("id"), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, result)
}

// canAccessOrganization reports whether the caller may read organization id.
// Super administrators and sessions without an organization may read any.
func canAccessOrganization(c *gin.Context, id string) bool {
	s := middleware.GetSession(c)
	if id == "" || s == nil || s.OrganizationID == "" || isSuperAdmin(s) {
		return true
	}
	return s.OrganizationID == id
}
