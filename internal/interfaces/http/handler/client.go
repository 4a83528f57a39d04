package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/client"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/interfaces/http/middleware"
)

// ClientHandler manages the clients of an organization
type ClientHandler struct {
	BaseHandler
	service *client.Service
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(base BaseHandler, service *client.Service) *ClientHandler {
	return &ClientHandler{BaseHandler: base, service: service}
}

// List handles GET /admin/clients
// @ID           listClients
// @Summary      List clients
// @Tags         clients
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
// @Router       /admin/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.List)(c)
}

// Get handles GET /admin/clients/:id
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	view, warnings, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !canAccessOrganization(c, view.OrganizationID) {
		h.HandleError(c, shared.ErrNotFound)
		return
	}
	h.SuccessWithWarnings(c, view, warnings)
}

// Create handles POST /admin/clients. A client without an organization
// joins the caller's.
// @ID           createClient
// @Summary      Register a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body client.ClientRequest true "Client"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	req, ok := h.bindClient(c)
	if !ok {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update handles PUT /admin/clients/:id
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Identifier"
// @Param        request body client.ClientRequest true "Client"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	req, ok := h.bindClient(c)
	if !ok {
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete handles DELETE /admin/clients/:id
// @ID           deleteClient
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      204
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LookupDNI handles GET /common/reniec/:dni
// @ID           lookupDNI
// @Summary      Look up a DNI in RENIEC
// @Tags         common
// @Produce      json
// @Param        dni path string true "Eight digit DNI"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /common/reniec/{dni} [get]
func (h *ClientHandler) LookupDNI(c *gin.Context) {
	person, err := h.service.LookupDNI(c.Request.Context(), c.Param("dni"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, person)
}

func (h *ClientHandler) bindClient(c *gin.Context) (client.ClientRequest, bool) {
	var req client.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return req, false
	}
	scope := organizationScope(c)
	if req.OrganizationID == "" {
		req.OrganizationID = scope
	}
	if !canAccessOrganization(c, req.OrganizationID) {
		h.HandleError(c, shared.ErrForbidden)
		return req, false
	}
	return req, true
}
