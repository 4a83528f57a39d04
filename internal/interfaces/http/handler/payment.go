package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/payment"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/interfaces/http/middleware"
)

// PaymentHandler serves payments and fares
type PaymentHandler struct {
	BaseHandler
	service *payment.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(base BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// List handles GET /admin/payments
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
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
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.List)(c)
}

// Get handles GET /admin/payments/:id
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
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

// Create handles POST /admin/payments
// @ID           createPayment
// @Summary      Register a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payment.CreatePaymentRequest true "Payment"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req payment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.OrganizationID == "" {
		req.OrganizationID = organizationScope(c)
	}
	if !canAccessOrganization(c, req.OrganizationID) {
		h.HandleError(c, shared.ErrForbidden)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Fares handles GET /admin/fares
// @ID           listFares
// @Summary      List fares
// @Tags         payments
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
// @Router       /admin/fares [get]
func (h *PaymentHandler) Fares(c *gin.Context) {
	scopedList(&h.BaseHandler, h.service.Fares)(c)
}
