package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appreport "github.com/jass/bff/internal/application/report"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/printing"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"github.com/jass/bff/internal/interfaces/http/middleware"
)

// Report response headers
const (
	ReportRowsHeader     = "X-Report-Rows"
	ReportWarningsHeader = "X-Report-Warnings"
	ReportArchiveHeader  = "X-Report-Archive-ID"
)

const maxArchiveLimit = 200

// ReportHandler prints listings as HTML or PDF and serves the archive
type ReportHandler struct {
	BaseHandler
	service *appreport.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(base BaseHandler, service *appreport.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// ArchiveLink is a temporary download link of an archived report
type ArchiveLink struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Generate handles GET /admin/reports/:kind. The list query parameters
// select the rows; format, paper and orientation shape the output.
// @ID           generateReport
// @Summary      Render a report
// @Tags         reports
// @Produce      octet-stream
// @Param        kind path string true "Report kind"
// @Param        format query string false "pdf, xlsx, csv or html"
// @Param        paper query string false "a4 or letter"
// @Param        orientation query string false "portrait or landscape"
// @Param        page query int false "Page number, from 1"
// @Param        page_size query int false "Rows per page"
// @Param        search query string false "Free text search"
// @Param        sort_by query string false "Sort column"
// @Param        sort_dir query string false "asc or desc"
// @Param        organization_id query string false "Organization, super administrators only"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/reports/{kind} [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	layout, err := report.ParseLayout(c.Query("paper"), c.Query("orientation"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	q, err := listQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	doc, err := h.service.Generate(c.Request.Context(), appreport.GenerateRequest{
		Kind:               kind,
		Format:             format,
		OrganizationID:     organizationScope(c),
		OrganizationFilter: organizationFilter(c),
		GeneratedBy:        generatedBy(c),
		Query:              q,
		Layout:             layout,
	})
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	disposition := "attachment"
	if doc.Format == report.FormatHTML {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	c.Header(ReportRowsHeader, strconv.Itoa(doc.RowCount))
	c.Header(ReportWarningsHeader, strconv.Itoa(len(doc.Warnings)))
	if doc.Archived != nil {
		c.Header(ReportArchiveHeader, doc.Archived.ID.String())
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// Archive handles GET /admin/reports/archive
// @ID           listArchivedReports
// @Summary      List archived reports
// @Tags         reports
// @Produce      json
// @Param        kind query string false "Report kind"
// @Param        limit query int false "Maximum rows"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/reports/archive [get]
func (h *ReportHandler) Archive(c *gin.Context) {
	filter := report.ArchiveFilter{OrganizationID: organizationScope(c)}
	if raw := c.Query("kind"); raw != "" {
		kind, err := report.ParseKind(raw)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Kind = kind
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter.Limit = min(max(limit, 0), maxArchiveLimit)

	reports, err := h.service.Archive(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(reports, int64(len(reports)), 1, len(reports)))
}

// Download handles GET /admin/reports/archive/:id/download
// @ID           downloadArchivedReport
// @Summary      Temporary download link of an archived report
// @Tags         reports
// @Produce      json
// @Param        id path string true "Identifier"
// @Success      200 {object} dto.Response{data=ArchiveLink}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /admin/reports/archive/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, shared.NewDomainError("INVALID_INPUT", "Identificador de reporte no válido"))
		return
	}
	url, expires, err := h.service.DownloadURL(c.Request.Context(), id, organizationScope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ArchiveLink{ID: id.String(), URL: url, ExpiresAt: expires})
}

// handleReportError answers rendering failures; other errors take the
// common path
func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	var renderErr *printing.RenderError
	if !errors.As(err, &renderErr) {
		h.HandleError(c, err)
		return
	}

	requestID := middleware.GetRequestID(c)
	switch renderErr.Code {
	case printing.ErrCodeRenderTimeout:
		c.JSON(http.StatusGatewayTimeout, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnavailable, renderErr.UserMessage(), requestID))
	case printing.ErrCodeBusy:
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnavailable, renderErr.UserMessage(), requestID))
	default:
		h.HandleError(c, err)
	}
}

func generatedBy(c *gin.Context) string {
	s := middleware.GetSession(c)
	if s == nil {
		return ""
	}
	if s.CurrentUserComplete != nil {
		return s.CurrentUserComplete.DisplayName()
	}
	if s.CurrentUser != nil {
		return s.CurrentUser.DisplayName()
	}
	return ""
}
