package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appclient "github.com/jass/bff/internal/application/client"
	appdistribution "github.com/jass/bff/internal/application/distribution"
	"github.com/jass/bff/internal/application/listing"
	apporganization "github.com/jass/bff/internal/application/organization"
	apppayment "github.com/jass/bff/internal/application/payment"
	appquality "github.com/jass/bff/internal/application/quality"
	appwaterbox "github.com/jass/bff/internal/application/waterbox"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/domain/shared"
	infra "github.com/jass/bff/internal/infrastructure/printing"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Sources are the listings a report can print. A nil source makes its
// report kinds unavailable.
type Sources struct {
	Organizations *apporganization.Service
	Clients       *appclient.Service
	Payments      *apppayment.Service
	Distribution  *appdistribution.Service
	WaterBoxes    *appwaterbox.Service
	Quality       *appquality.Service
}

// GenerateRequest selects what to print
type GenerateRequest struct {
	Kind           report.Kind
	Format         report.Format
	OrganizationID string
	// OrganizationFilter narrows the organizations report; empty lists
	// every organization
	OrganizationFilter string
	GeneratedBy        string
	Query              listing.Query
	Layout             report.Layout
}

// Document is a generated report
type Document struct {
	Kind        report.Kind
	Format      report.Format
	Content     []byte
	ContentType string
	Filename    string
	RowCount    int
	Warnings    []string
	// Archived is set when the document was stored in the archive
	Archived *report.ArchivedReport
}

// Service generates printable reports from the enriched listings
type Service struct {
	sources  Sources
	engine   *infra.TemplateEngine
	renderer infra.PDFRenderer
	archive  report.ArchiveRepository
	objects  report.ObjectStore
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithArchive stores every generated PDF in objects and records it in repo
func WithArchive(repo report.ArchiveRepository, objects report.ObjectStore) Option {
	return func(s *Service) {
		s.archive = repo
		s.objects = objects
	}
}

// WithMetrics counts generated reports
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new Service. renderer may be nil, in which case only
// HTML reports are available.
func NewService(sources Sources, engine *infra.TemplateEngine, renderer infra.PDFRenderer, opts ...Option) *Service {
	s := &Service{
		sources:  sources,
		engine:   engine,
		renderer: renderer,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ArchiveEnabled reports whether generated PDFs are archived
func (s *Service) ArchiveEnabled() bool {
	return s.archive != nil && s.objects != nil
}

// Generate builds the table for req.Kind and renders it
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Document, error) {
	if req.Layout.PaperSize == "" {
		req.Layout = report.DefaultLayout()
	}
	if req.Format == "" {
		req.Format = report.FormatPDF
	}
	if req.Format == report.FormatPDF && s.renderer == nil {
		return nil, shared.NewDomainError("UNAVAILABLE", "La generación de PDF no está disponible")
	}

	table, warnings, err := s.BuildTable(ctx, req)
	if err != nil {
		return nil, err
	}

	html, err := s.engine.RenderTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to render report template: %w", err)
	}

	doc := &Document{
		Kind:        req.Kind,
		Format:      req.Format,
		ContentType: req.Format.ContentType(),
		Filename:    filename(req.Kind, req.Format, table.GeneratedAt),
		RowCount:    table.RowCount(),
		Warnings:    warnings,
	}
	log := s.logger.With(zap.String("kind", string(req.Kind)), zap.String("format", string(req.Format)))

	if req.Format == report.FormatHTML {
		doc.Content = []byte(html)
		s.metrics.IncReport(string(req.Kind), string(req.Format))
		return doc, nil
	}

	renderCtx, span := telemetry.StartSpan(ctx, "report.render",
		telemetry.AttrReportKind.String(string(req.Kind)),
		telemetry.AttrReportRows.Int(doc.RowCount),
	)
	result, err := s.renderer.Render(renderCtx, &infra.RenderRequest{
		HTML:       html,
		Layout:     table.Layout,
		Title:      table.Title,
		FooterHTML: s.engine.FooterHTML(table),
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		log.Error("PDF rendering failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	doc.Content = result.PDFData
	s.metrics.IncReport(string(req.Kind), string(req.Format))
	log.Info("Report generated",
		zap.Int("rows", doc.RowCount),
		zap.Int("pages", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration),
	)

	if s.ArchiveEnabled() {
		archived, err := s.store(ctx, req, doc)
		if err != nil {
			// the caller still gets the document
			log.Warn("Report archiving failed", zap.Error(err))
			doc.Warnings = append(doc.Warnings, "No se pudo archivar el reporte")
		} else {
			doc.Archived = archived
		}
	}
	return doc, nil
}

// BuildTable loads the enriched listing of req.Kind and lays it out
func (s *Service) BuildTable(ctx context.Context, req GenerateRequest) (*report.Table, []string, error) {
	var (
		cols     []report.Column
		rows     [][]report.Cell
		summary  []report.SummaryItem
		warnings []string
		err      error
		orgID    = req.OrganizationID
		q        = req.Query
	)

	switch req.Kind {
	case report.KindClients:
		if s.sources.Clients == nil {
			break
		}
		var items []appclient.ClientView
		if items, warnings, err = s.sources.Clients.Export(ctx, orgID, q); err == nil {
			cols, rows, summary = clientsTable(items)
		}
	case report.KindPayments:
		if s.sources.Payments == nil {
			break
		}
		var items []apppayment.PaymentView
		if items, warnings, err = s.sources.Payments.Export(ctx, orgID, q); err == nil {
			cols, rows, summary = paymentsTable(items)
		}
	case report.KindFares:
		if s.sources.Payments == nil {
			break
		}
		var items []apppayment.FareView
		if items, warnings, err = s.sources.Payments.ExportFares(ctx, orgID, q); err == nil {
			cols, rows, summary = faresTable(items)
		}
	case report.KindRoutes:
		if s.sources.Distribution == nil {
			break
		}
		var items []appdistribution.RouteView
		if items, warnings, err = s.sources.Distribution.ExportRoutes(ctx, orgID, q); err == nil {
			cols, rows, summary = routesTable(items)
		}
	case report.KindSchedules:
		if s.sources.Distribution == nil {
			break
		}
		var items []appdistribution.ScheduleView
		if items, warnings, err = s.sources.Distribution.ExportSchedules(ctx, orgID, q); err == nil {
			cols, rows, summary = schedulesTable(items)
		}
	case report.KindPrograms:
		if s.sources.Distribution == nil {
			break
		}
		var items []appdistribution.ProgramView
		if items, warnings, err = s.sources.Distribution.ExportPrograms(ctx, orgID, q); err == nil {
			cols, rows, summary = programsTable(items)
		}
	case report.KindWaterBoxes:
		if s.sources.WaterBoxes == nil {
			break
		}
		var items []appwaterbox.WaterBoxView
		if items, warnings, err = s.sources.WaterBoxes.Export(ctx, orgID, q); err == nil {
			cols, rows, summary = waterBoxesTable(items)
		}
	case report.KindQualityTests:
		if s.sources.Quality == nil {
			break
		}
		var items []appquality.TestView
		if items, warnings, err = s.sources.Quality.ExportTests(ctx, orgID, q); err == nil {
			cols, rows, summary = qualityTestsTable(items)
		}
	case report.KindChlorineRecords:
		if s.sources.Quality == nil {
			break
		}
		var items []appquality.ChlorineView
		if items, warnings, err = s.sources.Quality.ExportChlorine(ctx, orgID, q); err == nil {
			cols, rows, summary = chlorineTable(items)
		}
	case report.KindOrganizations:
		if s.sources.Organizations == nil {
			break
		}
		var items []apporganization.OrganizationView
		if items, err = s.sources.Organizations.Export(ctx, req.OrganizationFilter, q); err == nil {
			cols, rows, summary = organizationsTable(items)
		}
	default:
		return nil, nil, shared.ErrInvalidReport
	}
	if err != nil {
		return nil, nil, err
	}
	if cols == nil {
		return nil, nil, shared.ErrInvalidReport
	}

	return &report.Table{
		Kind:             req.Kind,
		Title:            req.Kind.Title(),
		OrganizationName: s.organizationName(ctx, orgID),
		GeneratedBy:      req.GeneratedBy,
		GeneratedAt:      s.now(),
		Columns:          cols,
		Rows:             rows,
		Summary:          summary,
		Layout:           req.Layout,
	}, warnings, nil
}

// Archive lists archived report metadata
func (s *Service) Archive(ctx context.Context, filter report.ArchiveFilter) ([]report.ArchivedReport, error) {
	if !s.ArchiveEnabled() {
		return nil, shared.NewDomainError("UNAVAILABLE", "El archivo de reportes no está habilitado")
	}
	return s.archive.List(ctx, filter)
}

// DownloadURL returns a temporary link to an archived report. Reports of
// another organization are reported as missing.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID, organizationID string) (string, time.Time, error) {
	if !s.ArchiveEnabled() {
		return "", time.Time{}, shared.NewDomainError("UNAVAILABLE", "El archivo de reportes no está habilitado")
	}
	archived, err := s.archive.FindByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if organizationID != "" && archived.OrganizationID != organizationID {
		return "", time.Time{}, shared.ErrNotFound
	}
	return s.objects.DownloadURL(ctx, archived.StorageKey)
}

func (s *Service) store(ctx context.Context, req GenerateRequest, doc *Document) (*report.ArchivedReport, error) {
	archived := report.NewArchivedReport(req.Kind, req.Format, req.OrganizationID, req.GeneratedBy, doc.RowCount, int64(len(doc.Content)))
	if err := s.objects.Upload(ctx, archived.StorageKey, doc.Content, doc.ContentType); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}
	if err := s.archive.Save(ctx, archived); err != nil {
		// keep storage and metadata consistent
		if delErr := s.objects.Delete(ctx, archived.StorageKey); delErr != nil {
			s.logger.Warn("Could not remove orphaned report object", zap.String("key", archived.StorageKey), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}
	return archived, nil
}

func (s *Service) organizationName(ctx context.Context, id string) string {
	if id == "" || s.sources.Organizations == nil {
		return ""
	}
	org, err := s.sources.Organizations.Get(ctx, id)
	if err != nil {
		s.logger.Debug("Organization name unavailable for report header", zap.String("organization_id", id), zap.Error(err))
		return ""
	}
	return org.DisplayName
}

func filename(kind report.Kind, format report.Format, at time.Time) string {
	return fmt.Sprintf("reporte-%s-%s.%s", kind, at.Format("20060102-150405"), format.Extension())
}
