package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	defaultArchiveLimit = 50
	maxArchiveLimit     = 200
)

// GormArchiveRepository implements report.ArchiveRepository using GORM
type GormArchiveRepository struct {
	db *gorm.DB
}

// NewGormArchiveRepository creates a new GormArchiveRepository
func NewGormArchiveRepository(db *gorm.DB) *GormArchiveRepository {
	return &GormArchiveRepository{db: db}
}

// Save inserts the report metadata
func (r *GormArchiveRepository) Save(ctx context.Context, archived *report.ArchivedReport) error {
	return r.db.WithContext(ctx).Create(models.ArchivedReportModelFromDomain(archived)).Error
}

// FindByID finds archived report metadata by ID
func (r *GormArchiveRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.ArchivedReport, error) {
	var model models.ArchivedReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns the newest reports first
func (r *GormArchiveRepository) List(ctx context.Context, filter report.ArchiveFilter) ([]report.ArchivedReport, error) {
	query := r.db.WithContext(ctx).Model(&models.ArchivedReportModel{})
	if filter.OrganizationID != "" {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultArchiveLimit
	}
	if limit > maxArchiveLimit {
		limit = maxArchiveLimit
	}

	var rows []models.ArchivedReportModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	reports := make([]report.ArchivedReport, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

var _ report.ArchiveRepository = (*GormArchiveRepository)(nil)
