// Package models contains the GORM models of the report archive.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jass/bff/internal/domain/report"
)

// ArchivedReportModel is the persistence model of report.ArchivedReport
type ArchivedReportModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           string    `gorm:"type:varchar(40);not null;index:idx_archived_reports_org_kind,priority:2"`
	Format         string    `gorm:"type:varchar(10);not null"`
	Title          string    `gorm:"type:varchar(200);not null"`
	OrganizationID string    `gorm:"type:varchar(64);index:idx_archived_reports_org_kind,priority:1"`
	GeneratedBy    string    `gorm:"type:varchar(64)"`
	StorageKey     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	SizeBytes      int64     `gorm:"not null"`
	RowCount       int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name
func (ArchivedReportModel) TableName() string {
	return "archived_reports"
}

// ToDomain converts the model to the domain type
func (m *ArchivedReportModel) ToDomain() *report.ArchivedReport {
	return &report.ArchivedReport{
		ID:             m.ID,
		Kind:           report.Kind(m.Kind),
		Format:         report.Format(m.Format),
		Title:          m.Title,
		OrganizationID: m.OrganizationID,
		GeneratedBy:    m.GeneratedBy,
		StorageKey:     m.StorageKey,
		SizeBytes:      m.SizeBytes,
		RowCount:       m.RowCount,
		CreatedAt:      m.CreatedAt,
	}
}

// ArchivedReportModelFromDomain converts the domain type to the model
func ArchivedReportModelFromDomain(r *report.ArchivedReport) *ArchivedReportModel {
	return &ArchivedReportModel{
		ID:             r.ID,
		Kind:           string(r.Kind),
		Format:         string(r.Format),
		Title:          r.Title,
		OrganizationID: r.OrganizationID,
		GeneratedBy:    r.GeneratedBy,
		StorageKey:     r.StorageKey,
		SizeBytes:      r.SizeBytes,
		RowCount:       r.RowCount,
		CreatedAt:      r.CreatedAt,
	}
}
