package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ArchivedReport is the metadata of a generated report stored in object storage
type ArchivedReport struct {
	ID             uuid.UUID `json:"id"`
	Kind           Kind      `json:"kind"`
	Format         Format    `json:"format"`
	Title          string    `json:"title"`
	OrganizationID string    `json:"organization_id"`
	GeneratedBy    string    `json:"generated_by"`
	StorageKey     string    `json:"storage_key"`
	SizeBytes      int64     `json:"size_bytes"`
	RowCount       int       `json:"row_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewArchivedReport creates the metadata for a freshly rendered report
func NewArchivedReport(kind Kind, format Format, organizationID, generatedBy string, rows int, size int64) *ArchivedReport {
	id := uuid.New()
	now := time.Now().UTC()
	return &ArchivedReport{
		ID:             id,
		Kind:           kind,
		Format:         format,
		Title:          kind.Title(),
		OrganizationID: organizationID,
		GeneratedBy:    generatedBy,
		StorageKey:     StorageKey(kind, format, now, id),
		SizeBytes:      size,
		RowCount:       rows,
		CreatedAt:      now,
	}
}

// StorageKey builds the object key: reports/<kind>/<yyyy>/<mm>/<id>.<ext>
func StorageKey(kind Kind, format Format, at time.Time, id uuid.UUID) string {
	return "reports/" + string(kind) + "/" + at.Format("2006/01") + "/" + id.String() + "." + format.Extension()
}

// ArchiveFilter narrows archive listings
type ArchiveFilter struct {
	OrganizationID string
	Kind           Kind
	Limit          int
}

// ArchiveRepository persists archived report metadata
type ArchiveRepository interface {
	Save(ctx context.Context, r *ArchivedReport) error
	List(ctx context.Context, filter ArchiveFilter) ([]ArchivedReport, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ArchivedReport, error)
}

// ObjectStore keeps rendered report files
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
	Delete(ctx context.Context, key string) error
}
