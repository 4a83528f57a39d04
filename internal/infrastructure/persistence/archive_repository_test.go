package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.ArchiveConfig{Driver: "sqlite", SQLitePath: ":memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(nil))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.ArchiveConfig{Driver: "mysql"}, nil)
	assert.ErrorContains(t, err, "unsupported archive driver")
}

func TestGormArchiveRepository_SaveAndFind(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormArchiveRepository(db.DB)
	ctx := context.Background()

	archived := report.NewArchivedReport(report.KindFares, report.FormatPDF, "org-1", "user-1", 12, 2048)
	require.NoError(t, repo.Save(ctx, archived))

	got, err := repo.FindByID(ctx, archived.ID)
	require.NoError(t, err)
	assert.Equal(t, archived.StorageKey, got.StorageKey)
	assert.Equal(t, report.KindFares, got.Kind)
	assert.Equal(t, "Reporte de Tarifas", got.Title)
	assert.Equal(t, 12, got.RowCount)
	assert.Equal(t, int64(2048), got.SizeBytes)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormArchiveRepository_List(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormArchiveRepository(db.DB)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, spec := range []struct {
		org  string
		kind report.Kind
	}{
		{"org-1", report.KindFares},
		{"org-1", report.KindPayments},
		{"org-2", report.KindFares},
		{"org-1", report.KindFares},
	} {
		r := report.NewArchivedReport(spec.kind, report.FormatPDF, spec.org, "u", i, 100)
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, r))
	}

	all, err := repo.List(ctx, report.ArchiveFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 3, all[0].RowCount, "newest first")

	org1Fares, err := repo.List(ctx, report.ArchiveFilter{OrganizationID: "org-1", Kind: report.KindFares})
	require.NoError(t, err)
	require.Len(t, org1Fares, 2)
	assert.Equal(t, 3, org1Fares[0].RowCount)
	assert.Equal(t, 0, org1Fares[1].RowCount)

	limited, err := repo.List(ctx, report.ArchiveFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDatabase_MigrateTwice(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.Migrate(nil))

	m, err := db.Migrator(nil)
	require.NoError(t, err)
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, m.Close())
	assert.NoError(t, db.Ping(), "the shared sqlite handle stays open")
}
