package quality

import (
	"context"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/quality"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TestView is a quality test with its testing point and analyst names
type TestView struct {
	quality.Test
	TestingPointName string `json:"testingPointName"`
	TestedByName     string `json:"testedByName"`
	ResultStatus     string `json:"resultStatus"`
	StatusLabel      string `json:"statusLabel"`
}

// ChlorineView is a chlorine record with its references resolved
type ChlorineView struct {
	quality.ChlorineRecord
	TestingPointName string `json:"testingPointName"`
	RecordedByName   string `json:"recordedByName"`
	StatusCode       string `json:"statusCode"`
	StatusLabel      string `json:"statusLabel"`
}

var testSpec = listing.Spec[TestView]{
	Search: []func(TestView) string{
		func(t TestView) string { return t.TestCode },
		func(t TestView) string { return t.TestingPointName },
		func(t TestView) string { return t.TestedByName },
		func(t TestView) string { return t.TestType },
	},
	Filters: map[string]func(TestView) string{
		"status":           func(t TestView) string { return t.ResultStatus },
		"type":             func(t TestView) string { return t.TestType },
		"testing_point_id": func(t TestView) string { return t.TestingPointID },
	},
	Sorts: map[string]listing.SortKey[TestView]{
		"testCode":         listing.Text(func(t TestView) string { return t.TestCode }),
		"testDate":         listing.TimeString(func(t TestView) string { return t.TestDate }),
		"testingPointName": listing.Text(func(t TestView) string { return t.TestingPointName }),
		"status":           listing.Text(func(t TestView) string { return t.StatusLabel }),
	},
	DefaultSort: "testDate",
	DefaultDir:  listing.SortDesc,
}

var chlorineSpec = listing.Spec[ChlorineView]{
	Search: []func(ChlorineView) string{
		func(c ChlorineView) string { return c.RecordCode },
		func(c ChlorineView) string { return c.TestingPointName },
		func(c ChlorineView) string { return c.RecordedByName },
	},
	Filters: map[string]func(ChlorineView) string{
		"status":           func(c ChlorineView) string { return c.StatusCode },
		"type":             func(c ChlorineView) string { return c.RecordType },
		"testing_point_id": func(c ChlorineView) string { return c.TestingPointID },
	},
	Sorts: map[string]listing.SortKey[ChlorineView]{
		"recordCode": listing.Text(func(c ChlorineView) string { return c.RecordCode }),
		"recordDate": listing.TimeString(func(c ChlorineView) string { return c.RecordDate }),
		"level":      listing.Number(func(c ChlorineView) decimal.Decimal { return c.Level }),
	},
	DefaultSort: "recordDate",
	DefaultDir:  listing.SortDesc,
}

// Service serves water quality tests and chlorine records
type Service struct {
	gateway  quality.Gateway
	resolver *resolver.Resolver
	catalog  resolver.Catalog
}

// NewService creates a new Service
func NewService(gateway quality.Gateway, r *resolver.Resolver, catalog resolver.Catalog) *Service {
	return &Service{gateway: gateway, resolver: r, catalog: catalog}
}

// Tests returns a page of enriched quality tests
func (s *Service) Tests(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[TestView], error) {
	views, warnings, err := s.ExportTests(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[TestView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportTests returns every matching test, sorted
func (s *Service) ExportTests(ctx context.Context, organizationID string, q listing.Query) ([]TestView, []string, error) {
	tests, err := s.gateway.ListTests(ctx)
	if err != nil {
		return nil, nil, err
	}

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx, s.catalog.TestingPoints(organizationID), s.catalog.Users(organizationID))
	points := session.Table(ctx, s.catalog.TestingPoints(organizationID))
	users := session.Table(ctx, s.catalog.Users(organizationID))

	views := make([]TestView, 0, len(tests))
	for _, t := range tests {
		if organizationID != "" && t.OrganizationID != organizationID {
			continue
		}
		worst := t.WorstStatus()
		views = append(views, TestView{
			Test:             t,
			TestingPointName: points.Name(t.TestingPointID),
			TestedByName:     users.Name(t.TestedByUserID),
			ResultStatus:     worst,
			StatusLabel:      shared.StatusLabel(worst),
		})
	}
	selected, err := listing.Select(views, testSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

// Chlorine returns a page of enriched chlorine records
func (s *Service) Chlorine(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[ChlorineView], error) {
	views, warnings, err := s.ExportChlorine(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[ChlorineView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportChlorine returns every matching chlorine record, sorted
func (s *Service) ExportChlorine(ctx context.Context, organizationID string, q listing.Query) ([]ChlorineView, []string, error) {
	records, err := s.gateway.ListChlorineRecords(ctx)
	if err != nil {
		return nil, nil, err
	}

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx, s.catalog.TestingPoints(organizationID), s.catalog.Users(organizationID))
	points := session.Table(ctx, s.catalog.TestingPoints(organizationID))
	users := session.Table(ctx, s.catalog.Users(organizationID))

	views := make([]ChlorineView, 0, len(records))
	for _, r := range records {
		if organizationID != "" && r.OrganizationID != organizationID {
			continue
		}
		code := r.StatusCode()
		views = append(views, ChlorineView{
			ChlorineRecord:   r,
			TestingPointName: points.Name(r.TestingPointID),
			RecordedByName:   users.Name(r.RecordedByUserID),
			StatusCode:       code,
			StatusLabel:      shared.StatusLabel(code),
		})
	}
	selected, err := listing.Select(views, chlorineSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}
