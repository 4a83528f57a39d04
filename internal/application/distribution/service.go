package distribution

import (
	"context"
	"strings"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/distribution"
	"github.com/jass/bff/internal/domain/shared"
)

var routeSpec = listing.Spec[RouteView]{
	Search: []func(RouteView) string{
		func(r RouteView) string { return r.RouteCode },
		func(r RouteView) string { return r.RouteName },
		func(r RouteView) string { return r.ResponsibleName },
		func(r RouteView) string { return strings.Join(r.ZoneNames, " ") },
	},
	Filters: map[string]func(RouteView) string{
		"status": func(r RouteView) string { return r.Status },
	},
	Sorts: map[string]listing.SortKey[RouteView]{
		"routeCode":              listing.Text(func(r RouteView) string { return r.RouteCode }),
		"routeName":              listing.Text(func(r RouteView) string { return r.RouteName }),
		"totalEstimatedDuration": listing.Float(func(r RouteView) float64 { return r.TotalEstimatedDuration }),
	},
	DefaultSort: "routeCode",
	DefaultDir:  listing.SortAsc,
}

var scheduleSpec = listing.Spec[ScheduleView]{
	Search: []func(ScheduleView) string{
		func(s ScheduleView) string { return s.ScheduleCode },
		func(s ScheduleView) string { return s.ScheduleName },
		func(s ScheduleView) string { return s.ZoneName },
		func(s ScheduleView) string { return s.StreetName },
	},
	Filters: map[string]func(ScheduleView) string{
		"status":  func(s ScheduleView) string { return s.Status },
		"zone_id": func(s ScheduleView) string { return s.ZoneID },
	},
	Sorts: map[string]listing.SortKey[ScheduleView]{
		"scheduleCode": listing.Text(func(s ScheduleView) string { return s.ScheduleCode }),
		"scheduleName": listing.Text(func(s ScheduleView) string { return s.ScheduleName }),
		"startTime":    listing.TimeString(func(s ScheduleView) string { return s.StartTime }),
		"zoneName":     listing.Text(func(s ScheduleView) string { return s.ZoneName }),
	},
	DefaultSort: "scheduleCode",
	DefaultDir:  listing.SortAsc,
}

var programSpec = listing.Spec[ProgramView]{
	Search: []func(ProgramView) string{
		func(p ProgramView) string { return p.ProgramCode },
		func(p ProgramView) string { return p.RouteName },
		func(p ProgramView) string { return p.ScheduleName },
		func(p ProgramView) string { return p.ZoneName },
		func(p ProgramView) string { return p.ResponsibleName },
	},
	Filters: map[string]func(ProgramView) string{
		"status":   func(p ProgramView) string { return p.Status },
		"route_id": func(p ProgramView) string { return p.RouteID },
		"zone_id":  func(p ProgramView) string { return p.ZoneID },
	},
	Sorts: map[string]listing.SortKey[ProgramView]{
		"programCode": listing.Text(func(p ProgramView) string { return p.ProgramCode }),
		"programDate": listing.TimeString(func(p ProgramView) string { return p.ProgramDate }),
		"routeName":   listing.Text(func(p ProgramView) string { return p.RouteName }),
		"status":      listing.Text(func(p ProgramView) string { return p.StatusLabel }),
	},
	DefaultSort: "programDate",
	DefaultDir:  listing.SortDesc,
}

// Service serves routes, schedules and distribution programs. The
// distribution service returns every organization's data, so lists are
// narrowed to the caller's organization here.
type Service struct {
	gateway  distribution.Gateway
	resolver *resolver.Resolver
	catalog  resolver.Catalog
}

// NewService creates a new Service
func NewService(gateway distribution.Gateway, r *resolver.Resolver, catalog resolver.Catalog) *Service {
	return &Service{gateway: gateway, resolver: r, catalog: catalog}
}

// Routes returns a page of enriched routes
func (s *Service) Routes(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[RouteView], error) {
	views, warnings, err := s.ExportRoutes(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[RouteView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportRoutes returns every matching route, sorted
func (s *Service) ExportRoutes(ctx context.Context, organizationID string, q listing.Query) ([]RouteView, []string, error) {
	routes, err := s.gateway.ListRoutes(ctx)
	if err != nil {
		return nil, nil, err
	}
	routes = ofOrganization(routes, organizationID, func(r distribution.Route) string { return r.OrganizationID })

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx, s.catalog.Organizations(), s.catalog.Zones(organizationID), s.catalog.Users(organizationID))
	orgs := session.Table(ctx, s.catalog.Organizations())
	zones := session.Table(ctx, s.catalog.Zones(organizationID))
	users := session.Table(ctx, s.catalog.Users(organizationID))

	views := make([]RouteView, len(routes))
	for i, r := range routes {
		views[i] = RouteView{
			Route:            r,
			OrganizationName: orgs.Name(r.OrganizationID),
			ZoneNames:        zones.NameList(r.ZoneIDs()),
			ResponsibleName:  users.Name(r.ResponsibleUserID),
			StatusLabel:      shared.StatusLabel(r.Status),
		}
	}
	selected, err := listing.Select(views, routeSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

// Schedules returns a page of enriched schedules
func (s *Service) Schedules(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[ScheduleView], error) {
	views, warnings, err := s.ExportSchedules(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[ScheduleView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportSchedules returns every matching schedule, sorted
func (s *Service) ExportSchedules(ctx context.Context, organizationID string, q listing.Query) ([]ScheduleView, []string, error) {
	schedules, err := s.gateway.ListSchedules(ctx)
	if err != nil {
		return nil, nil, err
	}
	schedules = ofOrganization(schedules, organizationID, func(sc distribution.Schedule) string { return sc.OrganizationID })

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx, s.catalog.Organizations(), s.catalog.Zones(organizationID), s.catalog.Streets(organizationID))
	orgs := session.Table(ctx, s.catalog.Organizations())
	zones := session.Table(ctx, s.catalog.Zones(organizationID))
	streets := session.Table(ctx, s.catalog.Streets(organizationID))

	views := make([]ScheduleView, len(schedules))
	for i, sc := range schedules {
		views[i] = ScheduleView{
			Schedule:         sc,
			OrganizationName: orgs.Name(sc.OrganizationID),
			ZoneName:         zones.Name(sc.ZoneID),
			StreetName:       streets.Name(sc.StreetID),
			StatusLabel:      shared.StatusLabel(sc.Status),
		}
	}
	selected, err := listing.Select(views, scheduleSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

// Programs returns a page of enriched distribution programs
func (s *Service) Programs(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[ProgramView], error) {
	views, warnings, err := s.ExportPrograms(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[ProgramView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportPrograms returns every matching program, sorted
func (s *Service) ExportPrograms(ctx context.Context, organizationID string, q listing.Query) ([]ProgramView, []string, error) {
	programs, err := s.gateway.ListPrograms(ctx)
	if err != nil {
		return nil, nil, err
	}
	programs = ofOrganization(programs, organizationID, func(p distribution.Program) string { return p.OrganizationID })

	session := s.resolver.SessionFrom(ctx)
	lookups := []resolver.Lookup{
		s.catalog.Organizations(),
		s.catalog.Routes(organizationID),
		s.catalog.Schedules(organizationID),
		s.catalog.Zones(organizationID),
		s.catalog.Streets(organizationID),
		s.catalog.Users(organizationID),
	}
	session.Prefetch(ctx, lookups...)
	orgs := session.Table(ctx, lookups[0])
	routes := session.Table(ctx, lookups[1])
	schedules := session.Table(ctx, lookups[2])
	zones := session.Table(ctx, lookups[3])
	streets := session.Table(ctx, lookups[4])
	users := session.Table(ctx, lookups[5])

	views := make([]ProgramView, len(programs))
	for i, p := range programs {
		views[i] = ProgramView{
			Program:          p,
			OrganizationName: orgs.Name(p.OrganizationID),
			RouteName:        routes.Name(p.RouteID),
			ScheduleName:     schedules.Name(p.ScheduleID),
			ZoneName:         zones.Name(p.ZoneID),
			StreetName:       streets.Name(p.StreetID),
			ResponsibleName:  users.Name(p.ResponsibleUserID),
			StatusLabel:      shared.StatusLabel(p.Status),
		}
	}
	selected, err := listing.Select(views, programSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

func ofOrganization[T any](items []T, organizationID string, org func(T) string) []T {
	if organizationID == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if org(item) == organizationID {
			out = append(out, item)
		}
	}
	return out
}
