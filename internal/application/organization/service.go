package organization

import (
	"context"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/shared"
)

var organizationSpec = listing.Spec[OrganizationView]{
	Search: []func(OrganizationView) string{
		func(o OrganizationView) string { return o.OrganizationCode },
		func(o OrganizationView) string { return o.OrganizationName },
		func(o OrganizationView) string { return o.LegalRepresentative },
		func(o OrganizationView) string { return o.Address },
	},
	Filters: map[string]func(OrganizationView) string{
		"status": func(o OrganizationView) string { return o.Status },
	},
	Sorts: map[string]listing.SortKey[OrganizationView]{
		"organizationCode": listing.Text(func(o OrganizationView) string { return o.OrganizationCode }),
		"organizationName": listing.Text(func(o OrganizationView) string { return o.DisplayName }),
		"status":           listing.Text(func(o OrganizationView) string { return o.StatusLabel }),
	},
	DefaultSort: "organizationName",
	DefaultDir:  listing.SortAsc,
}

var zoneSpec = listing.Spec[ZoneView]{
	Search: []func(ZoneView) string{
		func(z ZoneView) string { return z.ZoneCode },
		func(z ZoneView) string { return z.ZoneName },
		func(z ZoneView) string { return z.Description },
	},
	Filters: map[string]func(ZoneView) string{
		"status": func(z ZoneView) string { return z.Status },
	},
	Sorts: map[string]listing.SortKey[ZoneView]{
		"zoneCode": listing.Text(func(z ZoneView) string { return z.ZoneCode }),
		"zoneName": listing.Text(func(z ZoneView) string { return z.ZoneName }),
	},
	DefaultSort: "zoneCode",
	DefaultDir:  listing.SortAsc,
}

var streetSpec = listing.Spec[StreetView]{
	Search: []func(StreetView) string{
		func(s StreetView) string { return s.StreetCode },
		func(s StreetView) string { return s.DisplayName },
	},
	Filters: map[string]func(StreetView) string{
		"status": func(s StreetView) string { return s.Status },
		"type":   func(s StreetView) string { return s.StreetType },
	},
	Sorts: map[string]listing.SortKey[StreetView]{
		"streetCode": listing.Text(func(s StreetView) string { return s.StreetCode }),
		"streetName": listing.Text(func(s StreetView) string { return s.StreetName }),
	},
	DefaultSort: "streetCode",
	DefaultDir:  listing.SortAsc,
}

// Service serves organizations, zones and streets
type Service struct {
	directory organization.Directory
	resolver  *resolver.Resolver
	catalog   resolver.Catalog
}

// NewService creates a new Service
func NewService(directory organization.Directory, r *resolver.Resolver, catalog resolver.Catalog) *Service {
	return &Service{
		directory: directory,
		resolver:  r,
		catalog:   catalog,
	}
}

// List returns a page of organizations. A non-empty organizationID keeps
// only that organization.
func (s *Service) List(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[OrganizationView], error) {
	items, err := s.Export(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[OrganizationView]{Page: listing.Paginate(items, q.Page, q.PageSize)}, nil
}

// Export returns every organization matching q, sorted. A non-empty
// organizationID keeps only that organization.
func (s *Service) Export(ctx context.Context, organizationID string, q listing.Query) ([]OrganizationView, error) {
	orgs, err := s.directory.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]OrganizationView, 0, len(orgs))
	for _, o := range orgs {
		if organizationID != "" && o.OrganizationID != organizationID {
			continue
		}
		views = append(views, toOrganizationView(o))
	}
	return listing.Select(views, organizationSpec, q)
}

// Get returns one organization
func (s *Service) Get(ctx context.Context, id string) (*OrganizationView, error) {
	if id == "" {
		return nil, shared.ErrInvalidInput
	}
	o, err := s.directory.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.ErrNotFound
	}
	view := toOrganizationView(*o)
	return &view, nil
}

// Zones returns a page of the zones of an organization
func (s *Service) Zones(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[ZoneView], error) {
	if organizationID == "" {
		return nil, shared.ErrInvalidInput
	}
	zones, err := s.directory.ListZones(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	session := s.resolver.SessionFrom(ctx)
	orgs := session.Table(ctx, s.catalog.Organizations())

	views := make([]ZoneView, len(zones))
	for i, z := range zones {
		views[i] = ZoneView{
			Zone:             z,
			OrganizationName: orgs.Name(z.OrganizationID),
			StatusLabel:      shared.StatusLabel(z.Status),
		}
	}
	return listing.NewResult(views, zoneSpec, q, session.Warnings())
}

// Streets returns a page of the streets of a zone. When organizationID is
// set the zone must belong to it, otherwise ErrForbidden is returned.
func (s *Service) Streets(ctx context.Context, organizationID, zoneID string, q listing.Query) (*listing.Result[StreetView], error) {
	if zoneID == "" {
		return nil, shared.ErrInvalidInput
	}

	session := s.resolver.SessionFrom(ctx)
	var zoneName func(id string) string
	if organizationID != "" {
		zones, err := s.directory.ListZones(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(zones))
		for _, z := range zones {
			names[z.ZoneID] = z.DisplayName()
		}
		if _, ok := names[zoneID]; !ok {
			return nil, shared.ErrForbidden
		}
		zoneName = func(id string) string {
			if n := names[id]; n != "" {
				return n
			}
			return resolver.KindZone.Fallback(id)
		}
	} else {
		zoneName = session.Table(ctx, s.catalog.Zones(organizationID)).Name
	}

	streets, err := s.directory.ListStreetsByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	views := make([]StreetView, len(streets))
	for i, st := range streets {
		views[i] = StreetView{
			Street:      st,
			DisplayName: st.DisplayName(),
			ZoneName:    zoneName(st.ZoneID),
			StatusLabel: shared.StatusLabel(st.Status),
		}
	}
	return listing.NewResult(views, streetSpec, q, session.Warnings())
}
