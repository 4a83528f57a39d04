package resolver

import (
	"context"
	"strings"

	"github.com/jass/bff/internal/domain/distribution"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/quality"
	"github.com/jass/bff/internal/domain/waterbox"
)

// Catalog builds the lookups of every referenced collection from the
// upstream gateways. Nil gateways produce lookups that always fail.
type Catalog struct {
	Directory      organization.Directory
	UserDirectory  identity.UserDirectory
	Distribution   distribution.Gateway
	Infrastructure waterbox.Gateway
	Quality        quality.Gateway
}

// Organizations resolves organization ids
func (c Catalog) Organizations() Lookup {
	return Lookup{
		Kind: KindOrganization,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Directory == nil {
				return nil, errNoGateway
			}
			items, err := c.Directory.ListOrganizations(ctx)
			if err != nil {
				return nil, err
			}
			return Names(items,
				func(o organization.Organization) string { return o.OrganizationID },
				organization.Organization.DisplayName), nil
		},
	}
}

// Users resolves user ids within an organization
func (c Catalog) Users(organizationID string) Lookup {
	return Lookup{
		Kind:  KindUser,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.UserDirectory == nil {
				return nil, errNoGateway
			}
			items, err := c.UserDirectory.ListUsers(ctx, organizationID)
			if err != nil {
				return nil, err
			}
			return Names(items,
				func(u identity.User) string { return u.ID },
				identity.User.DisplayName), nil
		},
	}
}

// Zones resolves zone ids within an organization
func (c Catalog) Zones(organizationID string) Lookup {
	return Lookup{
		Kind:  KindZone,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Directory == nil {
				return nil, errNoGateway
			}
			items, err := c.Directory.ListZones(ctx, organizationID)
			if err != nil {
				return nil, err
			}
			return Names(items,
				func(z organization.Zone) string { return z.ZoneID },
				organization.Zone.DisplayName), nil
		},
	}
}

// Streets resolves street ids within an organization
func (c Catalog) Streets(organizationID string) Lookup {
	return Lookup{
		Kind:  KindStreet,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Directory == nil {
				return nil, errNoGateway
			}
			items, err := c.Directory.ListStreets(ctx, organizationID)
			if err != nil {
				return nil, err
			}
			return Names(items,
				func(s organization.Street) string { return s.StreetID },
				organization.Street.DisplayName), nil
		},
	}
}

// Routes resolves route ids. The distribution service is not scoped by
// organization, so the list is filtered locally.
func (c Catalog) Routes(organizationID string) Lookup {
	return Lookup{
		Kind:  KindRoute,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Distribution == nil {
				return nil, errNoGateway
			}
			items, err := c.Distribution.ListRoutes(ctx)
			if err != nil {
				return nil, err
			}
			items = inOrganization(items, organizationID, func(r distribution.Route) string { return r.OrganizationID })
			return Names(items,
				func(r distribution.Route) string { return r.ID },
				func(r distribution.Route) string { return firstNonBlank(r.RouteName, r.RouteCode) }), nil
		},
	}
}

// Schedules resolves schedule ids
func (c Catalog) Schedules(organizationID string) Lookup {
	return Lookup{
		Kind:  KindSchedule,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Distribution == nil {
				return nil, errNoGateway
			}
			items, err := c.Distribution.ListSchedules(ctx)
			if err != nil {
				return nil, err
			}
			items = inOrganization(items, organizationID, func(s distribution.Schedule) string { return s.OrganizationID })
			return Names(items,
				func(s distribution.Schedule) string { return s.ID },
				func(s distribution.Schedule) string { return firstNonBlank(s.ScheduleName, s.ScheduleCode) }), nil
		},
	}
}

// WaterBoxes resolves water box ids to their box code
func (c Catalog) WaterBoxes(organizationID string) Lookup {
	return Lookup{
		Kind:  KindWaterBox,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Infrastructure == nil {
				return nil, errNoGateway
			}
			items, err := c.Infrastructure.ListWaterBoxes(ctx)
			if err != nil {
				return nil, err
			}
			items = inOrganization(items, organizationID, func(w waterbox.WaterBox) string { return w.OrganizationID })
			return Names(items,
				func(w waterbox.WaterBox) string { return w.ID },
				func(w waterbox.WaterBox) string { return w.BoxCode }), nil
		},
	}
}

// TestingPoints resolves testing point ids
func (c Catalog) TestingPoints(organizationID string) Lookup {
	return Lookup{
		Kind:  KindTestingPoint,
		Scope: organizationID,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			if c.Quality == nil {
				return nil, errNoGateway
			}
			items, err := c.Quality.ListTestingPoints(ctx)
			if err != nil {
				return nil, err
			}
			items = inOrganization(items, organizationID, func(p quality.TestingPoint) string { return p.OrganizationID })
			return Names(items,
				func(p quality.TestingPoint) string { return p.ID },
				func(p quality.TestingPoint) string { return firstNonBlank(p.PointName, p.PointCode) }), nil
		},
	}
}

// inOrganization keeps the items of one organization. Items without an
// organization id are kept; an empty filter keeps everything.
func inOrganization[T any](items []T, organizationID string, org func(T) string) []T {
	if organizationID == "" {
		return items
	}
	out := items[:0:0]
	for _, item := range items {
		if id := org(item); id == "" || id == organizationID {
			out = append(out, item)
		}
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
