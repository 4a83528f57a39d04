package upstream

import (
	"context"
	"net/url"

	"github.com/jass/bff/internal/domain/organization"
)

// OrganizationsClient calls the organizations microservice
type OrganizationsClient struct {
	client *Client
}

// NewOrganizationsClient wraps the organizations service client
func NewOrganizationsClient(c *Client) *OrganizationsClient {
	return &OrganizationsClient{client: c}
}

// ListOrganizations returns every organization
func (o *OrganizationsClient) ListOrganizations(ctx context.Context) ([]organization.Organization, error) {
	return getList[organization.Organization](ctx, o.client, "/api/admin/organizations", nil)
}

// GetOrganization returns one organization
func (o *OrganizationsClient) GetOrganization(ctx context.Context, id string) (*organization.Organization, error) {
	var org organization.Organization
	if err := o.client.Get(ctx, "/api/admin/organizations/"+url.PathEscape(id), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListZones returns the zones of an organization
func (o *OrganizationsClient) ListZones(ctx context.Context, organizationID string) ([]organization.Zone, error) {
	return getList[organization.Zone](ctx, o.client, "/api/admin/zones", orgQuery(organizationID))
}

// ListStreets returns the streets of an organization
func (o *OrganizationsClient) ListStreets(ctx context.Context, organizationID string) ([]organization.Street, error) {
	return getList[organization.Street](ctx, o.client, "/api/admin/streets", orgQuery(organizationID))
}

// ListStreetsByZone returns the streets of one zone
func (o *OrganizationsClient) ListStreetsByZone(ctx context.Context, zoneID string) ([]organization.Street, error) {
	return getList[organization.Street](ctx, o.client, "/api/admin/zones/"+url.PathEscape(zoneID)+"/streets", nil)
}

var _ organization.Directory = (*OrganizationsClient)(nil)
