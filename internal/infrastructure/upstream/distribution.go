package upstream

import (
	"context"

	"github.com/jass/bff/internal/domain/distribution"
)

// DistributionClient calls the distribution microservice
type DistributionClient struct {
	client *Client
}

// NewDistributionClient wraps the distribution service client
func NewDistributionClient(c *Client) *DistributionClient {
	return &DistributionClient{client: c}
}

// ListRoutes returns every route
func (d *DistributionClient) ListRoutes(ctx context.Context) ([]distribution.Route, error) {
	return getList[distribution.Route](ctx, d.client, "/api/admin/routes", nil)
}

// ListSchedules returns every schedule
func (d *DistributionClient) ListSchedules(ctx context.Context) ([]distribution.Schedule, error) {
	return getList[distribution.Schedule](ctx, d.client, "/api/admin/schedules", nil)
}

// ListPrograms returns every distribution program
func (d *DistributionClient) ListPrograms(ctx context.Context) ([]distribution.Program, error) {
	return getList[distribution.Program](ctx, d.client, "/api/admin/programs", nil)
}

var _ distribution.Gateway = (*DistributionClient)(nil)
