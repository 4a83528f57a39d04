package upstream

import (
	"context"

	"github.com/jass/bff/internal/domain/waterbox"
)

// InfrastructureClient calls the infrastructure microservice (water boxes)
type InfrastructureClient struct {
	client *Client
}

// NewInfrastructureClient wraps the infrastructure service client
func NewInfrastructureClient(c *Client) *InfrastructureClient {
	return &InfrastructureClient{client: c}
}

// ListWaterBoxes returns every water box
func (i *InfrastructureClient) ListWaterBoxes(ctx context.Context) ([]waterbox.WaterBox, error) {
	return getList[waterbox.WaterBox](ctx, i.client, "/api/admin/water-boxes", nil)
}

// ListAssignments returns every water box assignment
func (i *InfrastructureClient) ListAssignments(ctx context.Context) ([]waterbox.Assignment, error) {
	return getList[waterbox.Assignment](ctx, i.client, "/api/admin/water-box-assignments", nil)
}

var _ waterbox.Gateway = (*InfrastructureClient)(nil)
