package upstream

import (
	"context"

	"github.com/jass/bff/internal/domain/quality"
)

// QualityClient calls the water quality microservice
type QualityClient struct {
	client *Client
}

// NewQualityClient wraps the water quality service client
func NewQualityClient(c *Client) *QualityClient {
	return &QualityClient{client: c}
}

// ListTests returns every quality test
func (q *QualityClient) ListTests(ctx context.Context) ([]quality.Test, error) {
	return getList[quality.Test](ctx, q.client, "/api/admin/quality-tests", nil)
}

// ListChlorineRecords returns every chlorine record
func (q *QualityClient) ListChlorineRecords(ctx context.Context) ([]quality.ChlorineRecord, error) {
	return getList[quality.ChlorineRecord](ctx, q.client, "/api/admin/chlorine-records", nil)
}

// ListTestingPoints returns every testing point
func (q *QualityClient) ListTestingPoints(ctx context.Context) ([]quality.TestingPoint, error) {
	return getList[quality.TestingPoint](ctx, q.client, "/api/admin/testing-points", nil)
}

var _ quality.Gateway = (*QualityClient)(nil)
