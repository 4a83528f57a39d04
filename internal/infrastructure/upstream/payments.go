package upstream

import (
	"context"
	"net/url"

	"github.com/jass/bff/internal/domain/payment"
)

// PaymentsClient calls the payments microservice
type PaymentsClient struct {
	client *Client
}

// NewPaymentsClient wraps the payments service client
func NewPaymentsClient(c *Client) *PaymentsClient {
	return &PaymentsClient{client: c}
}

// ListPayments returns the payments of an organization
func (p *PaymentsClient) ListPayments(ctx context.Context, organizationID string) ([]payment.Payment, error) {
	return getList[payment.Payment](ctx, p.client, "/api/admin/payments", orgQuery(organizationID))
}

// GetPayment returns one payment with its details
func (p *PaymentsClient) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	var pay payment.Payment
	if err := p.client.Get(ctx, "/api/admin/payments/"+url.PathEscape(id), nil, &pay); err != nil {
		return nil, err
	}
	return &pay, nil
}

// CreatePayment registers a payment
func (p *PaymentsClient) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.Payment, error) {
	var pay payment.Payment
	if err := p.client.Post(ctx, "/api/admin/payments", input, &pay); err != nil {
		return nil, err
	}
	return &pay, nil
}

// ListFares returns every fare
func (p *PaymentsClient) ListFares(ctx context.Context) ([]payment.Fare, error) {
	return getList[payment.Fare](ctx, p.client, "/api/admin/fares", nil)
}

var _ payment.Gateway = (*PaymentsClient)(nil)
