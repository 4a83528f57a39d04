package upstream

import (
	"context"
	"net/url"

	"github.com/jass/bff/internal/domain/identity"
)

// ReniecClient looks up DNIs. The client is configured with a static
// service token instead of the caller's bearer token.
type ReniecClient struct {
	client *Client
}

// NewReniecClient wraps the RENIEC lookup client
func NewReniecClient(c *Client) *ReniecClient {
	return &ReniecClient{client: c}
}

// LookupDNI returns the person registered under dni
func (r *ReniecClient) LookupDNI(ctx context.Context, dni string) (*identity.Person, error) {
	var person identity.Person
	if err := r.client.Get(ctx, "/reniec/dni", url.Values{"numero": []string{dni}}, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

var _ identity.PersonLookup = (*ReniecClient)(nil)
