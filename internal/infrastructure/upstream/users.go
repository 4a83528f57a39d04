package upstream

import (
	"context"
	"net/url"

	"github.com/jass/bff/internal/domain/identity"
)

// UsersClient calls the users microservice
type UsersClient struct {
	client *Client
}

// NewUsersClient wraps the users service client
func NewUsersClient(c *Client) *UsersClient {
	return &UsersClient{client: c}
}

// ListUsers returns the users of an organization
func (u *UsersClient) ListUsers(ctx context.Context, organizationID string) ([]identity.User, error) {
	return getList[identity.User](ctx, u.client, "/api/admin/users", orgQuery(organizationID))
}

// ListClients returns the users holding the CLIENT role
func (u *UsersClient) ListClients(ctx context.Context, organizationID string) ([]identity.User, error) {
	return getList[identity.User](ctx, u.client, "/api/admin/clients", orgQuery(organizationID))
}

// GetUser returns one user
func (u *UsersClient) GetUser(ctx context.Context, id string) (*identity.User, error) {
	var user identity.User
	if err := u.client.Get(ctx, "/api/admin/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateClient registers a client
func (u *UsersClient) CreateClient(ctx context.Context, input identity.ClientInput) (*identity.User, error) {
	var user identity.User
	if err := u.client.Post(ctx, "/api/admin/clients", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateClient replaces a client's writable fields
func (u *UsersClient) UpdateClient(ctx context.Context, id string, input identity.ClientInput) (*identity.User, error) {
	var user identity.User
	if err := u.client.Put(ctx, "/api/admin/clients/"+url.PathEscape(id), input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteClient removes a client
func (u *UsersClient) DeleteClient(ctx context.Context, id string) error {
	return u.client.Delete(ctx, "/api/admin/clients/"+url.PathEscape(id))
}

var _ identity.UserDirectory = (*UsersClient)(nil)
