package identity

import "context"

// AuthGateway talks to the gateway /auth namespace
type AuthGateway interface {
	Login(ctx context.Context, credentials Credentials) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UserDirectory reads and writes users through the users service
type UserDirectory interface {
	// ListUsers returns every user of an organization; an empty id means all
	ListUsers(ctx context.Context, organizationID string) ([]User, error)

	// ListClients returns the users holding the CLIENT role
	ListClients(ctx context.Context, organizationID string) ([]User, error)

	// GetUser returns one user by id
	GetUser(ctx context.Context, id string) (*User, error)

	// CreateClient registers a new client
	CreateClient(ctx context.Context, input ClientInput) (*User, error)

	// UpdateClient replaces the writable fields of a client
	UpdateClient(ctx context.Context, id string, input ClientInput) (*User, error)

	// DeleteClient removes a client
	DeleteClient(ctx context.Context, id string) error
}

// PersonLookup resolves a DNI against RENIEC
type PersonLookup interface {
	LookupDNI(ctx context.Context, dni string) (*Person, error)
}
