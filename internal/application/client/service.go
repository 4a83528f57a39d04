package client

import (
	"context"
	"strings"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var clientSpec = listing.Spec[ClientView]{
	Search: []func(ClientView) string{
		func(c ClientView) string { return c.FullName },
		func(c ClientView) string { return c.UserCode },
		func(c ClientView) string { return c.Username },
		func(c ClientView) string { return c.DocumentNumber },
		func(c ClientView) string { return c.Email },
		func(c ClientView) string { return c.Phone },
	},
	Filters: map[string]func(ClientView) string{
		"status":          func(c ClientView) string { return c.Status },
		"organization_id": func(c ClientView) string { return c.OrganizationID },
		"zone_id":         func(c ClientView) string { return c.ZoneID },
		"street_id":       func(c ClientView) string { return c.StreetID },
	},
	Sorts: map[string]listing.SortKey[ClientView]{
		"userCode":       listing.Text(func(c ClientView) string { return c.UserCode }),
		"fullName":       listing.Text(func(c ClientView) string { return c.FullName }),
		"lastName":       listing.Text(func(c ClientView) string { return c.LastName }),
		"documentNumber": listing.Text(func(c ClientView) string { return c.DocumentNumber }),
		"zoneName":       listing.Text(func(c ClientView) string { return c.ZoneName }),
		"status":         listing.Text(func(c ClientView) string { return c.StatusLabel }),
	},
	DefaultSort: "fullName",
	DefaultDir:  listing.SortAsc,
}

// Service manages clients through the users service
type Service struct {
	users    identity.UserDirectory
	persons  identity.PersonLookup
	resolver *resolver.Resolver
	catalog  resolver.Catalog
	logger   *zap.Logger
}

// NewService creates a new Service
func NewService(users identity.UserDirectory, persons identity.PersonLookup, r *resolver.Resolver, catalog resolver.Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		persons:  persons,
		resolver: r,
		catalog:  catalog,
		logger:   log,
	}
}

// List returns a page of enriched clients of an organization
func (s *Service) List(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[ClientView], error) {
	views, warnings, err := s.Export(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[ClientView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// Export returns every matching client, sorted, plus resolver warnings
func (s *Service) Export(ctx context.Context, organizationID string, q listing.Query) ([]ClientView, []string, error) {
	clients, err := s.users.ListClients(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx,
		s.catalog.Organizations(),
		s.catalog.Zones(organizationID),
		s.catalog.Streets(organizationID),
	)

	views := make([]ClientView, len(clients))
	for i, c := range clients {
		views[i] = s.enrich(ctx, session, organizationID, c)
	}

	selected, err := listing.Select(views, clientSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

// Get returns one enriched client
func (s *Service) Get(ctx context.Context, id string) (*ClientView, []string, error) {
	if id == "" {
		return nil, nil, shared.ErrInvalidInput
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, shared.ErrNotFound
	}
	session := s.resolver.SessionFrom(ctx)
	view := s.enrich(ctx, session, user.OrganizationID, *user)
	return &view, session.Warnings(), nil
}

// Create registers a client
func (s *Service) Create(ctx context.Context, req ClientRequest) (*identity.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.CreateClient(ctx, req.ToInput())
	if err != nil {
		return nil, err
	}
	logger.WithLogger(ctx, s.logger).Info("Client created",
		zap.String("client_id", user.ID),
		zap.String("organization_id", user.OrganizationID),
	)
	return user, nil
}

// Update replaces the writable fields of a client
func (s *Service) Update(ctx context.Context, id string, req ClientRequest) (*identity.User, error) {
	if id == "" {
		return nil, shared.ErrInvalidInput
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.users.UpdateClient(ctx, id, req.ToInput())
}

// Delete removes a client
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shared.ErrInvalidInput
	}
	if err := s.users.DeleteClient(ctx, id); err != nil {
		return err
	}
	logger.WithLogger(ctx, s.logger).Info("Client deleted", zap.String("client_id", id))
	return nil
}

// LookupDNI resolves an 8-digit DNI against RENIEC
func (s *Service) LookupDNI(ctx context.Context, dni string) (*PersonView, error) {
	dni = strings.TrimSpace(dni)
	if !dniPattern.MatchString(dni) {
		return nil, shared.NewDomainError("INVALID_INPUT", "El DNI debe tener 8 dígitos")
	}
	person, err := s.persons.LookupDNI(ctx, dni)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, shared.ErrNotFound
	}
	number := person.DocumentNumber
	if number == "" {
		number = dni
	}
	return &PersonView{
		DocumentNumber: number,
		FirstName:      strings.TrimSpace(person.FirstNames),
		LastName:       person.LastName(),
		FullName:       person.FullName(),
	}, nil
}

func (s *Service) enrich(ctx context.Context, session *resolver.Session, organizationID string, u identity.User) ClientView {
	scope := organizationID
	if scope == "" {
		scope = u.OrganizationID
	}
	return ClientView{
		User:             u,
		FullName:         u.DisplayName(),
		OrganizationName: session.Table(ctx, s.catalog.Organizations()).Name(u.OrganizationID),
		ZoneName:         session.Table(ctx, s.catalog.Zones(scope)).Name(u.ZoneID),
		StreetName:       session.Table(ctx, s.catalog.Streets(scope)).Name(u.StreetID),
		StatusLabel:      shared.StatusLabel(u.Status),
	}
}
