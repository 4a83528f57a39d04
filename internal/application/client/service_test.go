package client

import (
	"context"
	"errors"
	"testing"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ListUsers(ctx context.Context, organizationID string) ([]identity.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserDirectory) ListClients(ctx context.Context, organizationID string) ([]identity.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserDirectory) GetUser(ctx context.Context, id string) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) CreateClient(ctx context.Context, input identity.ClientInput) (*identity.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) UpdateClient(ctx context.Context, id string, input identity.ClientInput) (*identity.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) DeleteClient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPersonLookup struct {
	mock.Mock
}

func (m *MockPersonLookup) LookupDNI(ctx context.Context, dni string) (*identity.Person, error) {
	args := m.Called(ctx, dni)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Person), args.Error(1)
}

// stubDirectory serves fixed organizations, zones and streets
type stubDirectory struct {
	organization.Directory
	orgs    []organization.Organization
	zones   []organization.Zone
	streets []organization.Street
	err     error
}

func (d stubDirectory) ListOrganizations(context.Context) ([]organization.Organization, error) {
	return d.orgs, d.err
}

func (d stubDirectory) ListZones(context.Context, string) ([]organization.Zone, error) {
	return d.zones, d.err
}

func (d stubDirectory) ListStreets(context.Context, string) ([]organization.Street, error) {
	return d.streets, d.err
}

var testClients = []identity.User{
	{ID: "u1", UserCode: "CLI002", FirstName: "María", LastName: "Quispe", DocumentNumber: "45678912", OrganizationID: "o1", ZoneID: "z1", StreetID: "s1", Status: "ACTIVE"},
	{ID: "u2", UserCode: "CLI001", FirstName: "Ángel", LastName: "Huamán", DocumentNumber: "12345678", OrganizationID: "o1", ZoneID: "z9", Status: "INACTIVE"},
	{ID: "u3", UserCode: "CLI003", Username: "jperez", OrganizationID: "o1", ZoneID: "z1", StreetID: "s2", Status: "ACTIVE"},
}

func newTestService(users *MockUserDirectory, persons *MockPersonLookup, dir organization.Directory) *Service {
	return NewService(users, persons, resolver.New(), resolver.Catalog{Directory: dir}, nil)
}

func TestService_ListEnrichesNames(t *testing.T) {
	users := new(MockUserDirectory)
	users.On("ListClients", mock.Anything, "o1").Return(testClients, nil)
	dir := stubDirectory{
		orgs:    []organization.Organization{{OrganizationID: "o1", OrganizationName: "JASS Rinconada"}},
		zones:   []organization.Zone{{ZoneID: "z1", ZoneName: "Zona Alta"}},
		streets: []organization.Street{{StreetID: "s1", StreetName: "Los Pinos", StreetType: "Jr."}},
	}
	svc := newTestService(users, nil, dir)

	res, err := svc.List(context.Background(), "o1", listing.Query{SortBy: "userCode"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Empty(t, res.Warnings)

	first := res.Items[0]
	assert.Equal(t, "CLI001", first.UserCode)
	assert.Equal(t, "Ángel Huamán", first.FullName)
	assert.Equal(t, "JASS Rinconada", first.OrganizationName)
	assert.Equal(t, "Zona desconocida", first.ZoneName, "zone missing from the fetched set")
	assert.Equal(t, "", first.StreetName, "no street assigned")
	assert.Equal(t, "Inactivo", first.StatusLabel)

	second := res.Items[1]
	assert.Equal(t, "Zona Alta", second.ZoneName)
	assert.Equal(t, "Jr. Los Pinos", second.StreetName)

	assert.Equal(t, "jperez", res.Items[2].FullName)
	assert.Equal(t, "Calle desconocida", res.Items[2].StreetName)
}

func TestService_ListDegradesWhenLookupsFail(t *testing.T) {
	users := new(MockUserDirectory)
	users.On("ListClients", mock.Anything, "o1").Return(testClients, nil)
	svc := newTestService(users, nil, stubDirectory{err: errors.New("organizations down")})

	res, err := svc.List(context.Background(), "o1", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, len(testClients))
	for _, c := range res.Items {
		assert.Equal(t, "Organización desconocida", c.OrganizationName)
		assert.Equal(t, "Zona desconocida", c.ZoneName)
	}
	assert.Len(t, res.Warnings, 3)
}

func TestService_ListSearch(t *testing.T) {
	users := new(MockUserDirectory)
	users.On("ListClients", mock.Anything, "o1").Return(testClients, nil)
	svc := newTestService(users, nil, stubDirectory{})

	res, err := svc.List(context.Background(), "o1", listing.Query{Search: "ÁNGEL"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u2", res.Items[0].ID)

	res, err = svc.List(context.Background(), "o1", listing.Query{Search: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Page)

	res, err = svc.List(context.Background(), "o1", listing.Query{Search: "45678912"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestService_ListPrimaryFailure(t *testing.T) {
	users := new(MockUserDirectory)
	boom := errors.New("users down")
	users.On("ListClients", mock.Anything, "o1").Return(nil, boom)

	_, err := newTestService(users, nil, stubDirectory{}).List(context.Background(), "o1", listing.Query{})
	assert.ErrorIs(t, err, boom)
}

func TestService_Create(t *testing.T) {
	users := new(MockUserDirectory)
	req := ClientRequest{FirstName: "Rosa", LastName: "Mamani", DocumentType: "DNI", DocumentNumber: "87654321", OrganizationID: "o1"}
	users.On("CreateClient", mock.Anything, req.ToInput()).Return(&identity.User{ID: "u9", OrganizationID: "o1"}, nil)
	svc := newTestService(users, nil, stubDirectory{})

	user, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)

	bad := req
	bad.DocumentNumber = "1234"
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	users.AssertNumberOfCalls(t, "CreateClient", 1)
}

func TestService_UpdateAndDelete(t *testing.T) {
	users := new(MockUserDirectory)
	req := ClientRequest{FirstName: "Rosa", LastName: "Mamani", DocumentType: "RUC", DocumentNumber: "20123456789"}
	users.On("UpdateClient", mock.Anything, "u1", req.ToInput()).Return(&identity.User{ID: "u1"}, nil)
	users.On("DeleteClient", mock.Anything, "u1").Return(nil)
	svc := newTestService(users, nil, stubDirectory{})

	_, err := svc.Update(context.Background(), "u1", req)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), shared.ErrInvalidInput)
	users.AssertExpectations(t)
}

func TestService_LookupDNI(t *testing.T) {
	persons := new(MockPersonLookup)
	persons.On("LookupDNI", mock.Anything, "12345678").Return(&identity.Person{
		FirstNames:      "JUAN CARLOS",
		PaternalSurname: "PEREZ",
		MaternalSurname: "ROJAS",
	}, nil)
	svc := newTestService(new(MockUserDirectory), persons, stubDirectory{})

	person, err := svc.LookupDNI(context.Background(), " 12345678 ")
	require.NoError(t, err)
	assert.Equal(t, "12345678", person.DocumentNumber)
	assert.Equal(t, "JUAN CARLOS", person.FirstName)
	assert.Equal(t, "PEREZ ROJAS", person.LastName)
	assert.Equal(t, "JUAN CARLOS PEREZ ROJAS", person.FullName)

	for _, dni := range []string{"", "1234567", "123456789", "1234567a"} {
		_, err := svc.LookupDNI(context.Background(), dni)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, dni)
	}
	persons.AssertNumberOfCalls(t, "LookupDNI", 1)
}
