package organization

import (
	"context"
	"errors"
	"testing"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListOrganizations(ctx context.Context) ([]organization.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Organization), args.Error(1)
}

func (m *MockDirectory) GetOrganization(ctx context.Context, id string) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockDirectory) ListZones(ctx context.Context, organizationID string) ([]organization.Zone, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Zone), args.Error(1)
}

func (m *MockDirectory) ListStreets(ctx context.Context, organizationID string) ([]organization.Street, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Street), args.Error(1)
}

func (m *MockDirectory) ListStreetsByZone(ctx context.Context, zoneID string) ([]organization.Street, error) {
	args := m.Called(ctx, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Street), args.Error(1)
}

func newTestService(dir *MockDirectory) *Service {
	return NewService(dir, resolver.New(), resolver.Catalog{Directory: dir})
}

func TestService_List(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return([]organization.Organization{
		{OrganizationID: "o2", OrganizationCode: "JASS02", OrganizationName: "Rinconada", Status: "ACTIVE"},
		{OrganizationID: "o1", OrganizationCode: "JASS01", OrganizationName: "Ángeles", Status: "INACTIVE"},
		{OrganizationID: "o3", OrganizationCode: "JASS03", OrganizationName: "Bellavista", Status: "ACTIVE"},
	}, nil)
	svc := newTestService(dir)

	res, err := svc.List(context.Background(), "", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Ángeles", res.Items[0].DisplayName, "default sort is by name with Spanish collation")
	assert.Equal(t, "Inactivo", res.Items[0].StatusLabel)

	res, err = svc.List(context.Background(), "", listing.Query{}.WithFilter("status", "active"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	_, err = svc.List(context.Background(), "", listing.Query{SortBy: "phone"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestService_ListWithinOrganization(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return([]organization.Organization{
		{OrganizationID: "o1", OrganizationCode: "JASS01", OrganizationName: "Ángeles"},
		{OrganizationID: "o2", OrganizationCode: "JASS02", OrganizationName: "Rinconada"},
	}, nil)
	svc := newTestService(dir)

	res, err := svc.List(context.Background(), "o2", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "o2", res.Items[0].OrganizationID)

	items, err := svc.Export(context.Background(), "o9", listing.Query{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_ListUpstreamFailure(t *testing.T) {
	dir := new(MockDirectory)
	boom := errors.New("boom")
	dir.On("ListOrganizations", mock.Anything).Return(nil, boom)

	_, err := newTestService(dir).List(context.Background(), "", listing.Query{})
	assert.ErrorIs(t, err, boom)
}

func TestService_Get(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetOrganization", mock.Anything, "o1").
		Return(&organization.Organization{OrganizationID: "o1", OrganizationCode: "JASS01", Status: "ACTIVE"}, nil)
	svc := newTestService(dir)

	view, err := svc.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "JASS01", view.DisplayName)
	assert.Equal(t, "Activo", view.StatusLabel)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_ZonesResolveOrganization(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListZones", mock.Anything, "o1").Return([]organization.Zone{
		{ZoneID: "z2", OrganizationID: "o1", ZoneCode: "Z02", ZoneName: "Zona Baja"},
		{ZoneID: "z1", OrganizationID: "o1", ZoneCode: "Z01", ZoneName: "Zona Alta"},
	}, nil)
	dir.On("ListOrganizations", mock.Anything).Return(nil, errors.New("organizations down"))
	svc := newTestService(dir)

	res, err := svc.Zones(context.Background(), "o1", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Z01", res.Items[0].ZoneCode)
	assert.Equal(t, "Organización desconocida", res.Items[0].OrganizationName)
	assert.Len(t, res.Warnings, 1)
}

func TestService_Streets(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListStreetsByZone", mock.Anything, "z1").Return([]organization.Street{
		{StreetID: "s1", ZoneID: "z1", StreetCode: "C01", StreetName: "Los Pinos", StreetType: "Av."},
	}, nil)
	dir.On("ListZones", mock.Anything, "o1").Return([]organization.Zone{{ZoneID: "z1", ZoneName: "Zona Alta"}}, nil)
	svc := newTestService(dir)

	res, err := svc.Streets(context.Background(), "o1", "z1", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Av. Los Pinos", res.Items[0].DisplayName)
	assert.Equal(t, "Zona Alta", res.Items[0].ZoneName)
	assert.Empty(t, res.Warnings)
	dir.AssertExpectations(t)
}

func TestService_StreetsOfAnotherOrganization(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListZones", mock.Anything, "o1").Return([]organization.Zone{{ZoneID: "z1", ZoneName: "Zona Alta"}}, nil)
	svc := newTestService(dir)

	_, err := svc.Streets(context.Background(), "o1", "z-other", listing.Query{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	dir.AssertNotCalled(t, "ListStreetsByZone", mock.Anything, mock.Anything)
}

func TestService_StreetsUnrestricted(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListStreetsByZone", mock.Anything, "z7").Return([]organization.Street{
		{StreetID: "s1", ZoneID: "z7", StreetCode: "C01", StreetName: "Lima", StreetType: "Jr."},
	}, nil)
	dir.On("ListZones", mock.Anything, "").Return([]organization.Zone{{ZoneID: "z7", ZoneName: "Zona Norte"}}, nil)
	svc := newTestService(dir)

	res, err := svc.Streets(context.Background(), "", "z7", listing.Query{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Zona Norte", res.Items[0].ZoneName)
}
