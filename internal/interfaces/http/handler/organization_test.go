package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/organization"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/identity"
	domain "github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrganizationRouter(dir *MockDirectory, s *identity.Session) *gin.Engine {
	svc := organization.NewService(dir, resolver.New(), resolver.Catalog{Directory: dir})
	h := NewOrganizationHandler(NewBaseHandler(nil, SessionConfig{}), svc)
	r := newTestEngine(s)
	r.GET("/admin/organizations", h.List)
	r.GET("/admin/organizations/:id", h.Get)
	r.GET("/admin/organizations/:id/zones", h.Zones)
	r.GET("/admin/zones/:id/streets", h.Streets)
	return r
}

func testOrganizations() []domain.Organization {
	return []domain.Organization{
		{OrganizationID: "org-1", OrganizationCode: "JASS001", OrganizationName: "JASS Rinconada", Status: "ACTIVE"},
		{OrganizationID: "org-2", OrganizationCode: "JASS002", OrganizationName: "JASS Ángeles", Status: "ACTIVE"},
		{OrganizationID: "org-3", OrganizationCode: "JASS003", OrganizationName: "JASS Cañete", Status: "INACTIVE"},
	}
}

func TestOrganizationHandler_List(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return(testOrganizations(), nil)
	r := setupOrganizationRouter(dir, adminSession("org-1", identity.RoleSuperAdmin))

	w := perform(r, http.MethodGet, "/admin/organizations?status=ACTIVE&page_size=1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	items := resp.Data.([]any)
	require.Len(t, items, 1)
	// Spanish collation puts "Ángeles" before "Rinconada"
	assert.Equal(t, "JASS Ángeles", items[0].(map[string]any)["displayName"])
}

func TestOrganizationHandler_ListScopedToOwnOrganization(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return(testOrganizations(), nil)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/organizations?organization_id=org-2", "")

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "org-1", items[0].(map[string]any)["organizationId"])
}

func TestOrganizationHandler_ListSuperAdminPicksOrganization(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return(testOrganizations(), nil)
	r := setupOrganizationRouter(dir, adminSession("org-1", identity.RoleSuperAdmin))

	w := perform(r, http.MethodGet, "/admin/organizations?organization_id=org-3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "org-3", items[0].(map[string]any)["organizationId"])
}

func TestOrganizationHandler_ListUnknownSort(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListOrganizations", mock.Anything).Return(testOrganizations(), nil)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/organizations?sort_by=population", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	assert.Equal(t, "req-test", resp.Error.RequestID)
}

func TestOrganizationHandler_Get(t *testing.T) {
	dir := new(MockDirectory)
	org := testOrganizations()[0]
	dir.On("GetOrganization", mock.Anything, "org-1").Return(&org, nil)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/organizations/org-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "JASS001", data["organizationCode"])
	assert.Equal(t, "Activo", data["statusLabel"])
}

func TestOrganizationHandler_GetOtherOrganizationForbidden(t *testing.T) {
	dir := new(MockDirectory)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/organizations/org-2", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	dir.AssertNotCalled(t, "GetOrganization", mock.Anything, mock.Anything)
}

func TestOrganizationHandler_GetUpstreamNotFound(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("GetOrganization", mock.Anything, "org-9").
		Return(nil, &upstream.Error{Service: "organizations", StatusCode: http.StatusNotFound})
	r := setupOrganizationRouter(dir, adminSession("org-1", identity.RoleSuperAdmin))

	w := perform(r, http.MethodGet, "/admin/organizations/org-9", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recurso no encontrado", decodeResponse(t, w).Error.Message)
}

func TestOrganizationHandler_ZonesWithDegradedNames(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListZones", mock.Anything, "org-1").Return([]domain.Zone{
		{ZoneID: "z2", OrganizationID: "org-1", ZoneCode: "ZN002", ZoneName: "Zona Baja", Status: "ACTIVE"},
		{ZoneID: "z1", OrganizationID: "org-1", ZoneCode: "ZN001", ZoneName: "Zona Alta", Status: "ACTIVE"},
	}, nil)
	dir.On("ListOrganizations", mock.Anything).Return(nil, &upstream.Error{Service: "organizations", StatusCode: http.StatusServiceUnavailable})
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/organizations/org-1/zones", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items := resp.Data.([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "ZN001", first["zoneCode"])
	assert.Equal(t, "Organización desconocida", first["organizationName"])
	assert.Equal(t, []string{"No se pudieron cargar los nombres de organizaciones"}, resp.Meta.Warnings)
}

func TestOrganizationHandler_Streets(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListStreetsByZone", mock.Anything, "z1").Return([]domain.Street{
		{StreetID: "s1", ZoneID: "z1", StreetCode: "CA001", StreetName: "Los Pinos", StreetType: "Av.", Status: "ACTIVE"},
	}, nil)
	dir.On("ListZones", mock.Anything, "org-1").Return([]domain.Zone{
		{ZoneID: "z1", OrganizationID: "org-1", ZoneCode: "ZN001", ZoneName: "Zona Alta"},
	}, nil)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/zones/z1/streets", "")

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]any)
	require.Len(t, items, 1)
	street := items[0].(map[string]any)
	assert.Equal(t, "Av. Los Pinos", street["displayName"])
	assert.Equal(t, "Zona Alta", street["zoneName"])
}

func TestOrganizationHandler_StreetsOfAnotherOrganizationForbidden(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListZones", mock.Anything, "org-1").Return([]domain.Zone{
		{ZoneID: "z1", OrganizationID: "org-1", ZoneCode: "ZN001", ZoneName: "Zona Alta"},
	}, nil)
	r := setupOrganizationRouter(dir, adminSession("org-1"))

	w := perform(r, http.MethodGet, "/admin/zones/z-org2/streets", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	dir.AssertNotCalled(t, "ListStreetsByZone", mock.Anything, mock.Anything)
}
