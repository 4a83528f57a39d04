package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/distribution"
	"github.com/jass/bff/internal/application/quality"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/application/waterbox"
	"github.com/jass/bff/internal/domain/identity"
	domaindist "github.com/jass/bff/internal/domain/distribution"
	domainorg "github.com/jass/bff/internal/domain/organization"
	domainquality "github.com/jass/bff/internal/domain/quality"
	domainbox "github.com/jass/bff/internal/domain/waterbox"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDistributionHandler_Routes(t *testing.T) {
	dir := new(MockDirectory)
	users := new(MockUserDirectory)
	dir.On("ListOrganizations", mock.Anything).Return([]domainorg.Organization{
		{OrganizationID: "org-1", OrganizationName: "JASS Rinconada"},
	}, nil)
	dir.On("ListZones", mock.Anything, "org-1").Return([]domainorg.Zone{
		{ZoneID: "z1", ZoneName: "Zona Alta"},
		{ZoneID: "z2", ZoneName: "Zona Baja"},
	}, nil)
	users.On("ListUsers", mock.Anything, "org-1").Return([]identity.User{
		{ID: "u1", FirstName: "Luis", LastName: "Ramos"},
	}, nil)
	gw := stubDistribution{routes: []domaindist.Route{
		{ID: "r1", OrganizationID: "org-1", RouteCode: "RUT001", RouteName: "Ruta Norte", ResponsibleUserID: "u1", Status: "ACTIVE",
			Zones: []domaindist.RouteZone{{ZoneID: "z2", Order: 2}, {ZoneID: "z1", Order: 1}}},
		{ID: "r2", OrganizationID: "org-2", RouteCode: "RUT002", RouteName: "Ruta Ajena", Status: "ACTIVE"},
	}}
	svc := distribution.NewService(gw, resolver.New(), resolver.Catalog{Directory: dir, UserDirectory: users})
	h := NewDistributionHandler(NewBaseHandler(nil, SessionConfig{}), svc)
	r := newTestEngine(adminSession("org-1"))
	r.GET("/admin/distribution/routes", h.Routes)

	w := perform(r, http.MethodGet, "/admin/distribution/routes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items := resp.Data.([]any)
	require.Len(t, items, 1)
	route := items[0].(map[string]any)
	assert.Equal(t, "JASS Rinconada", route["organizationName"])
	assert.Equal(t, []any{"Zona Alta", "Zona Baja"}, route["zoneNames"])
	assert.Equal(t, "Luis Ramos", route["responsibleName"])
	assert.Empty(t, resp.Meta.Warnings)
}

func TestDistributionHandler_SchedulesUpstreamDown(t *testing.T) {
	svc := distribution.NewService(stubDistribution{err: errors.New("dial tcp: connection refused")}, resolver.New(), resolver.Catalog{})
	h := NewDistributionHandler(NewBaseHandler(nil, SessionConfig{}), svc)
	r := newTestEngine(adminSession("org-1"))
	r.GET("/admin/distribution/schedules", h.Schedules)
	r.GET("/admin/distribution/programs", h.Programs)

	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodGet, "/admin/distribution/schedules", "").Code)
	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodGet, "/admin/distribution/programs", "").Code)
}

func setupWaterBoxRouter(infra stubInfrastructure) *gin.Engine {
	users := new(MockUserDirectory)
	users.On("ListUsers", mock.Anything, "org-1").Return([]identity.User{
		{ID: "u1", FirstName: "Ana", LastName: "Quispe"},
	}, nil)
	svc := waterbox.NewService(infra, resolver.New(), resolver.Catalog{UserDirectory: users}, nil)
	h := NewWaterBoxHandler(NewBaseHandler(nil, SessionConfig{}), svc)
	r := newTestEngine(adminSession("org-1"))
	r.GET("/admin/water-boxes", h.List)
	return r
}

func TestWaterBoxHandler_List(t *testing.T) {
	r := setupWaterBoxRouter(stubInfrastructure{
		boxes: []domainbox.WaterBox{
			{ID: "b2", OrganizationID: "org-1", BoxCode: "CAJ002", Status: "ACTIVE"},
			{ID: "b1", OrganizationID: "org-1", BoxCode: "CAJ001", CurrentAssignmentID: "a1", Status: "ACTIVE"},
			{ID: "b3", OrganizationID: "org-2", BoxCode: "CAJ003", Status: "ACTIVE"},
		},
		assignments: []domainbox.Assignment{
			{ID: "a1", WaterBoxID: "b1", UserID: "u1", StartDate: "2025-01-10", MonthlyFee: decimal.NewFromInt(8), Status: "ACTIVE"},
		},
	})

	w := perform(r, http.MethodGet, "/admin/water-boxes?assigned=true", "")

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]any)
	require.Len(t, items, 1)
	box := items[0].(map[string]any)
	assert.Equal(t, "CAJ001", box["boxCode"])
	assert.Equal(t, "Ana Quispe", box["assignedUserName"])
	assert.Equal(t, "8", box["monthlyFee"])
}

func TestWaterBoxHandler_ListWithoutAssignments(t *testing.T) {
	r := setupWaterBoxRouter(stubInfrastructure{
		boxes:     []domainbox.WaterBox{{ID: "b1", OrganizationID: "org-1", BoxCode: "CAJ001"}},
		assignErr: errors.New("timeout"),
	})

	w := perform(r, http.MethodGet, "/admin/water-boxes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data, 1)
	assert.Contains(t, resp.Meta.Warnings, "No se pudieron cargar las asignaciones de cajas de agua")
}

func setupQualityRouter(gw stubQuality) *gin.Engine {
	users := new(MockUserDirectory)
	users.On("ListUsers", mock.Anything, "org-1").Return([]identity.User{}, nil)
	svc := quality.NewService(gw, resolver.New(), resolver.Catalog{Quality: gw, UserDirectory: users})
	h := NewQualityHandler(NewBaseHandler(nil, SessionConfig{}), svc)
	r := newTestEngine(adminSession("org-1"))
	r.GET("/admin/water-quality/tests", h.Tests)
	r.GET("/admin/water-quality/chlorine", h.Chlorine)
	return r
}

func TestQualityHandler_Tests(t *testing.T) {
	r := setupQualityRouter(stubQuality{
		tests: []domainquality.Test{
			{ID: "t1", OrganizationID: "org-1", TestCode: "ANA001", TestingPointID: "p1", TestDate: "2025-05-01", Status: "COMPLETED",
				Results: []domainquality.Result{{ParameterCode: "PH", Status: "ACCEPTABLE"}, {ParameterCode: "CL", Status: "CRITICAL"}}},
		},
		points: []domainquality.TestingPoint{{ID: "p1", OrganizationID: "org-1", PointName: "Reservorio"}},
	})

	w := perform(r, http.MethodGet, "/admin/water-quality/tests", "")

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeResponse(t, w).Data.([]any)
	require.Len(t, items, 1)
	test := items[0].(map[string]any)
	assert.Equal(t, "Reservorio", test["testingPointName"])
	assert.Equal(t, "CRITICAL", test["resultStatus"])
}

func TestQualityHandler_Chlorine(t *testing.T) {
	r := setupQualityRouter(stubQuality{
		records: []domainquality.ChlorineRecord{
			{ID: "c1", OrganizationID: "org-1", RecordCode: "CLO002", RecordDate: "2025-05-02", Level: decimal.RequireFromString("0.8"), Acceptable: true},
			{ID: "c2", OrganizationID: "org-1", RecordCode: "CLO001", RecordDate: "2025-05-01", Level: decimal.RequireFromString("0.1")},
		},
	})

	w := perform(r, http.MethodGet, "/admin/water-quality/chlorine?page=1&page_size=1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}
