package distribution

import "github.com/jass/bff/internal/domain/distribution"

// RouteView is a route with organization, zone and responsible names
type RouteView struct {
	distribution.Route
	OrganizationName string   `json:"organizationName"`
	ZoneNames        []string `json:"zoneNames"`
	ResponsibleName  string   `json:"responsibleName"`
	StatusLabel      string   `json:"statusLabel"`
}

// ScheduleView is a schedule with organization, zone and street names
type ScheduleView struct {
	distribution.Schedule
	OrganizationName string `json:"organizationName"`
	ZoneName         string `json:"zoneName"`
	StreetName       string `json:"streetName"`
	StatusLabel      string `json:"statusLabel"`
}

// ProgramView is a distribution program with every reference resolved
type ProgramView struct {
	distribution.Program
	OrganizationName string `json:"organizationName"`
	RouteName        string `json:"routeName"`
	ScheduleName     string `json:"scheduleName"`
	ZoneName         string `json:"zoneName"`
	StreetName       string `json:"streetName"`
	ResponsibleName  string `json:"responsibleName"`
	StatusLabel      string `json:"statusLabel"`
}
