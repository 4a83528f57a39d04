package distribution

import "context"

// Route is an ordered sequence of zones served in one distribution run
type Route struct {
	ID                     string      `json:"id"`
	OrganizationID         string      `json:"organizationId"`
	RouteCode              string      `json:"routeCode"`
	RouteName              string      `json:"routeName"`
	Zones                  []RouteZone `json:"zones"`
	TotalEstimatedDuration float64     `json:"totalEstimatedDuration"`
	ResponsibleUserID      string      `json:"responsibleUserId"`
	Status                 string      `json:"status"`
}

// RouteZone is one stop of a route
type RouteZone struct {
	ZoneID            string  `json:"zoneId"`
	Order             int     `json:"order"`
	EstimatedDuration float64 `json:"estimatedDuration"`
}

// ZoneIDs returns the zone ids of the route in visiting order
func (r Route) ZoneIDs() []string {
	ordered := make([]RouteZone, len(r.Zones))
	copy(ordered, r.Zones)
	// insertion sort keeps equal orders stable
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Order < ordered[j-1].Order; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	ids := make([]string, len(ordered))
	for i, z := range ordered {
		ids[i] = z.ZoneID
	}
	return ids
}

// Schedule defines when water is supplied to a zone or street
type Schedule struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organizationId"`
	ScheduleCode   string   `json:"scheduleCode"`
	ZoneID         string   `json:"zoneId"`
	StreetID       string   `json:"streetId,omitempty"`
	ScheduleName   string   `json:"scheduleName"`
	DaysOfWeek     []string `json:"daysOfWeek"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	DurationHours  float64  `json:"durationHours"`
	Status         string   `json:"status"`
}

// Program is a planned distribution for a given date
type Program struct {
	ID                string `json:"id"`
	OrganizationID    string `json:"organizationId"`
	ProgramCode       string `json:"programCode"`
	ScheduleID        string `json:"scheduleId"`
	RouteID           string `json:"routeId"`
	ZoneID            string `json:"zoneId"`
	StreetID          string `json:"streetId,omitempty"`
	ProgramDate       string `json:"programDate"`
	PlannedStartTime  string `json:"plannedStartTime"`
	PlannedEndTime    string `json:"plannedEndTime"`
	ActualStartTime   string `json:"actualStartTime,omitempty"`
	ActualEndTime     string `json:"actualEndTime,omitempty"`
	Status            string `json:"status"`
	ResponsibleUserID string `json:"responsibleUserId"`
	Observations      string `json:"observations,omitempty"`
}

// Gateway reads distribution data
type Gateway interface {
	ListRoutes(ctx context.Context) ([]Route, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	ListPrograms(ctx context.Context) ([]Program, error)
}
