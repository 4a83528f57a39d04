package quality

import (
	"context"

	"github.com/shopspring/decimal"
)

// Test is a water quality analysis performed at a testing point
type Test struct {
	ID                  string   `json:"id"`
	OrganizationID      string   `json:"organizationId"`
	TestCode            string   `json:"testCode"`
	TestingPointID      string   `json:"testingPointId"`
	TestDate            string   `json:"testDate"`
	TestType            string   `json:"testType"`
	TestedByUserID      string   `json:"testedByUserId"`
	WeatherConditions   string   `json:"weatherConditions,omitempty"`
	WaterTemperature    float64  `json:"waterTemperature,omitempty"`
	GeneralObservations string   `json:"generalObservations,omitempty"`
	Status              string   `json:"status"`
	Results             []Result `json:"results,omitempty"`
}

// Result is one measured parameter of a test
type Result struct {
	ParameterCode string          `json:"parameterCode"`
	MeasuredValue decimal.Decimal `json:"measuredValue"`
	Unit          string          `json:"unit"`
	Status        string          `json:"status"`
}

// WorstStatus returns the most severe result status of the test, or the
// test status when there are no results. Severity order is CRITICAL,
// WARNING, ACCEPTABLE.
func (t Test) WorstStatus() string {
	worst, rank := t.Status, -1
	for _, r := range t.Results {
		if n := severity(r.Status); n > rank {
			worst, rank = r.Status, n
		}
	}
	return worst
}

func severity(status string) int {
	switch status {
	case "CRITICAL":
		return 2
	case "WARNING":
		return 1
	case "ACCEPTABLE":
		return 0
	default:
		return -1
	}
}

// ChlorineRecord is a residual chlorine measurement
type ChlorineRecord struct {
	ID               string          `json:"id"`
	OrganizationID   string          `json:"organizationId"`
	RecordCode       string          `json:"recordCode"`
	TestingPointID   string          `json:"testingPointId"`
	RecordDate       string          `json:"recordDate"`
	Level            decimal.Decimal `json:"level"`
	Acceptable       bool            `json:"acceptable"`
	ActionRequired   bool            `json:"actionRequired"`
	RecordedByUserID string          `json:"recordedByUserId"`
	Observations     string          `json:"observations,omitempty"`
	RecordType       string          `json:"recordType"`
}

// StatusCode classifies the record for display
func (c ChlorineRecord) StatusCode() string {
	switch {
	case !c.Acceptable:
		return "CRITICAL"
	case c.ActionRequired:
		return "WARNING"
	default:
		return "ACCEPTABLE"
	}
}

// TestingPoint is a place where samples are taken
type TestingPoint struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	PointCode      string `json:"pointCode"`
	PointName      string `json:"pointName"`
	PointType      string `json:"pointType,omitempty"`
	ZoneID         string `json:"zoneId,omitempty"`
	Status         string `json:"status"`
}

// Gateway reads the water quality service
type Gateway interface {
	ListTests(ctx context.Context) ([]Test, error)
	ListChlorineRecords(ctx context.Context) ([]ChlorineRecord, error)
	ListTestingPoints(ctx context.Context) ([]TestingPoint, error)
}
