package waterbox

import (
	"context"

	"github.com/shopspring/decimal"
)

// WaterBox is a service connection box installed at a client's property
type WaterBox struct {
	ID                  string `json:"id"`
	OrganizationID      string `json:"organizationId"`
	BoxCode             string `json:"boxCode"`
	BoxType             string `json:"boxType"`
	InstallationDate    string `json:"installationDate"`
	CurrentAssignmentID string `json:"currentAssignmentId,omitempty"`
	Status              string `json:"status"`
}

// Assignment links a water box to a user for a period
type Assignment struct {
	ID         string          `json:"id"`
	WaterBoxID string          `json:"waterBoxId"`
	UserID     string          `json:"userId"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate,omitempty"`
	MonthlyFee decimal.Decimal `json:"monthlyFee"`
	Status     string          `json:"status"`
}

// Gateway reads the infrastructure service
type Gateway interface {
	ListWaterBoxes(ctx context.Context) ([]WaterBox, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)
}
