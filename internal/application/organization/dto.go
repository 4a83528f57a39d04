package organization

import (
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/shared"
)

// OrganizationView is an organization as listed in the administration UI
type OrganizationView struct {
	organization.Organization
	DisplayName string `json:"displayName"`
	StatusLabel string `json:"statusLabel"`
}

// ZoneView is a zone with its organization name
type ZoneView struct {
	organization.Zone
	OrganizationName string `json:"organizationName"`
	StatusLabel      string `json:"statusLabel"`
}

// StreetView is a street with its zone name
type StreetView struct {
	organization.Street
	DisplayName string `json:"displayName"`
	ZoneName    string `json:"zoneName"`
	StatusLabel string `json:"statusLabel"`
}

func toOrganizationView(o organization.Organization) OrganizationView {
	return OrganizationView{
		Organization: o,
		DisplayName:  o.DisplayName(),
		StatusLabel:  shared.StatusLabel(o.Status),
	}
}
