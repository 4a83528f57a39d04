package organization

import (
	"context"
	"strings"
)

// Organization is a JASS water board as exposed by the organizations service
type Organization struct {
	OrganizationID      string `json:"organizationId"`
	OrganizationCode    string `json:"organizationCode"`
	OrganizationName    string `json:"organizationName"`
	LegalRepresentative string `json:"legalRepresentative,omitempty"`
	Address             string `json:"address,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Status              string `json:"status"`
}

// DisplayName returns the name shown in administration views
func (o Organization) DisplayName() string {
	if name := strings.TrimSpace(o.OrganizationName); name != "" {
		return name
	}
	return o.OrganizationCode
}

// Zone is a service zone inside an organization
type Zone struct {
	ZoneID         string `json:"zoneId"`
	OrganizationID string `json:"organizationId"`
	ZoneCode       string `json:"zoneCode"`
	ZoneName       string `json:"zoneName"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status"`
}

// DisplayName returns the name shown in administration views
func (z Zone) DisplayName() string {
	if name := strings.TrimSpace(z.ZoneName); name != "" {
		return name
	}
	return z.ZoneCode
}

// Street belongs to a zone
type Street struct {
	StreetID   string `json:"streetId"`
	ZoneID     string `json:"zoneId"`
	StreetCode string `json:"streetCode"`
	StreetName string `json:"streetName"`
	StreetType string `json:"streetType,omitempty"`
	Status     string `json:"status"`
}

// DisplayName returns the street prefixed by its type, e.g. "Av. Los Pinos"
func (s Street) DisplayName() string {
	name := strings.TrimSpace(s.StreetName)
	if name == "" {
		return s.StreetCode
	}
	if t := strings.TrimSpace(s.StreetType); t != "" {
		return t + " " + name
	}
	return name
}

// Directory reads organizations, zones and streets from the organizations service
type Directory interface {
	// ListOrganizations returns every organization visible to the caller
	ListOrganizations(ctx context.Context) ([]Organization, error)

	// GetOrganization returns one organization by id
	GetOrganization(ctx context.Context, id string) (*Organization, error)

	// ListZones returns the zones of an organization
	ListZones(ctx context.Context, organizationID string) ([]Zone, error)

	// ListStreets returns the streets of an organization
	ListStreets(ctx context.Context, organizationID string) ([]Street, error)

	// ListStreetsByZone returns the streets of a single zone
	ListStreetsByZone(ctx context.Context, zoneID string) ([]Street, error)
}
