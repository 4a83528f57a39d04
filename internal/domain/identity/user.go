package identity

import (
	"strings"
)

// Role names issued by the JASS authentication service
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleClient     = "CLIENT"
)

// User is a JASS user as returned by the users service. Clients are users
// holding the CLIENT role.
type User struct {
	ID             string   `json:"id"`
	UserCode       string   `json:"userCode,omitempty"`
	Username       string   `json:"username,omitempty"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	DocumentType   string   `json:"documentType,omitempty"`
	DocumentNumber string   `json:"documentNumber,omitempty"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Address        string   `json:"address,omitempty"`
	OrganizationID string   `json:"organizationId,omitempty"`
	ZoneID         string   `json:"zoneId,omitempty"`
	StreetID       string   `json:"streetId,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Status         string   `json:"status,omitempty"`
}

// DisplayName returns "firstName lastName", falling back to the username
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Username
}

// HasRole reports whether the user holds the given role
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(strings.TrimPrefix(r, "ROLE_"), role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may use the administration endpoints
func (u User) IsAdmin() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSuperAdmin)
}

// ClientInput carries the writable fields of a client
type ClientInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	OrganizationID string `json:"organizationId"`
	ZoneID         string `json:"zoneId,omitempty"`
	StreetID       string `json:"streetId,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Person is an identity record returned by the RENIEC lookup service
type Person struct {
	DocumentNumber  string `json:"numeroDocumento"`
	FirstNames      string `json:"nombres"`
	PaternalSurname string `json:"apellidoPaterno"`
	MaternalSurname string `json:"apellidoMaterno"`
}

// FullName returns the given names followed by both surnames
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstNames, p.PaternalSurname, p.MaternalSurname} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// LastName returns both surnames joined
func (p Person) LastName() string {
	return strings.TrimSpace(strings.TrimSpace(p.PaternalSurname) + " " + strings.TrimSpace(p.MaternalSurname))
}
