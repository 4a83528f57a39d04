package client

import (
	"regexp"

	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
)

var (
	dniPattern = regexp.MustCompile(`^\d{8}$`)
	rucPattern = regexp.MustCompile(`^(10|15|17|20)\d{9}$`)
)

// ClientView is a client enriched with the names of its references
type ClientView struct {
	identity.User
	FullName         string `json:"fullName"`
	OrganizationName string `json:"organizationName"`
	ZoneName         string `json:"zoneName"`
	StreetName       string `json:"streetName"`
	StatusLabel      string `json:"statusLabel"`
}

// ClientRequest is the create/update payload of a client
type ClientRequest struct {
	FirstName      string `json:"firstName" binding:"required,min=1,max=100"`
	LastName       string `json:"lastName" binding:"required,min=1,max=100"`
	DocumentType   string `json:"documentType" binding:"required,oneof=DNI CNE RUC"`
	DocumentNumber string `json:"documentNumber" binding:"required,document_number"`
	Email          string `json:"email" binding:"omitempty,email,max=200"`
	Phone          string `json:"phone" binding:"omitempty,pe_phone"`
	Address        string `json:"address" binding:"max=300"`
	OrganizationID string `json:"organizationId"`
	ZoneID         string `json:"zoneId"`
	StreetID       string `json:"streetId"`
	Status         string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED PENDING"`
}

// Validate checks the rules that depend on more than one field
func (r ClientRequest) Validate() error {
	switch r.DocumentType {
	case "DNI":
		if !dniPattern.MatchString(r.DocumentNumber) {
			return shared.NewDomainError("INVALID_INPUT", "El DNI debe tener 8 dígitos")
		}
	case "RUC":
		if !rucPattern.MatchString(r.DocumentNumber) {
			return shared.NewDomainError("INVALID_INPUT", "El RUC debe tener 11 dígitos")
		}
	}
	return nil
}

// ToInput converts the request into the upstream payload
func (r ClientRequest) ToInput() identity.ClientInput {
	return identity.ClientInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		OrganizationID: r.OrganizationID,
		ZoneID:         r.ZoneID,
		StreetID:       r.StreetID,
		Status:         r.Status,
	}
}

// PersonView is a RENIEC lookup result shaped for the client form
type PersonView struct {
	DocumentNumber string `json:"documentNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FullName       string `json:"fullName"`
}
