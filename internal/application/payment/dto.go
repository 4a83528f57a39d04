package payment

import (
	"github.com/jass/bff/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// PaymentView is a payment enriched with the names of its references
type PaymentView struct {
	payment.Payment
	UserName         string `json:"userName"`
	OrganizationName string `json:"organizationName"`
	WaterBoxCode     string `json:"waterBoxCode"`
	StatusLabel      string `json:"statusLabel"`
}

// FareView is a fare with its organization name
type FareView struct {
	payment.Fare
	OrganizationName string `json:"organizationName"`
	StatusLabel      string `json:"statusLabel"`
}

// DetailRequest is one line of a new payment
type DetailRequest struct {
	Concept     string          `json:"concept" binding:"required,max=100"`
	Year        int             `json:"year" binding:"omitempty,min=2000,max=2100"`
	Month       int             `json:"month" binding:"omitempty,min=1,max=12"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=300"`
}

// CreatePaymentRequest is the payload of a new payment
type CreatePaymentRequest struct {
	OrganizationID    string          `json:"organizationId"`
	PaymentCode       string          `json:"paymentCode" binding:"omitempty,max=50"`
	UserID            string          `json:"userId" binding:"required"`
	WaterBoxID        string          `json:"waterBoxId"`
	PaymentType       string          `json:"paymentType" binding:"required,oneof=WATER MANAGEMENT RECONNECTION"`
	PaymentMethod     string          `json:"paymentMethod" binding:"required,oneof=CASH TRANSFER YAPE"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaymentDate       string          `json:"paymentDate"`
	PaymentStatus     string          `json:"paymentStatus" binding:"omitempty,oneof=PENDING PAID CANCELLED"`
	ExternalReference string          `json:"externalReference" binding:"max=100"`
	Details           []DetailRequest `json:"details" binding:"dive"`
}

// ToInput converts the request into the upstream payload
func (r CreatePaymentRequest) ToInput() payment.CreateInput {
	details := make([]payment.Detail, len(r.Details))
	for i, d := range r.Details {
		details[i] = payment.Detail{
			Concept:     d.Concept,
			Year:        d.Year,
			Month:       d.Month,
			Amount:      d.Amount,
			Description: d.Description,
		}
	}
	status := r.PaymentStatus
	if status == "" {
		status = payment.StatusPaid
	}
	return payment.CreateInput{
		OrganizationID:    r.OrganizationID,
		PaymentCode:       r.PaymentCode,
		UserID:            r.UserID,
		WaterBoxID:        r.WaterBoxID,
		PaymentType:       r.PaymentType,
		PaymentMethod:     r.PaymentMethod,
		TotalAmount:       r.TotalAmount,
		PaymentDate:       r.PaymentDate,
		PaymentStatus:     status,
		ExternalReference: r.ExternalReference,
		Details:           details,
	}
}
