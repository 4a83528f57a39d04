package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Payment types and methods used by the payments service
const (
	TypeWater       = "WATER"
	TypeManagement  = "MANAGEMENT"
	TypeReconnect   = "RECONNECTION"
	MethodCash      = "CASH"
	MethodTransfer  = "TRANSFER"
	MethodYape      = "YAPE"
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// Payment is a payment registered by an organization for a user
type Payment struct {
	PaymentID         string          `json:"paymentId"`
	OrganizationID    string          `json:"organizationId"`
	PaymentCode       string          `json:"paymentCode"`
	UserID            string          `json:"userId"`
	WaterBoxID        string          `json:"waterBoxId,omitempty"`
	PaymentType       string          `json:"paymentType"`
	PaymentMethod     string          `json:"paymentMethod"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaymentDate       string          `json:"paymentDate"`
	PaymentStatus     string          `json:"paymentStatus"`
	ExternalReference string          `json:"externalReference,omitempty"`
	Details           []Detail        `json:"details,omitempty"`
}

// Detail is one concept charged in a payment
type Detail struct {
	Concept     string          `json:"concept"`
	Year        int             `json:"year,omitempty"`
	Month       int             `json:"month,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// DetailsTotal sums the amounts of every detail line
func (p Payment) DetailsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Details {
		total = total.Add(d.Amount)
	}
	return total
}

// CreateInput is the payload of a new payment
type CreateInput struct {
	OrganizationID    string          `json:"organizationId"`
	PaymentCode       string          `json:"paymentCode,omitempty"`
	UserID            string          `json:"userId"`
	WaterBoxID        string          `json:"waterBoxId,omitempty"`
	PaymentType       string          `json:"paymentType"`
	PaymentMethod     string          `json:"paymentMethod"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaymentDate       string          `json:"paymentDate"`
	PaymentStatus     string          `json:"paymentStatus"`
	ExternalReference string          `json:"externalReference,omitempty"`
	Details           []Detail        `json:"details,omitempty"`
}

// Fare is a tariff defined by an organization
type Fare struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	FareCode       string          `json:"fareCode"`
	FareName       string          `json:"fareName"`
	FareType       string          `json:"fareType"`
	FareAmount     decimal.Decimal `json:"fareAmount"`
	Status         string          `json:"status"`
}

// Gateway reads and writes payments and fares
type Gateway interface {
	ListPayments(ctx context.Context, organizationID string) ([]Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	CreatePayment(ctx context.Context, input CreateInput) (*Payment, error)
	ListFares(ctx context.Context) ([]Fare, error)
}
