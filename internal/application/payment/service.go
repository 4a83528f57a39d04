package payment

import (
	"context"
	"time"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/payment"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var paymentSpec = listing.Spec[PaymentView]{
	Search: []func(PaymentView) string{
		func(p PaymentView) string { return p.PaymentCode },
		func(p PaymentView) string { return p.UserName },
		func(p PaymentView) string { return p.WaterBoxCode },
		func(p PaymentView) string { return p.ExternalReference },
	},
	Filters: map[string]func(PaymentView) string{
		"status":          func(p PaymentView) string { return p.PaymentStatus },
		"type":            func(p PaymentView) string { return p.PaymentType },
		"method":          func(p PaymentView) string { return p.PaymentMethod },
		"organization_id": func(p PaymentView) string { return p.OrganizationID },
		"user_id":         func(p PaymentView) string { return p.UserID },
	},
	Sorts: map[string]listing.SortKey[PaymentView]{
		"paymentCode": listing.Text(func(p PaymentView) string { return p.PaymentCode }),
		"paymentDate": listing.TimeString(func(p PaymentView) string { return p.PaymentDate }),
		"totalAmount": listing.Number(func(p PaymentView) decimal.Decimal { return p.TotalAmount }),
		"userName":    listing.Text(func(p PaymentView) string { return p.UserName }),
		"status":      listing.Text(func(p PaymentView) string { return p.StatusLabel }),
	},
	DefaultSort: "paymentDate",
	DefaultDir:  listing.SortDesc,
}

var fareSpec = listing.Spec[FareView]{
	Search: []func(FareView) string{
		func(f FareView) string { return f.FareCode },
		func(f FareView) string { return f.FareName },
	},
	Filters: map[string]func(FareView) string{
		"status":          func(f FareView) string { return f.Status },
		"type":            func(f FareView) string { return f.FareType },
		"organization_id": func(f FareView) string { return f.OrganizationID },
	},
	Sorts: map[string]listing.SortKey[FareView]{
		"fareCode":   listing.Text(func(f FareView) string { return f.FareCode }),
		"fareName":   listing.Text(func(f FareView) string { return f.FareName }),
		"fareAmount": listing.Number(func(f FareView) decimal.Decimal { return f.FareAmount }),
	},
	DefaultSort: "fareCode",
	DefaultDir:  listing.SortAsc,
}

// Service serves payments and fares
type Service struct {
	payments payment.Gateway
	resolver *resolver.Resolver
	catalog  resolver.Catalog
	logger   *zap.Logger
}

// NewService creates a new Service
func NewService(payments payment.Gateway, r *resolver.Resolver, catalog resolver.Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		payments: payments,
		resolver: r,
		catalog:  catalog,
		logger:   log,
	}
}

// List returns a page of enriched payments
func (s *Service) List(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[PaymentView], error) {
	views, warnings, err := s.Export(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[PaymentView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// Export returns every matching payment, sorted, plus resolver warnings
func (s *Service) Export(ctx context.Context, organizationID string, q listing.Query) ([]PaymentView, []string, error) {
	payments, err := s.payments.ListPayments(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}

	session := s.resolver.SessionFrom(ctx)
	session.Prefetch(ctx,
		s.catalog.Organizations(),
		s.catalog.Users(organizationID),
		s.catalog.WaterBoxes(organizationID),
	)

	views := make([]PaymentView, len(payments))
	for i, p := range payments {
		views[i] = s.enrich(ctx, session, organizationID, p)
	}
	selected, err := listing.Select(views, paymentSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

// Get returns one enriched payment
func (s *Service) Get(ctx context.Context, id string) (*PaymentView, []string, error) {
	if id == "" {
		return nil, nil, shared.ErrInvalidInput
	}
	p, err := s.payments.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, shared.ErrNotFound
	}
	session := s.resolver.SessionFrom(ctx)
	view := s.enrich(ctx, session, p.OrganizationID, *p)
	return &view, session.Warnings(), nil
}

// Create registers a payment. When detail lines are sent without a total,
// the total is their sum; a total that disagrees with the lines is rejected.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (*payment.Payment, error) {
	input := req.ToInput()
	if len(input.Details) > 0 {
		sum := decimal.Zero
		for _, d := range input.Details {
			sum = sum.Add(d.Amount)
		}
		switch {
		case input.TotalAmount.IsZero():
			input.TotalAmount = sum
		case !input.TotalAmount.Equal(sum):
			return nil, shared.NewDomainError("INVALID_INPUT", "El total no coincide con el detalle del pago")
		}
	}
	if !input.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "El monto total debe ser mayor a cero")
	}
	if input.PaymentDate != "" {
		if shared.ParseTime(input.PaymentDate).IsZero() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Fecha de pago no válida")
		}
	} else {
		input.PaymentDate = time.Now().Format("2006-01-02")
	}

	created, err := s.payments.CreatePayment(ctx, input)
	if err != nil {
		return nil, err
	}
	logger.WithLogger(ctx, s.logger).Info("Payment created",
		zap.String("payment_id", created.PaymentID),
		zap.String("amount", created.TotalAmount.StringFixed(2)),
	)
	return created, nil
}

// Fares returns a page of fares. Fares are listed across organizations
// upstream and filtered here.
func (s *Service) Fares(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[FareView], error) {
	views, warnings, err := s.ExportFares(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[FareView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// ExportFares returns every matching fare, sorted
func (s *Service) ExportFares(ctx context.Context, organizationID string, q listing.Query) ([]FareView, []string, error) {
	fares, err := s.payments.ListFares(ctx)
	if err != nil {
		return nil, nil, err
	}
	if organizationID != "" && q.Filter("organization_id") == "" {
		q = q.WithFilter("organization_id", organizationID)
	}

	session := s.resolver.SessionFrom(ctx)
	orgs := session.Table(ctx, s.catalog.Organizations())
	views := make([]FareView, len(fares))
	for i, f := range fares {
		views[i] = FareView{
			Fare:             f,
			OrganizationName: orgs.Name(f.OrganizationID),
			StatusLabel:      shared.StatusLabel(f.Status),
		}
	}
	selected, err := listing.Select(views, fareSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, session.Warnings(), nil
}

func (s *Service) enrich(ctx context.Context, session *resolver.Session, organizationID string, p payment.Payment) PaymentView {
	scope := organizationID
	if scope == "" {
		scope = p.OrganizationID
	}
	return PaymentView{
		Payment:          p,
		UserName:         session.Table(ctx, s.catalog.Users(scope)).Name(p.UserID),
		OrganizationName: session.Table(ctx, s.catalog.Organizations()).Name(p.OrganizationID),
		WaterBoxCode:     session.Table(ctx, s.catalog.WaterBoxes(scope)).Name(p.WaterBoxID),
		StatusLabel:      shared.StatusLabel(p.PaymentStatus),
	}
}
