package waterbox

import (
	"context"

	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/domain/waterbox"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const assignmentsWarning = "No se pudieron cargar las asignaciones de cajas de agua"

// WaterBoxView is a water box joined with its current assignment and user
type WaterBoxView struct {
	waterbox.WaterBox
	OrganizationName string           `json:"organizationName"`
	AssignmentID     string           `json:"assignmentId,omitempty"`
	AssignedUserID   string           `json:"assignedUserId,omitempty"`
	AssignedUserName string           `json:"assignedUserName"`
	AssignmentStart  string           `json:"assignmentStartDate,omitempty"`
	MonthlyFee       *decimal.Decimal `json:"monthlyFee,omitempty"`
	StatusLabel      string           `json:"statusLabel"`
}

var waterBoxSpec = listing.Spec[WaterBoxView]{
	Search: []func(WaterBoxView) string{
		func(w WaterBoxView) string { return w.BoxCode },
		func(w WaterBoxView) string { return w.AssignedUserName },
	},
	Filters: map[string]func(WaterBoxView) string{
		"status": func(w WaterBoxView) string { return w.Status },
		"type":   func(w WaterBoxView) string { return w.BoxType },
		"assigned": func(w WaterBoxView) string {
			if w.AssignmentID != "" {
				return "true"
			}
			return "false"
		},
	},
	Sorts: map[string]listing.SortKey[WaterBoxView]{
		"boxCode":          listing.Text(func(w WaterBoxView) string { return w.BoxCode }),
		"installationDate": listing.TimeString(func(w WaterBoxView) string { return w.InstallationDate }),
		"assignedUserName": listing.Text(func(w WaterBoxView) string { return w.AssignedUserName }),
		"status":           listing.Text(func(w WaterBoxView) string { return w.StatusLabel }),
	},
	DefaultSort: "boxCode",
	DefaultDir:  listing.SortAsc,
}

// Service joins water boxes, assignments and users
type Service struct {
	gateway  waterbox.Gateway
	resolver *resolver.Resolver
	catalog  resolver.Catalog
	logger   *zap.Logger
}

// NewService creates a new Service
func NewService(gateway waterbox.Gateway, r *resolver.Resolver, catalog resolver.Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gateway: gateway, resolver: r, catalog: catalog, logger: log}
}

// List returns a page of water boxes with their current assignment
func (s *Service) List(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[WaterBoxView], error) {
	views, warnings, err := s.Export(ctx, organizationID, q)
	if err != nil {
		return nil, err
	}
	return &listing.Result[WaterBoxView]{Page: listing.Paginate(views, q.Page, q.PageSize), Warnings: warnings}, nil
}

// Export loads boxes, assignments and user names in parallel. Boxes are the
// primary list and fail the call; assignments and names degrade.
func (s *Service) Export(ctx context.Context, organizationID string, q listing.Query) ([]WaterBoxView, []string, error) {
	session := s.resolver.SessionFrom(ctx)

	var (
		boxes       []waterbox.WaterBox
		assignments []waterbox.Assignment
		assignErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		boxes, err = s.gateway.ListWaterBoxes(gctx)
		return err
	})
	g.Go(func() error {
		assignments, assignErr = s.gateway.ListAssignments(gctx)
		return nil
	})
	g.Go(func() error {
		session.Prefetch(gctx, s.catalog.Organizations(), s.catalog.Users(organizationID))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	warnings := session.Warnings()
	if assignErr != nil {
		logger.WithLogger(ctx, s.logger).Warn("Assignments lookup failed", zap.Error(assignErr))
		warnings = append(warnings, assignmentsWarning)
	}

	current := CurrentAssignments(assignments)
	orgs := session.Table(ctx, s.catalog.Organizations())
	users := session.Table(ctx, s.catalog.Users(organizationID))

	views := make([]WaterBoxView, 0, len(boxes))
	for _, b := range boxes {
		if organizationID != "" && b.OrganizationID != organizationID {
			continue
		}
		view := WaterBoxView{
			WaterBox:         b,
			OrganizationName: orgs.Name(b.OrganizationID),
			StatusLabel:      shared.StatusLabel(b.Status),
		}
		if a, ok := pick(b, current, assignments); ok {
			fee := a.MonthlyFee
			view.AssignmentID = a.ID
			view.AssignedUserID = a.UserID
			view.AssignedUserName = users.Name(a.UserID)
			view.AssignmentStart = a.StartDate
			view.MonthlyFee = &fee
		}
		views = append(views, view)
	}

	selected, err := listing.Select(views, waterBoxSpec, q)
	if err != nil {
		return nil, nil, err
	}
	return selected, warnings, nil
}

// CurrentAssignments returns the active assignment of each box keyed by box
// id. When a box has several active assignments the latest start wins.
func CurrentAssignments(assignments []waterbox.Assignment) map[string]waterbox.Assignment {
	current := make(map[string]waterbox.Assignment)
	for _, a := range assignments {
		if a.Status != "ACTIVE" || a.WaterBoxID == "" {
			continue
		}
		prev, ok := current[a.WaterBoxID]
		if !ok || shared.ParseTime(a.StartDate).After(shared.ParseTime(prev.StartDate)) {
			current[a.WaterBoxID] = a
		}
	}
	return current
}

// pick prefers the assignment the box points to, then the active one
func pick(b waterbox.WaterBox, current map[string]waterbox.Assignment, all []waterbox.Assignment) (waterbox.Assignment, bool) {
	if b.CurrentAssignmentID != "" {
		for _, a := range all {
			if a.ID == b.CurrentAssignmentID {
				return a, true
			}
		}
	}
	a, ok := current[b.ID]
	return a, ok
}
