package handler

import (
	"context"

	"github.com/jass/bff/internal/domain/distribution"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/organization"
	"github.com/jass/bff/internal/domain/payment"
	"github.com/jass/bff/internal/domain/quality"
	"github.com/jass/bff/internal/domain/waterbox"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of organization.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListOrganizations(ctx context.Context) ([]organization.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Organization), args.Error(1)
}

func (m *MockDirectory) GetOrganization(ctx context.Context, id string) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockDirectory) ListZones(ctx context.Context, organizationID string) ([]organization.Zone, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Zone), args.Error(1)
}

func (m *MockDirectory) ListStreets(ctx context.Context, organizationID string) ([]organization.Street, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Street), args.Error(1)
}

func (m *MockDirectory) ListStreetsByZone(ctx context.Context, zoneID string) ([]organization.Street, error) {
	args := m.Called(ctx, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Street), args.Error(1)
}

// MockUserDirectory is a mock implementation of identity.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ListUsers(ctx context.Context, organizationID string) ([]identity.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserDirectory) ListClients(ctx context.Context, organizationID string) ([]identity.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserDirectory) GetUser(ctx context.Context, id string) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) CreateClient(ctx context.Context, input identity.ClientInput) (*identity.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) UpdateClient(ctx context.Context, id string, input identity.ClientInput) (*identity.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserDirectory) DeleteClient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPersonLookup is a mock implementation of identity.PersonLookup
type MockPersonLookup struct {
	mock.Mock
}

func (m *MockPersonLookup) LookupDNI(ctx context.Context, dni string) (*identity.Person, error) {
	args := m.Called(ctx, dni)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Person), args.Error(1)
}

// MockPaymentGateway is a mock implementation of payment.Gateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) ListPayments(ctx context.Context, organizationID string) ([]payment.Payment, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentGateway) ListFares(ctx context.Context) ([]payment.Fare, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Fare), args.Error(1)
}

// stubDistribution serves fixed distribution collections
type stubDistribution struct {
	routes    []distribution.Route
	schedules []distribution.Schedule
	programs  []distribution.Program
	err       error
}

func (s stubDistribution) ListRoutes(context.Context) ([]distribution.Route, error) {
	return s.routes, s.err
}

func (s stubDistribution) ListSchedules(context.Context) ([]distribution.Schedule, error) {
	return s.schedules, s.err
}

func (s stubDistribution) ListPrograms(context.Context) ([]distribution.Program, error) {
	return s.programs, s.err
}

// stubInfrastructure serves fixed water boxes and assignments
type stubInfrastructure struct {
	boxes       []waterbox.WaterBox
	assignments []waterbox.Assignment
	assignErr   error
}

func (s stubInfrastructure) ListWaterBoxes(context.Context) ([]waterbox.WaterBox, error) {
	return s.boxes, nil
}

func (s stubInfrastructure) ListAssignments(context.Context) ([]waterbox.Assignment, error) {
	return s.assignments, s.assignErr
}

// stubQuality serves fixed quality collections
type stubQuality struct {
	tests   []quality.Test
	records []quality.ChlorineRecord
	points  []quality.TestingPoint
}

func (s stubQuality) ListTests(context.Context) ([]quality.Test, error) {
	return s.tests, nil
}

func (s stubQuality) ListChlorineRecords(context.Context) ([]quality.ChlorineRecord, error) {
	return s.records, nil
}

func (s stubQuality) ListTestingPoints(context.Context) ([]quality.TestingPoint, error) {
	return s.points, nil
}
