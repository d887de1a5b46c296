// Package mocks holds testify mocks of the store, cache, routing and event
// interfaces, shared by the service and handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/events"
	"github.com/ukydev/fleetquote/internal/models"
)

// UserCollection is a mock implementation of db.UserCollection
type UserCollection struct {
	mock.Mock
}

func (m *UserCollection) InsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *UserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserCollection) FindUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	args := m.Called(ctx, tenantID)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *UserCollection) DeleteUser(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// TenantCollection is a mock implementation of db.TenantCollection
type TenantCollection struct {
	mock.Mock
}

func (m *TenantCollection) InsertTenant(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *TenantCollection) FindTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *TenantCollection) DeleteTenant(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// VehicleCollection is a mock implementation of db.VehicleCollection
type VehicleCollection struct {
	mock.Mock
}

func (m *VehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *VehicleCollection) FindVehicles(ctx context.Context, tenantID string, filter db.VehicleFilter, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *VehicleCollection) FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *VehicleCollection) UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, tenantID, id, vehicle)
	return args.Error(0)
}

func (m *VehicleCollection) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// ParametersCollection is a mock implementation of db.ParametersCollection
type ParametersCollection struct {
	mock.Mock
}

func (m *ParametersCollection) InsertParameters(ctx context.Context, p *models.SystemParameters) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ParametersCollection) FindActiveParameters(ctx context.Context, tenantID string) (*models.SystemParameters, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SystemParameters), args.Error(1)
}

func (m *ParametersCollection) FindParametersByID(ctx context.Context, tenantID, id string) (*models.SystemParameters, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SystemParameters), args.Error(1)
}

func (m *ParametersCollection) ListParameters(ctx context.Context, tenantID string) ([]models.SystemParameters, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SystemParameters), args.Error(1)
}

func (m *ParametersCollection) UpdateParameters(ctx context.Context, tenantID, id string, p models.SystemParameters) error {
	args := m.Called(ctx, tenantID, id, p)
	return args.Error(0)
}

func (m *ParametersCollection) ActivateParameters(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// QuotationCollection is a mock implementation of db.QuotationCollection
type QuotationCollection struct {
	mock.Mock
}

func (m *QuotationCollection) InsertQuotation(ctx context.Context, q *models.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *QuotationCollection) FindQuotationByID(ctx context.Context, tenantID, id string) (*models.Quotation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quotation), args.Error(1)
}

func (m *QuotationCollection) FindQuotations(ctx context.Context, tenantID string, filter db.QuotationFilter) (db.Cursor, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

// ParametersCache is a mock implementation of cache.ParametersCache
type ParametersCache struct {
	mock.Mock
}

func (m *ParametersCache) Get(ctx context.Context, tenantID string) (*models.SystemParameters, bool, error) {
	args := m.Called(ctx, tenantID)
	p, _ := args.Get(0).(*models.SystemParameters)
	return p, args.Bool(1), args.Error(2)
}

func (m *ParametersCache) Set(ctx context.Context, p *models.SystemParameters) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ParametersCache) Invalidate(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// RouteProvider is a mock implementation of routing.Provider
type RouteProvider struct {
	mock.Mock
}

func (m *RouteProvider) Route(ctx context.Context, base, origin, destination string) (*costs.RouteResult, error) {
	args := m.Called(ctx, base, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costs.RouteResult), args.Error(1)
}

// Publisher is a mock implementation of events.Publisher
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *Publisher) Close() {
	m.Called()
}

// Cursor is a mock db.Cursor. Tests fill the All destination with Run.
type Cursor struct {
	mock.Mock
}

func (m *Cursor) All(ctx context.Context, out interface{}) error {
	args := m.Called(ctx, out)
	return args.Error(0)
}

func (m *Cursor) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CursorOf returns a Cursor whose All stores items into out, which must be
// a *[]T matching items.
func CursorOf[T any](items []T) *Cursor {
	c := new(Cursor)
	c.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*[]T) = items
	}).Return(nil)
	c.On("Close", mock.Anything).Return(nil)
	return c
}
