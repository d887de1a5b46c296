package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetquote/internal/models"
)

// Every lookup below is scoped to a tenant. A document owned by another
// tenant is reported as not found.

// TenantCollection defines the interface for tenant data operations.
type TenantCollection interface {
	InsertTenant(ctx context.Context, tenant *models.Tenant) error
	FindTenantByID(ctx context.Context, id string) (*models.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicles(ctx context.Context, tenantID string, filter VehicleFilter, opts ...*options.FindOptions) (Cursor, error)
	FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, tenantID, id string) error
}

// VehicleFilter narrows FindVehicles. Zero values match everything.
type VehicleFilter struct {
	Status string
}

// ParametersCollection defines the interface for system parameter records.
type ParametersCollection interface {
	// InsertParameters stores p. When p is active its siblings are
	// deactivated first.
	InsertParameters(ctx context.Context, p *models.SystemParameters) error
	FindActiveParameters(ctx context.Context, tenantID string) (*models.SystemParameters, error)
	FindParametersByID(ctx context.Context, tenantID, id string) (*models.SystemParameters, error)
	ListParameters(ctx context.Context, tenantID string) ([]models.SystemParameters, error)
	UpdateParameters(ctx context.Context, tenantID, id string, p models.SystemParameters) error
	// ActivateParameters makes id the tenant's only active record.
	ActivateParameters(ctx context.Context, tenantID, id string) error
}

// QuotationCollection defines the interface for stored quotations.
type QuotationCollection interface {
	InsertQuotation(ctx context.Context, q *models.Quotation) error
	FindQuotationByID(ctx context.Context, tenantID, id string) (*models.Quotation, error)
	FindQuotations(ctx context.Context, tenantID string, filter QuotationFilter) (Cursor, error)
}

// QuotationFilter narrows and pages FindQuotations.
type QuotationFilter struct {
	VehicleID string
	Status    string
	Limit     int64
	Skip      int64
}
