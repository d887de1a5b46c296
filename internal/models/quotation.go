package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/pricing"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

const QuotationStatusDraft = "draft"

// QuoteRequest is what a client submits to price a trip. When Route is nil
// the route is resolved from Base, Origin and Destination.
type QuoteRequest struct {
	VehicleID    string             `json:"vehicle_id" binding:"required"`
	ClientName   string             `json:"client_name"`
	Passengers   int                `json:"passengers"`
	Base         string             `json:"base"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	Route        *costs.RouteResult `json:"route,omitempty"`
	ExtraMileage float64            `json:"extra_mileage"`
	Flags        costs.Flags        `json:"flags"`
	Notes        string             `json:"notes"`
}

// Validate checks the request fields that do not depend on stored data.
func (r *QuoteRequest) Validate() error {
	if strings.TrimSpace(r.VehicleID) == "" {
		return xerrors.Invalid("vehicle_id", "is required")
	}
	if r.Passengers < 0 {
		return xerrors.Invalid("passengers", "must not be negative")
	}
	if r.ExtraMileage < 0 {
		return xerrors.Invalid("extra_mileage", "must not be negative")
	}
	if r.Route == nil && (strings.TrimSpace(r.Origin) == "" || strings.TrimSpace(r.Destination) == "") {
		return xerrors.Invalid("route", "origin and destination are required when no route is given")
	}
	return nil
}

// Quotation is a priced quote stored for later follow-up.
type Quotation struct {
	ID           primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	TenantID     string                  `bson:"tenant_id" json:"tenant_id"`
	Reference    string                  `bson:"reference" json:"reference"`
	VehicleID    string                  `bson:"vehicle_id" json:"vehicle_id"`
	VehicleName  string                  `bson:"vehicle_name" json:"vehicle_name"`
	ClientName   string                  `bson:"client_name,omitempty" json:"client_name,omitempty"`
	Passengers   int                     `bson:"passengers" json:"passengers"`
	Flags        costs.Flags             `bson:"flags" json:"flags"`
	ExtraMileage float64                 `bson:"extra_mileage" json:"extra_mileage"`
	Route        costs.RouteResult       `bson:"route" json:"route"`
	Costs        costs.DetailedCosts     `bson:"costs" json:"costs"`
	Options      []pricing.PricingOption `bson:"options" json:"options"`
	ParametersID string                  `bson:"parameters_id" json:"parameters_id"`
	Currency     string                  `bson:"currency" json:"currency"`
	ExchangeRate float64                 `bson:"exchange_rate" json:"exchange_rate"`
	Status       string                  `bson:"status" json:"status"`
	Notes        string                  `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy    string                  `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time               `bson:"created_at" json:"created_at"`
}
