// Package quotation prices trip requests against a tenant's fleet and rate
// sheet and stores the resulting quotations.
package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/events"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/pricing"
	"github.com/ukydev/fleetquote/internal/routing"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

var (
	ErrVehicleUnavailable = errors.New("vehicle is not available for quotes")
	ErrRouteUnresolved    = errors.New("route could not be resolved")
)

// ParametersSource returns a tenant's active rate sheet.
type ParametersSource interface {
	Active(ctx context.Context, tenantID string) (*models.SystemParameters, error)
}

// Estimate is a priced, unsaved quote.
type Estimate struct {
	VehicleID    string                  `json:"vehicle_id"`
	VehicleName  string                  `json:"vehicle_name"`
	Route        costs.RouteResult       `json:"route"`
	Costs        costs.DetailedCosts     `json:"costs"`
	Options      []pricing.PricingOption `json:"options"`
	Recommended  *pricing.PricingOption  `json:"recommended,omitempty"`
	ParametersID string                  `json:"parameters_id"`
	Currency     string                  `json:"currency"`
	ExchangeRate float64                 `json:"exchange_rate"`
	TollPolicy   string                  `json:"toll_policy"`
}

// Service handles quotation operations.
type Service struct {
	vehicles   db.VehicleCollection
	quotations db.QuotationCollection
	params     ParametersSource
	routes     routing.Provider
	publisher  events.Publisher
	calc       *costs.Calculator
	logger     log.FieldLogger
	now        func() time.Time
}

// Config bundles the collaborators of a Service. Routes, Publisher,
// Calculator and Logger fall back to no-op or default implementations.
type Config struct {
	Vehicles   db.VehicleCollection
	Quotations db.QuotationCollection
	Parameters ParametersSource
	Routes     routing.Provider
	Publisher  events.Publisher
	Calculator *costs.Calculator
	Logger     log.FieldLogger
}

func NewService(cfg Config) *Service {
	s := &Service{
		vehicles:   cfg.Vehicles,
		quotations: cfg.Quotations,
		params:     cfg.Parameters,
		routes:     cfg.Routes,
		publisher:  cfg.Publisher,
		calc:       cfg.Calculator,
		logger:     cfg.Logger,
		now:        time.Now,
	}
	if s.routes == nil {
		s.routes = routing.Unavailable{}
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.calc == nil {
		s.calc = costs.NewCalculator()
	}
	if s.logger == nil {
		s.logger = log.StandardLogger()
	}
	return s
}

// Estimate prices req for tenantID without storing anything.
func (s *Service) Estimate(ctx context.Context, tenantID string, req models.QuoteRequest) (*Estimate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.FindVehicleByID(ctx, tenantID, req.VehicleID)
	if err != nil {
		return nil, xerrors.Wrap(err, "load vehicle")
	}
	if !vehicle.IsAvailable() {
		return nil, fmt.Errorf("%w: status is %s", ErrVehicleUnavailable, vehicle.Status)
	}
	if req.Passengers > vehicle.PassengerCapacity {
		return nil, xerrors.Invalid("passengers", fmt.Sprintf("exceeds vehicle capacity of %d", vehicle.PassengerCapacity))
	}

	params, err := s.params.Active(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	route, err := s.resolveRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	return Price(s.calc, vehicle, params, *route, req.Flags, req.ExtraMileage)
}

// Price runs the cost engine and pricing ladder for one trip. It touches no
// store and is shared by the service and offline tools.
func Price(calc *costs.Calculator, vehicle *models.Vehicle, params *models.SystemParameters, route costs.RouteResult, flags costs.Flags, extraMileage float64) (*Estimate, error) {
	detailed, err := calc.CalculateTotalCosts(costs.CostCalculationRequest{
		Route:        route,
		Vehicle:      vehicle.Profile(),
		Flags:        flags,
		ExtraMileage: extraMileage,
	}, params.Rates())
	if err != nil {
		return nil, err
	}

	options, err := pricing.GenerateLadder(detailed.Total, params.LadderConfig())
	if err != nil {
		return nil, xerrors.Calculation("pricing", "generate ladder", err)
	}

	est := &Estimate{
		VehicleID:    vehicle.ID.Hex(),
		VehicleName:  vehicle.Name,
		Route:        route,
		Costs:        *detailed,
		Options:      options,
		ParametersID: params.ID.Hex(),
		Currency:     params.PreferredCurrency,
		ExchangeRate: params.EffectiveExchangeRate(),
		TollPolicy:   calc.TollPolicy().String(),
	}
	if rec, ok := pricing.Recommended(options); ok {
		est.Recommended = &rec
	}
	return est, nil
}

func (s *Service) resolveRoute(ctx context.Context, req models.QuoteRequest) (*costs.RouteResult, error) {
	if req.Route != nil {
		route := *req.Route
		if route.Origin == "" {
			route.Origin = req.Origin
		}
		if route.Destination == "" {
			route.Destination = req.Destination
		}
		if route.Base == "" {
			route.Base = req.Base
		}
		return &route, nil
	}

	route, err := s.routes.Route(ctx, req.Base, req.Origin, req.Destination)
	if err != nil {
		s.logger.WithFields(log.Fields{
			"origin":      req.Origin,
			"destination": req.Destination,
			"error":       err,
		}).Warn("Route lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrRouteUnresolved, err)
	}
	return route, nil
}

// Create prices req and stores it as a draft quotation created by userID.
// A failed event publish is logged and does not fail the call.
func (s *Service) Create(ctx context.Context, tenantID, userID string, req models.QuoteRequest) (*models.Quotation, error) {
	est, err := s.Estimate(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	q := &models.Quotation{
		TenantID:     tenantID,
		Reference:    ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		VehicleID:    est.VehicleID,
		VehicleName:  est.VehicleName,
		ClientName:   req.ClientName,
		Passengers:   req.Passengers,
		Flags:        req.Flags,
		ExtraMileage: req.ExtraMileage,
		Route:        est.Route,
		Costs:        est.Costs,
		Options:      est.Options,
		ParametersID: est.ParametersID,
		Currency:     est.Currency,
		ExchangeRate: est.ExchangeRate,
		Status:       models.QuotationStatusDraft,
		Notes:        req.Notes,
		CreatedBy:    userID,
		CreatedAt:    now,
	}

	if err := s.quotations.InsertQuotation(ctx, q); err != nil {
		return nil, xerrors.Wrap(err, "store quotation")
	}

	s.logger.WithFields(log.Fields{
		"tenant_id":  tenantID,
		"reference":  q.Reference,
		"vehicle_id": q.VehicleID,
		"total":      q.Costs.Total,
	}).Info("Quotation created")

	s.publishCreated(ctx, q)
	return q, nil
}

func (s *Service) publishCreated(ctx context.Context, q *models.Quotation) {
	data := map[string]interface{}{
		"id":         q.ID.Hex(),
		"reference":  q.Reference,
		"vehicle_id": q.VehicleID,
		"total":      q.Costs.Total,
		"currency":   q.Currency,
	}
	if rec, ok := pricing.Recommended(q.Options); ok {
		data["recommended_price"] = rec.SalePriceHNL
	}

	err := s.publisher.Publish(ctx, events.Event{
		Type:       events.QuotationCreated,
		TenantID:   q.TenantID,
		OccurredAt: q.CreatedAt,
		Data:       data,
	})
	if err != nil {
		s.logger.WithFields(log.Fields{
			"tenant_id": q.TenantID,
			"reference": q.Reference,
			"error":     err,
		}).Error("Failed to publish quotation event")
	}
}

// Get returns one quotation of the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.Quotation, error) {
	return s.quotations.FindQuotationByID(ctx, tenantID, id)
}

// List returns the tenant's quotations, newest first.
func (s *Service) List(ctx context.Context, tenantID string, filter db.QuotationFilter) ([]models.Quotation, error) {
	cursor, err := s.quotations.FindQuotations(ctx, tenantID, filter)
	if err != nil {
		return nil, xerrors.Wrap(err, "list quotations")
	}
	defer cursor.Close(ctx)

	var out []models.Quotation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, xerrors.Wrap(err, "decode quotations")
	}
	if out == nil {
		out = []models.Quotation{}
	}
	return out, nil
}
