package models

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/pricing"
	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

const (
	CurrencyHNL = "HNL"
	CurrencyUSD = "USD"
)

// SystemParameters is a tenant's yearly rate sheet. Exactly one record per
// tenant is active at a time.
type SystemParameters struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID              string             `bson:"tenant_id" json:"tenant_id"`
	Year                  int                `bson:"year" json:"year"`
	FuelPrice             float64            `bson:"fuel_price" json:"fuel_price"` // per gallon, local currency
	MealCostPerDay        float64            `bson:"meal_cost_per_day" json:"meal_cost_per_day"`
	HotelCostPerNight     float64            `bson:"hotel_cost_per_night" json:"hotel_cost_per_night"`
	DriverIncentivePerDay float64            `bson:"driver_incentive_per_day" json:"driver_incentive_per_day"`
	ExchangeRate          float64            `bson:"exchange_rate" json:"exchange_rate"`
	ExchangeRateOverride  *float64           `bson:"exchange_rate_override,omitempty" json:"exchange_rate_override,omitempty"`
	PreferredDistanceUnit units.DistanceUnit `bson:"preferred_distance_unit" json:"preferred_distance_unit"`
	PreferredCurrency     string             `bson:"preferred_currency" json:"preferred_currency"`
	MarkupOptions         []float64          `bson:"markup_options" json:"markup_options"`
	RecommendedMarkup     float64            `bson:"recommended_markup" json:"recommended_markup"`
	LocalRoundingUnit     float64            `bson:"local_rounding_unit" json:"local_rounding_unit"`
	ForeignRoundingUnit   float64            `bson:"foreign_rounding_unit" json:"foreign_rounding_unit"`
	TollFees              map[string]float64 `bson:"toll_fees,omitempty" json:"toll_fees,omitempty"`
	ExitToll              float64            `bson:"exit_toll" json:"exit_toll"`
	IsActive              bool               `bson:"is_active" json:"is_active"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// DefaultSystemParameters is the rate sheet seeded when a tenant signs up.
func DefaultSystemParameters(tenantID string, year int) *SystemParameters {
	now := time.Now()
	return &SystemParameters{
		TenantID:              tenantID,
		Year:                  year,
		FuelPrice:             105,
		MealCostPerDay:        300,
		HotelCostPerNight:     1000,
		DriverIncentivePerDay: 500,
		ExchangeRate:          24.5,
		PreferredDistanceUnit: units.Kilometer,
		PreferredCurrency:     CurrencyHNL,
		MarkupOptions:         append([]float64(nil), pricing.DefaultMarkups...),
		RecommendedMarkup:     pricing.DefaultRecommendedMarkup,
		LocalRoundingUnit:     pricing.DefaultLocalRoundingUnit,
		ForeignRoundingUnit:   pricing.DefaultForeignRoundingUnit,
		ExitToll:              20,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// EffectiveExchangeRate prefers the tenant override over the official rate.
func (p *SystemParameters) EffectiveExchangeRate() float64 {
	if p.ExchangeRateOverride != nil && *p.ExchangeRateOverride > 0 {
		return *p.ExchangeRateOverride
	}
	return p.ExchangeRate
}

// Rates returns the figures the cost engine works with.
func (p *SystemParameters) Rates() costs.Parameters {
	return costs.Parameters{
		FuelPrice:             p.FuelPrice,
		MealCostPerDay:        p.MealCostPerDay,
		HotelCostPerNight:     p.HotelCostPerNight,
		DriverIncentivePerDay: p.DriverIncentivePerDay,
		TollFees:              p.TollFees,
		ExitToll:              p.ExitToll,
	}
}

// LadderConfig returns the pricing ladder settings of this rate sheet.
func (p *SystemParameters) LadderConfig() pricing.LadderConfig {
	cfg := pricing.DefaultLadderConfig(p.EffectiveExchangeRate())
	if len(p.MarkupOptions) > 0 {
		cfg.Markups = append([]float64(nil), p.MarkupOptions...)
	}
	if p.RecommendedMarkup > 0 {
		cfg.RecommendedMarkup = p.RecommendedMarkup
	}
	// Zero means unset. A negative unit rounds to cents.
	if p.LocalRoundingUnit != 0 {
		cfg.LocalRoundingUnit = p.LocalRoundingUnit
	}
	if p.ForeignRoundingUnit != 0 {
		cfg.ForeignRoundingUnit = p.ForeignRoundingUnit
	}
	return cfg
}

// Validate checks the rate sheet before it is stored.
func (p *SystemParameters) Validate() error {
	if p.Year < 2000 || p.Year > 2100 {
		return xerrors.Invalid("year", "must be between 2000 and 2100")
	}
	if !(p.ExchangeRate > 0) || math.IsInf(p.ExchangeRate, 0) {
		return xerrors.Invalid("exchange_rate", "must be greater than zero")
	}
	if p.ExchangeRateOverride != nil && (!(*p.ExchangeRateOverride > 0) || math.IsInf(*p.ExchangeRateOverride, 0)) {
		return xerrors.Invalid("exchange_rate_override", "must be greater than zero")
	}
	if p.PreferredDistanceUnit != "" && !p.PreferredDistanceUnit.Valid() {
		return xerrors.Invalid("preferred_distance_unit", fmt.Sprintf("unsupported unit %q", p.PreferredDistanceUnit))
	}
	switch p.PreferredCurrency {
	case "", CurrencyHNL, CurrencyUSD:
	default:
		return xerrors.Invalid("preferred_currency", "must be HNL or USD")
	}
	for i, m := range p.MarkupOptions {
		if !(m >= 0) || math.IsInf(m, 0) {
			return xerrors.Invalid(fmt.Sprintf("markup_options[%d]", i), "must not be negative")
		}
	}
	if p.RecommendedMarkup < 0 {
		return xerrors.Invalid("recommended_markup", "must not be negative")
	}
	return costs.ValidateParameters(p.Rates())
}
