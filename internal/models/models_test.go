package models

import (
	"errors"
	"math"
	"testing"

	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

func validVehicle() *Vehicle {
	return &Vehicle{
		Name:               "Coaster 01",
		Plate:              " hab-1234 ",
		PassengerCapacity:  29,
		FuelCapacity:       25,
		FuelEfficiency:     8,
		FuelEfficiencyUnit: "KPL",
		CostPerDistance:    3,
		CostPerDay:         1500,
	}
}

func TestVehicle_NormalizeAndValidate(t *testing.T) {
	v := validVehicle()
	v.Normalize()

	if v.Status != VehicleStatusActive {
		t.Errorf("expected default status %q, got %q", VehicleStatusActive, v.Status)
	}
	if v.DistanceUnit != units.Kilometer {
		t.Errorf("expected default distance unit km, got %q", v.DistanceUnit)
	}
	if v.FuelEfficiencyUnit != units.KmPerLiter {
		t.Errorf("expected kpl, got %q", v.FuelEfficiencyUnit)
	}
	if v.Plate != "HAB-1234" {
		t.Errorf("expected normalized plate, got %q", v.Plate)
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("expected valid vehicle, got %v", err)
	}
	if !v.IsAvailable() {
		t.Errorf("expected active vehicle to be available")
	}
}

func TestVehicle_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Vehicle)
		field  string
	}{
		{"missing name", func(v *Vehicle) { v.Name = "" }, "name"},
		{"bad status", func(v *Vehicle) { v.Status = "sold" }, "status"},
		{"zero efficiency", func(v *Vehicle) { v.FuelEfficiency = 0 }, "vehicle.fuel_efficiency"},
		{"zero tank", func(v *Vehicle) { v.FuelCapacity = 0 }, "vehicle.fuel_capacity"},
		{"bad unit", func(v *Vehicle) { v.DistanceUnit = "league" }, "vehicle.distance_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVehicle()
			v.Normalize()
			tt.mutate(v)

			var ve *xerrors.ValidationError
			if err := v.Validate(); !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestDefaultSystemParameters(t *testing.T) {
	p := DefaultSystemParameters("tenant-1", 2026)

	if !p.IsActive {
		t.Errorf("expected seeded parameters to be active")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg := p.LadderConfig()
	if len(cfg.Markups) != 5 || cfg.RecommendedMarkup != 15 {
		t.Errorf("unexpected ladder config %+v", cfg)
	}
	if cfg.ExchangeRate != 24.5 {
		t.Errorf("expected official exchange rate, got %v", cfg.ExchangeRate)
	}
}

func TestSystemParameters_EffectiveExchangeRate(t *testing.T) {
	p := DefaultSystemParameters("tenant-1", 2026)
	if got := p.EffectiveExchangeRate(); got != 24.5 {
		t.Errorf("expected 24.5, got %v", got)
	}

	override := 25.1
	p.ExchangeRateOverride = &override
	if got := p.EffectiveExchangeRate(); got != 25.1 {
		t.Errorf("expected override 25.1, got %v", got)
	}
	if got := p.LadderConfig().ExchangeRate; got != 25.1 {
		t.Errorf("expected ladder to use override, got %v", got)
	}
}

func TestSystemParameters_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SystemParameters)
	}{
		{"year", func(p *SystemParameters) { p.Year = 1990 }},
		{"exchange rate", func(p *SystemParameters) { p.ExchangeRate = 0 }},
		{"currency", func(p *SystemParameters) { p.PreferredCurrency = "EUR" }},
		{"markup", func(p *SystemParameters) { p.MarkupOptions = []float64{10, -1} }},
		{"fuel price", func(p *SystemParameters) { p.FuelPrice = -5 }},
		{"NaN exchange rate", func(p *SystemParameters) { p.ExchangeRate = math.NaN() }},
		{"infinite markup", func(p *SystemParameters) { p.MarkupOptions = []float64{math.Inf(1)} }},
		{"NaN fuel price", func(p *SystemParameters) { p.FuelPrice = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSystemParameters("tenant-1", 2026)
			tt.mutate(p)
			if err := p.Validate(); !xerrors.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestQuoteRequest_Validate(t *testing.T) {
	ok := &QuoteRequest{VehicleID: "v1", Origin: "San Pedro Sula", Destination: "Tela"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	missingRoute := &QuoteRequest{VehicleID: "v1", Origin: "San Pedro Sula"}
	if err := missingRoute.Validate(); !xerrors.IsValidation(err) {
		t.Errorf("expected ValidationError for missing destination, got %v", err)
	}

	negative := &QuoteRequest{VehicleID: "v1", Origin: "a", Destination: "b", ExtraMileage: -1}
	if err := negative.Validate(); !xerrors.IsValidation(err) {
		t.Errorf("expected ValidationError for negative extra mileage, got %v", err)
	}
}

func TestSystemParameters_LadderConfigRoundingUnits(t *testing.T) {
	p := &SystemParameters{ExchangeRate: 24.75}
	cfg := p.LadderConfig()
	if cfg.LocalRoundingUnit != 100 || cfg.ForeignRoundingUnit != 5 {
		t.Errorf("expected unset units to keep defaults, got %v and %v", cfg.LocalRoundingUnit, cfg.ForeignRoundingUnit)
	}

	p.LocalRoundingUnit = -1
	p.ForeignRoundingUnit = 10
	cfg = p.LadderConfig()
	if cfg.LocalRoundingUnit != -1 || cfg.ForeignRoundingUnit != 10 {
		t.Errorf("expected configured units, got %v and %v", cfg.LocalRoundingUnit, cfg.ForeignRoundingUnit)
	}
}

func TestNewTenant(t *testing.T) {
	tenant := NewTenant("  Transportes Ñandú S.A. ")
	if tenant.Name != "Transportes Ñandú S.A." {
		t.Errorf("expected trimmed name, got %q", tenant.Name)
	}
	if tenant.Slug != "transportes-nandu-s-a" {
		t.Errorf("expected slug transportes-nandu-s-a, got %q", tenant.Slug)
	}
	if !tenant.IsActive() {
		t.Errorf("expected new tenant to be active, got status %q", tenant.Status)
	}

	tenant.Status = TenantStatusSuspended
	if tenant.IsActive() {
		t.Error("expected suspended tenant to be inactive")
	}
}
