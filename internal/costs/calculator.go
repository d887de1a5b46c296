package costs

import (
	"fmt"
	"math"

	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// TollPolicy decides whether computed tolls count toward the total.
type TollPolicy int

const (
	// TollsExcluded reports tolls in the breakdown but never sums them.
	TollsExcluded TollPolicy = iota
	// TollsWhenRequested sums tolls when the request sets IncludeTolls.
	TollsWhenRequested
)

func (p TollPolicy) String() string {
	if p == TollsWhenRequested {
		return "when_requested"
	}
	return "excluded"
}

// Calculator aggregates the component calculators into DetailedCosts.
type Calculator struct {
	tollPolicy TollPolicy
	corridors  []Corridor
}

type Option func(*Calculator)

func WithTollPolicy(p TollPolicy) Option {
	return func(c *Calculator) { c.tollPolicy = p }
}

// WithCorridors replaces DefaultCorridors.
func WithCorridors(corridors []Corridor) Option {
	return func(c *Calculator) { c.corridors = corridors }
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		tollPolicy: TollsExcluded,
		corridors:  DefaultCorridors,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) TollPolicy() TollPolicy {
	return c.tollPolicy
}

// CalculateTotalCosts validates the request, computes every component and
// sums the ones the flags select. Vehicle operating cost is always summed.
// Either a complete breakdown or an error is returned.
func (c *Calculator) CalculateTotalCosts(req CostCalculationRequest, p Parameters) (*DetailedCosts, error) {
	if err := Validate(req, p); err != nil {
		return nil, err
	}

	distanceKm := req.Route.TotalDistance + req.ExtraMileage
	durationMin := req.Route.TotalTime
	v := req.Vehicle

	fuel, err := CalculateFuelCosts(distanceKm, v, p.FuelPrice)
	if err != nil {
		return nil, xerrors.Calculation(StageAggregate, "fuel costs", err)
	}
	refueling, err := CalculateRefuelingCosts(distanceKm, v, p.FuelPrice)
	if err != nil {
		return nil, xerrors.Calculation(StageAggregate, "refueling costs", err)
	}
	vehicle, err := CalculateVehicleCosts(distanceKm, durationMin, v)
	if err != nil {
		return nil, xerrors.Calculation(StageAggregate, "vehicle costs", err)
	}
	driver := CalculateDriverExpenses(durationMin, p, req.Flags.IncludeDriverIncentive)
	tolls := CalculateTolls(req.Route, p, c.corridors)

	distance, err := units.ConvertDistance(distanceKm, units.Kilometer, v.DistanceUnit)
	if err != nil {
		return nil, xerrors.Calculation(StageUnits, "convert trip distance", err)
	}

	included := Included{
		Fuel:    req.Flags.IncludeFuel && !req.Flags.RentalMode,
		Driver:  req.Flags.IncludeMeals,
		Vehicle: true,
		Tolls:   c.tollPolicy == TollsWhenRequested && req.Flags.IncludeTolls,
	}

	var total float64
	if included.Fuel {
		total += fuel.Cost + refueling.Total
	}
	if included.Driver {
		total += driver.Total
	}
	total += vehicle.Total
	if included.Tolls {
		total += tolls.Total
	}

	return &DetailedCosts{
		Distance:     round2(distance),
		DistanceUnit: v.DistanceUnit,
		DurationMin:  durationMin,
		Fuel:         fuel,
		Refueling:    refueling,
		Driver:       driver,
		Vehicle:      vehicle,
		Tolls:        tolls,
		Included:     included,
		Total:        round2(total),
	}, nil
}

// Validate rejects requests the engine cannot price before any arithmetic
// runs.
func Validate(req CostCalculationRequest, p Parameters) error {
	switch {
	case !finite(req.Route.TotalDistance):
		return xerrors.Invalid("route.total_distance", notFinite)
	case !finite(req.Route.TotalTime):
		return xerrors.Invalid("route.total_time", notFinite)
	case !finite(req.ExtraMileage):
		return xerrors.Invalid("extra_mileage", notFinite)
	case req.Route.TotalDistance < 0:
		return xerrors.Invalid("route.total_distance", "must not be negative")
	case req.Route.TotalTime < 0:
		return xerrors.Invalid("route.total_time", "must not be negative")
	case req.ExtraMileage < 0:
		return xerrors.Invalid("extra_mileage", "must not be negative")
	}

	if err := ValidateVehicle(req.Vehicle); err != nil {
		return err
	}
	return ValidateParameters(p)
}

// ValidateParameters rejects negative or non-finite rates.
func ValidateParameters(p Parameters) error {
	rates := []struct {
		field string
		value float64
	}{
		{"fuel_price", p.FuelPrice},
		{"meal_cost_per_day", p.MealCostPerDay},
		{"hotel_cost_per_night", p.HotelCostPerNight},
		{"driver_incentive_per_day", p.DriverIncentivePerDay},
		{"exit_toll", p.ExitToll},
	}
	for _, r := range rates {
		if !finite(r.value) {
			return xerrors.Invalid(r.field, notFinite)
		}
		if r.value < 0 {
			return xerrors.Invalid(r.field, "must not be negative")
		}
	}
	for id, fee := range p.TollFees {
		if !finite(fee) {
			return xerrors.Invalid(fmt.Sprintf("toll_fees[%s]", id), notFinite)
		}
		if fee < 0 {
			return xerrors.Invalid(fmt.Sprintf("toll_fees[%s]", id), "must not be negative")
		}
	}
	return nil
}

// ValidateVehicle checks the fields the engine divides by or converts.
func ValidateVehicle(v Vehicle) error {
	switch {
	case !v.DistanceUnit.Valid():
		return xerrors.Invalid("vehicle.distance_unit", fmt.Sprintf("unsupported unit %q", v.DistanceUnit))
	case !v.FuelEfficiencyUnit.Valid():
		return xerrors.Invalid("vehicle.fuel_efficiency_unit", fmt.Sprintf("unsupported unit %q", v.FuelEfficiencyUnit))
	case !finite(v.FuelEfficiency):
		return xerrors.Invalid("vehicle.fuel_efficiency", notFinite)
	case !finite(v.FuelCapacity):
		return xerrors.Invalid("vehicle.fuel_capacity", notFinite)
	case !finite(v.CostPerDistance):
		return xerrors.Invalid("vehicle.cost_per_distance", notFinite)
	case !finite(v.CostPerDay):
		return xerrors.Invalid("vehicle.cost_per_day", notFinite)
	case v.FuelEfficiency <= 0:
		return xerrors.Invalid("vehicle.fuel_efficiency", "must be greater than zero")
	case v.FuelCapacity <= 0:
		return xerrors.Invalid("vehicle.fuel_capacity", "must be greater than zero")
	case v.CostPerDistance < 0:
		return xerrors.Invalid("vehicle.cost_per_distance", "must not be negative")
	case v.CostPerDay < 0:
		return xerrors.Invalid("vehicle.cost_per_day", "must not be negative")
	case v.PassengerCapacity < 0:
		return xerrors.Invalid("vehicle.passenger_capacity", "must not be negative")
	}
	return nil
}

const notFinite = "must be a finite number"

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
