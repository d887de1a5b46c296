package costs

import (
	"errors"
	"math"

	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

var (
	ErrInvalidFuelEfficiency = errors.New("invalid fuel efficiency")
	ErrZeroAutonomy          = errors.New("vehicle autonomy is zero")
)

// CalculateFuelCosts returns the gallons burned over distanceKm and what
// they cost at fuelPrice per gallon.
func CalculateFuelCosts(distanceKm float64, v Vehicle, fuelPrice float64) (FuelCost, error) {
	distance, efficiency, err := tripFigures(distanceKm, v, StageFuel)
	if err != nil {
		return FuelCost{}, err
	}

	consumption := distance / efficiency
	return FuelCost{
		Consumption:  round2(consumption),
		Cost:         round2(consumption * fuelPrice),
		PricePerUnit: fuelPrice,
	}, nil
}

// CalculateRefuelingCosts counts the full-tank refills needed beyond the
// first tank. A trip that fits in one tank needs no stops.
func CalculateRefuelingCosts(distanceKm float64, v Vehicle, fuelPrice float64) (RefuelingCost, error) {
	distance, efficiency, err := tripFigures(distanceKm, v, StageRefueling)
	if err != nil {
		return RefuelingCost{}, err
	}

	autonomy := v.FuelCapacity * efficiency
	if autonomy <= 0 {
		return RefuelingCost{}, xerrors.Calculation(StageRefueling, "fuel capacity must be greater than zero", ErrZeroAutonomy)
	}

	stops := refuelingStops(distance, autonomy)
	costPerStop := v.FuelCapacity * fuelPrice
	return RefuelingCost{
		Autonomy:    round2(autonomy),
		Stops:       stops,
		CostPerStop: round2(costPerStop),
		Total:       round2(float64(stops) * costPerStop),
	}, nil
}

func refuelingStops(distance, autonomy float64) int {
	// Absorb float noise so a distance of exactly one tank stays at zero stops.
	tanks := math.Ceil(distance/autonomy - 1e-9)
	stops := int(tanks) - 1
	if stops < 0 {
		return 0
	}
	return stops
}

// tripFigures converts distanceKm into the vehicle's distance unit and the
// vehicle efficiency into distance per gallon of that unit.
func tripFigures(distanceKm float64, v Vehicle, stage string) (distance, perGallon float64, err error) {
	if v.FuelEfficiency <= 0 {
		return 0, 0, xerrors.Calculation(stage, ErrInvalidFuelEfficiency.Error(), ErrInvalidFuelEfficiency)
	}

	distance, err = units.ConvertDistance(distanceKm, units.Kilometer, v.DistanceUnit)
	if err != nil {
		return 0, 0, xerrors.Calculation(StageUnits, "convert trip distance", err)
	}

	perGallon, err = units.ConvertFuelEfficiency(v.FuelEfficiency, v.FuelEfficiencyUnit, units.PerGallon(v.DistanceUnit))
	if err != nil {
		return 0, 0, xerrors.Calculation(StageUnits, "convert fuel efficiency", err)
	}
	return distance, perGallon, nil
}
