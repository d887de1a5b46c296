package costs

import (
	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// CalculateVehicleCosts charges the vehicle's per-distance rate over the
// trip plus its daily rate for every billable day.
func CalculateVehicleCosts(distanceKm, durationMin float64, v Vehicle) (VehicleCost, error) {
	distance, err := units.ConvertDistance(distanceKm, units.Kilometer, v.DistanceUnit)
	if err != nil {
		return VehicleCost{}, xerrors.Calculation(StageUnits, "convert trip distance", err)
	}

	days := TripDays(durationMin)
	distanceCost := distance * v.CostPerDistance
	dailyCost := float64(days) * v.CostPerDay

	return VehicleCost{
		Days:         days,
		DistanceCost: round2(distanceCost),
		DailyCost:    round2(dailyCost),
		Total:        round2(distanceCost + dailyCost),
	}, nil
}
