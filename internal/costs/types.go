// Package costs computes the operating cost breakdown of a transport quote:
// fuel, refueling stops, driver expenses, vehicle wear and tolls.
//
// Every function here is pure. Inputs are plain values and nothing is
// shared between calls, so a Calculator can serve concurrent requests.
package costs

import "github.com/ukydev/fleetquote/internal/units"

// Calculation stage names carried by CalculationError.
const (
	StageUnits     = "units"
	StageFuel      = "fuel"
	StageRefueling = "refueling"
	StageDriver    = "driver"
	StageVehicle   = "vehicle"
	StageTolls     = "tolls"
	StageAggregate = "aggregate"
)

// MinutesPerDay is the day length used for every days computation.
const MinutesPerDay = 1440

// Vehicle is the slice of a fleet vehicle the engine needs.
type Vehicle struct {
	PassengerCapacity  int                  `json:"passenger_capacity" bson:"passenger_capacity"`
	FuelCapacity       float64              `json:"fuel_capacity" bson:"fuel_capacity"` // gallons
	FuelEfficiency     float64              `json:"fuel_efficiency" bson:"fuel_efficiency"`
	FuelEfficiencyUnit units.EfficiencyUnit `json:"fuel_efficiency_unit" bson:"fuel_efficiency_unit"`
	CostPerDistance    float64              `json:"cost_per_distance" bson:"cost_per_distance"`
	CostPerDay         float64              `json:"cost_per_day" bson:"cost_per_day"`
	DistanceUnit       units.DistanceUnit   `json:"distance_unit" bson:"distance_unit"`
}

// Parameters are the tenant rates applied to a quote.
type Parameters struct {
	FuelPrice             float64            `json:"fuel_price" bson:"fuel_price"` // per gallon
	MealCostPerDay        float64            `json:"meal_cost_per_day" bson:"meal_cost_per_day"`
	HotelCostPerNight     float64            `json:"hotel_cost_per_night" bson:"hotel_cost_per_night"`
	DriverIncentivePerDay float64            `json:"driver_incentive_per_day" bson:"driver_incentive_per_day"`
	TollFees              map[string]float64 `json:"toll_fees,omitempty" bson:"toll_fees,omitempty"`
	ExitToll              float64            `json:"exit_toll" bson:"exit_toll"`
}

// RouteSegment is one leg reported by the routing provider.
type RouteSegment struct {
	From        string  `json:"from" bson:"from"`
	To          string  `json:"to" bson:"to"`
	DistanceKm  float64 `json:"distance_km" bson:"distance_km"`
	DurationMin float64 `json:"duration_min" bson:"duration_min"`
}

// RouteResult describes the full base → origin → destination → base trip.
// TotalDistance is in kilometers and TotalTime in minutes.
type RouteResult struct {
	TotalDistance float64        `json:"total_distance" bson:"total_distance"`
	TotalTime     float64        `json:"total_time" bson:"total_time"`
	Base          string         `json:"base,omitempty" bson:"base,omitempty"`
	Origin        string         `json:"origin" bson:"origin"`
	Destination   string         `json:"destination" bson:"destination"`
	Segments      []RouteSegment `json:"segments,omitempty" bson:"segments,omitempty"`
}

// Flags select which optional components count toward the total.
type Flags struct {
	IncludeFuel            bool `json:"include_fuel" bson:"include_fuel"`
	IncludeMeals           bool `json:"include_meals" bson:"include_meals"`
	IncludeTolls           bool `json:"include_tolls" bson:"include_tolls"`
	IncludeDriverIncentive bool `json:"include_driver_incentive" bson:"include_driver_incentive"`
	// RentalMode quotes a rent-a-car service where the renter pays fuel.
	RentalMode bool `json:"rental_mode" bson:"rental_mode"`
}

// CostCalculationRequest is the input of Calculator.CalculateTotalCosts.
// ExtraMileage is in kilometers and is added to the route distance.
type CostCalculationRequest struct {
	Route        RouteResult `json:"route"`
	Vehicle      Vehicle     `json:"vehicle"`
	Flags        Flags       `json:"flags"`
	ExtraMileage float64     `json:"extra_mileage"`
}

type FuelCost struct {
	Consumption  float64 `json:"consumption" bson:"consumption"` // gallons
	Cost         float64 `json:"cost" bson:"cost"`
	PricePerUnit float64 `json:"price_per_unit" bson:"price_per_unit"`
}

type RefuelingCost struct {
	Autonomy    float64 `json:"autonomy" bson:"autonomy"` // vehicle distance unit
	Stops       int     `json:"stops" bson:"stops"`
	CostPerStop float64 `json:"cost_per_stop" bson:"cost_per_stop"`
	Total       float64 `json:"total" bson:"total"`
}

type DriverExpenses struct {
	Days      int     `json:"days" bson:"days"`
	Meals     float64 `json:"meals" bson:"meals"`
	Lodging   float64 `json:"lodging" bson:"lodging"`
	Incentive float64 `json:"incentive" bson:"incentive"`
	Total     float64 `json:"total" bson:"total"`
}

type VehicleCost struct {
	Days         int     `json:"days" bson:"days"`
	DistanceCost float64 `json:"distance_cost" bson:"distance_cost"`
	DailyCost    float64 `json:"daily_cost" bson:"daily_cost"`
	Total        float64 `json:"total" bson:"total"`
}

// TollSegment is a matched toll corridor on one leg of the trip.
type TollSegment struct {
	CorridorID string  `json:"corridor_id" bson:"corridor_id"`
	From       string  `json:"from" bson:"from"`
	To         string  `json:"to" bson:"to"`
	Amount     float64 `json:"amount" bson:"amount"`
}

type TollCost struct {
	Segments []TollSegment `json:"segments" bson:"segments"`
	ExitToll float64       `json:"exit_toll" bson:"exit_toll"`
	Total    float64       `json:"total" bson:"total"`
}

// Included records which components were summed into DetailedCosts.Total.
type Included struct {
	Fuel    bool `json:"fuel" bson:"fuel"`
	Driver  bool `json:"driver" bson:"driver"`
	Vehicle bool `json:"vehicle" bson:"vehicle"`
	Tolls   bool `json:"tolls" bson:"tolls"`
}

// DetailedCosts is the full breakdown of a quote. Every component is
// populated whether or not it counts toward Total.
type DetailedCosts struct {
	Distance     float64            `json:"distance" bson:"distance"`
	DistanceUnit units.DistanceUnit `json:"distance_unit" bson:"distance_unit"`
	DurationMin  float64            `json:"duration_min" bson:"duration_min"`
	Fuel         FuelCost           `json:"fuel" bson:"fuel"`
	Refueling    RefuelingCost      `json:"refueling" bson:"refueling"`
	Driver       DriverExpenses     `json:"driver" bson:"driver"`
	Vehicle      VehicleCost        `json:"vehicle" bson:"vehicle"`
	Tolls        TollCost           `json:"tolls" bson:"tolls"`
	Included     Included           `json:"included" bson:"included"`
	Total        float64            `json:"total" bson:"total"`
}
