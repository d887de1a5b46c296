package costs

// CalculateDriverExpenses prices meals, lodging and the optional incentive
// for the days the driver is away. Lodging is paid for every night but the
// last day.
func CalculateDriverExpenses(durationMin float64, p Parameters, includeIncentive bool) DriverExpenses {
	days := TripDays(durationMin)

	meals := float64(days) * p.MealCostPerDay
	var lodging float64
	if days > 1 {
		lodging = float64(days-1) * p.HotelCostPerNight
	}
	var incentive float64
	if includeIncentive {
		incentive = float64(days) * p.DriverIncentivePerDay
	}

	return DriverExpenses{
		Days:      days,
		Meals:     round2(meals),
		Lodging:   round2(lodging),
		Incentive: round2(incentive),
		Total:     round2(meals + lodging + incentive),
	}
}
