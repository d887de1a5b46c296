package costs

import "math"

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TripDays returns the billable days for a trip of durationMin minutes.
// Any started day counts and the minimum is one.
func TripDays(durationMin float64) int {
	days := int(math.Ceil(durationMin / MinutesPerDay))
	if days < 1 {
		return 1
	}
	return days
}
