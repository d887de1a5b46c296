// Package units converts trip distances and vehicle fuel efficiencies
// between the units tenants configure for their fleets.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// DistanceUnit is the unit a vehicle or tenant measures distance in.
type DistanceUnit string

// EfficiencyUnit is the unit a vehicle's fuel efficiency is expressed in.
type EfficiencyUnit string

const (
	Kilometer DistanceUnit = "km"
	Mile      DistanceUnit = "mile"

	KmPerLiter     EfficiencyUnit = "kpl"
	KmPerGallon    EfficiencyUnit = "kpg"
	MilesPerLiter  EfficiencyUnit = "mpl"
	MilesPerGallon EfficiencyUnit = "mpg"
)

const (
	KmPerMile       = 1.60934
	LitersPerGallon = 3.78541
	// MPGToKPL converts US miles-per-gallon into km-per-liter.
	MPGToKPL        = 0.425144
)

var (
	ErrUnsupportedUnit   = errors.New("unsupported unit")
	ErrInvalidEfficiency = errors.New("fuel efficiency must be greater than zero")
)

// ParseDistanceUnit accepts "km", "mile" and a few common spellings.
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kms", "kilometer", "kilometers":
		return Kilometer, nil
	case "mile", "miles", "mi":
		return Mile, nil
	default:
		return "", fmt.Errorf("%w: distance unit %q", ErrUnsupportedUnit, s)
	}
}

// ParseEfficiencyUnit accepts kpl, kpg, mpl and mpg in any case.
func ParseEfficiencyUnit(s string) (EfficiencyUnit, error) {
	u := EfficiencyUnit(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: fuel efficiency unit %q", ErrUnsupportedUnit, s)
	}
	return u, nil
}

// Valid reports whether u is a known distance unit.
func (u DistanceUnit) Valid() bool {
	return u == Kilometer || u == Mile
}

// Valid reports whether u is a known efficiency unit.
func (u EfficiencyUnit) Valid() bool {
	switch u {
	case KmPerLiter, KmPerGallon, MilesPerLiter, MilesPerGallon:
		return true
	}
	return false
}

// PerGallon returns the distance-per-gallon efficiency unit matching d.
func PerGallon(d DistanceUnit) EfficiencyUnit {
	if d == Mile {
		return MilesPerGallon
	}
	return KmPerGallon
}

// ConvertDistance converts value between kilometers and miles.
//
// The km to mile direction divides by KmPerMile instead of multiplying by
// 0.621371 so a round trip returns the original value.
func ConvertDistance(value float64, from, to DistanceUnit) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: distance unit %q", ErrUnsupportedUnit, from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("%w: distance unit %q", ErrUnsupportedUnit, to)
	}
	if from == to {
		return value, nil
	}
	if from == Kilometer {
		return value / KmPerMile, nil
	}
	return value * KmPerMile, nil
}

// ConvertFuelEfficiency converts value between efficiency units, using
// km-per-liter as the common pivot.
func ConvertFuelEfficiency(value float64, from, to EfficiencyUnit) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: fuel efficiency unit %q", ErrUnsupportedUnit, from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("%w: fuel efficiency unit %q", ErrUnsupportedUnit, to)
	}
	if value <= 0 {
		return 0, ErrInvalidEfficiency
	}
	if from == to {
		return value, nil
	}
	return fromKPL(toKPL(value, from), to), nil
}

func toKPL(v float64, from EfficiencyUnit) float64 {
	switch from {
	case MilesPerGallon:
		return v * MPGToKPL
	case MilesPerLiter:
		return v * KmPerMile
	case KmPerGallon:
		return v / LitersPerGallon
	default:
		return v
	}
}

func fromKPL(v float64, to EfficiencyUnit) float64 {
	switch to {
	case MilesPerGallon:
		return v / MPGToKPL
	case MilesPerLiter:
		return v / KmPerMile
	case KmPerGallon:
		return v * LitersPerGallon
	default:
		return v
	}
}
