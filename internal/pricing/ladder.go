// Package pricing turns a computed operating cost into the ladder of sale
// prices offered to a customer, one per markup tier.
package pricing

import (
	"fmt"
	"math"

	"github.com/ukydev/fleetquote/internal/xerrors"
)

const (
	DefaultRecommendedMarkup   = 15.0
	DefaultLocalRoundingUnit   = 100.0
	DefaultForeignRoundingUnit = 5.0
)

// DefaultMarkups are the markup percentages offered when a tenant has not
// configured its own.
var DefaultMarkups = []float64{10, 15, 20, 25, 30}

// LadderConfig controls how sale prices are generated. Prices are produced
// in the local currency (HNL) and converted to the foreign currency (USD)
// at ExchangeRate local units per foreign unit.
type LadderConfig struct {
	Markups             []float64
	RecommendedMarkup   float64
	ExchangeRate        float64
	LocalRoundingUnit   float64
	ForeignRoundingUnit float64
}

// DefaultLadderConfig returns the standard tiers at exchangeRate.
func DefaultLadderConfig(exchangeRate float64) LadderConfig {
	return LadderConfig{
		Markups:             append([]float64(nil), DefaultMarkups...),
		RecommendedMarkup:   DefaultRecommendedMarkup,
		ExchangeRate:        exchangeRate,
		LocalRoundingUnit:   DefaultLocalRoundingUnit,
		ForeignRoundingUnit: DefaultForeignRoundingUnit,
	}
}

// PricingOption is one rung of the ladder.
type PricingOption struct {
	Markup       float64 `json:"markup" bson:"markup"`
	Cost         float64 `json:"cost" bson:"cost"`
	SalePrice    float64 `json:"sale_price" bson:"sale_price"`
	SalePriceHNL float64 `json:"sale_price_hnl" bson:"sale_price_hnl"`
	SalePriceUSD float64 `json:"sale_price_usd" bson:"sale_price_usd"`
	Recommended  bool    `json:"recommended" bson:"recommended"`
}

// GenerateLadder prices cost at every markup in cfg. Only the first option
// whose markup equals the recommended markup is flagged. Nil or empty
// Markups fall back to DefaultMarkups.
func GenerateLadder(cost float64, cfg LadderConfig) ([]PricingOption, error) {
	if !(cost >= 0) || math.IsInf(cost, 0) {
		return nil, xerrors.Invalid("cost", "must not be negative")
	}
	if !(cfg.ExchangeRate > 0) || math.IsInf(cfg.ExchangeRate, 0) {
		return nil, xerrors.Invalid("exchange_rate", "must be greater than zero")
	}

	markups := cfg.Markups
	if len(markups) == 0 {
		markups = DefaultMarkups
	}
	for i, m := range markups {
		if !(m >= 0) || math.IsInf(m, 0) {
			return nil, xerrors.Invalid(fmt.Sprintf("markups[%d]", i), "must not be negative")
		}
	}

	options := make([]PricingOption, 0, len(markups))
	flagged := false
	for _, m := range markups {
		sale := cost * (1 + m/100)
		opt := PricingOption{
			Markup:       m,
			Cost:         round2(cost),
			SalePrice:    round2(sale),
			SalePriceHNL: RoundLocal(sale, cfg.LocalRoundingUnit),
			SalePriceUSD: RoundForeign(sale, cfg.ExchangeRate, cfg.ForeignRoundingUnit),
		}
		if !flagged && m == cfg.RecommendedMarkup {
			opt.Recommended = true
			flagged = true
		}
		options = append(options, opt)
	}
	return options, nil
}

// RoundLocal rounds a local-currency amount to the nearest unit. A
// non-positive unit rounds to cents.
func RoundLocal(v, unit float64) float64 {
	return roundTo(v, unit)
}

// RoundForeign converts v at rate and rounds to the nearest unit.
func RoundForeign(v, rate, unit float64) float64 {
	if rate <= 0 {
		return 0
	}
	return roundTo(v/rate, unit)
}

// Recommended returns the flagged option of a ladder.
func Recommended(options []PricingOption) (PricingOption, bool) {
	for _, o := range options {
		if o.Recommended {
			return o, true
		}
	}
	return PricingOption{}, false
}

func roundTo(v, unit float64) float64 {
	if unit <= 0 {
		return round2(v)
	}
	return round2(math.Round(v/unit) * unit)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
