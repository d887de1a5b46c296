package costs

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Corridor is a pair of regions between which a toll applies. Regions are
// matched by containment against normalized place names, in either
// direction.
type Corridor struct {
	ID         string  `json:"id"`
	FromRegion string  `json:"from_region"`
	ToRegion   string  `json:"to_region"`
	Amount     float64 `json:"amount"`
}

// DefaultCorridors is the Honduran toll network. Amounts are in lempiras
// and can be overridden per tenant through Parameters.TollFees.
var DefaultCorridors = []Corridor{
	{ID: "sps-tegucigalpa", FromRegion: "san pedro sula", ToRegion: "tegucigalpa", Amount: 180},
	{ID: "sps-tela", FromRegion: "san pedro sula", ToRegion: "tela", Amount: 60},
	{ID: "sps-la-ceiba", FromRegion: "san pedro sula", ToRegion: "la ceiba", Amount: 90},
	{ID: "sps-comayagua", FromRegion: "san pedro sula", ToRegion: "comayagua", Amount: 120},
	{ID: "sps-siguatepeque", FromRegion: "san pedro sula", ToRegion: "siguatepeque", Amount: 90},
	{ID: "sps-puerto-cortes", FromRegion: "san pedro sula", ToRegion: "puerto cortes", Amount: 45},
	{ID: "tegucigalpa-comayagua", FromRegion: "tegucigalpa", ToRegion: "comayagua", Amount: 60},
	{ID: "tegucigalpa-siguatepeque", FromRegion: "tegucigalpa", ToRegion: "siguatepeque", Amount: 90},
}

// CalculateTolls matches each leg of the round trip against corridors and
// sums the fees. The exit toll is charged once when any leg matched.
// Unmatched routes cost nothing.
func CalculateTolls(route RouteResult, p Parameters, corridors []Corridor) TollCost {
	result := TollCost{Segments: []TollSegment{}}

	for _, leg := range tripLegs(route) {
		c, ok := matchCorridor(leg[0], leg[1], corridors)
		if !ok {
			continue
		}
		amount := c.Amount
		if fee, ok := p.TollFees[c.ID]; ok {
			amount = fee
		}
		result.Segments = append(result.Segments, TollSegment{
			CorridorID: c.ID,
			From:       leg[0],
			To:         leg[1],
			Amount:     round2(amount),
		})
		result.Total += amount
	}

	if len(result.Segments) > 0 {
		result.ExitToll = round2(p.ExitToll)
		result.Total += p.ExitToll
	}
	result.Total = round2(result.Total)
	return result
}

// tripLegs returns base → origin → destination → base as from/to pairs,
// skipping blank waypoints and legs that do not move.
func tripLegs(route RouteResult) [][2]string {
	stops := make([]string, 0, 4)
	for _, s := range []string{route.Base, route.Origin, route.Destination, route.Base} {
		if strings.TrimSpace(s) != "" {
			stops = append(stops, s)
		}
	}

	legs := make([][2]string, 0, len(stops))
	for i := 1; i < len(stops); i++ {
		from, to := stops[i-1], stops[i]
		if NormalizePlace(from) == NormalizePlace(to) {
			continue
		}
		legs = append(legs, [2]string{from, to})
	}
	return legs
}

func matchCorridor(from, to string, corridors []Corridor) (Corridor, bool) {
	a, b := NormalizePlace(from), NormalizePlace(to)
	for _, c := range corridors {
		x, y := NormalizePlace(c.FromRegion), NormalizePlace(c.ToRegion)
		if x == "" || y == "" {
			continue
		}
		if (containsRegion(a, x) && containsRegion(b, y)) ||
			(containsRegion(a, y) && containsRegion(b, x)) {
			return c, true
		}
	}
	return Corridor{}, false
}

// containsRegion matches whole words only, so "tela" does not match
// "castelar".
func containsRegion(place, region string) bool {
	return strings.Contains(" "+place+" ", " "+region+" ")
}

// NormalizePlace lower-cases s, strips diacritics and collapses whitespace so
// "San Pedro Sula, Cortés" and "san pedro sula  cortes" compare equal.
func NormalizePlace(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, out)
	return strings.Join(strings.Fields(out), " ")
}
