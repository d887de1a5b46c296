// Package routing resolves named places into the driving route a quote is
// priced on.
package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/ukydev/fleetquote/internal/costs"
)

var (
	ErrNoRoute     = errors.New("no route found")
	ErrUnavailable = errors.New("routing provider not configured")
)

// Provider returns the full trip starting and ending at base. An empty base
// makes origin the starting point.
type Provider interface {
	Route(ctx context.Context, base, origin, destination string) (*costs.RouteResult, error)
}

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleProvider answers routes from the Google Maps Directions API.
type GoogleProvider struct {
	client   directionsClient
	region   string
	language string
}

// NewGoogleProvider creates a provider with the given API key. region biases
// geocoding, e.g. "hn".
func NewGoogleProvider(apiKey, region string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client, region: region, language: "es"}, nil
}

// Route requests one driving route through every stop and sums its legs.
// Segment names are the caller's place names so toll matching sees what the
// user typed.
func (p *GoogleProvider) Route(ctx context.Context, base, origin, destination string) (*costs.RouteResult, error) {
	stops := tripStops(base, origin, destination)
	if len(stops) < 3 {
		return nil, fmt.Errorf("origin and destination are required: %w", ErrNoRoute)
	}

	req := &maps.DirectionsRequest{
		Origin:      stops[0],
		Destination: stops[len(stops)-1],
		Waypoints:   stops[1 : len(stops)-1],
		Mode:        maps.TravelModeDriving,
		Region:      p.region,
		Language:    p.language,
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) != len(stops)-1 {
		return nil, ErrNoRoute
	}

	result := &costs.RouteResult{
		Base:        base,
		Origin:      origin,
		Destination: destination,
	}
	var meters int
	var duration time.Duration
	for i, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
		result.Segments = append(result.Segments, costs.RouteSegment{
			From:        stops[i],
			To:          stops[i+1],
			DistanceKm:  float64(leg.Distance.Meters) / 1000,
			DurationMin: leg.Duration.Minutes(),
		})
	}
	result.TotalDistance = float64(meters) / 1000
	result.TotalTime = duration.Minutes()
	return result, nil
}

// tripStops lists base, origin, destination, base with blanks dropped. With
// no base the trip returns to origin.
func tripStops(base, origin, destination string) []string {
	base, origin, destination = strings.TrimSpace(base), strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil
	}
	if base == "" {
		return []string{origin, destination, origin}
	}
	return []string{base, origin, destination, base}
}

// Unavailable is the Provider used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Route(context.Context, string, string, string) (*costs.RouteResult, error) {
	return nil, ErrUnavailable
}
