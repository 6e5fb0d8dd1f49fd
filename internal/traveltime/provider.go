package traveltime

import (
	"context"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

// Mode is the travel mode for an estimate.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeTransit Mode = "transit"
	ModeDriving Mode = "driving"
)

// Estimate is a travel leg estimate between two points.
type Estimate struct {
	DurationMin    int
	DistanceMeters int

	// Polyline is an opaque route reference from the provider, empty for
	// heuristic estimates.
	Polyline string
}

// Provider is the Travel-Time Provider contract. Implementations should
// degrade rather than fail where possible; callers additionally wrap them
// so that a missing answer never blocks a planning run.
type Provider interface {
	Estimate(ctx context.Context, from, to trip.Coordinate, mode Mode) (Estimate, error)
}
