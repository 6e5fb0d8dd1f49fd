package traveltime

import (
	"context"
	"log/slog"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

// Straight-line speeds in meters per minute, scaled down to account for
// street routing being longer than the crow flies.
var speedMetersPerMin = map[Mode]float64{
	ModeWalking: 60,  // ~4.5 km/h with a routing factor
	ModeTransit: 250, // ~20 km/h door to door
	ModeDriving: 400, // ~30 km/h urban
}

// StaticEstimator computes travel estimates from great-circle distance and
// a per-mode speed. It never fails and needs no network.
type StaticEstimator struct{}

// NewStaticEstimator creates the heuristic estimator.
func NewStaticEstimator() *StaticEstimator {
	return &StaticEstimator{}
}

// Estimate implements Provider.
func (e *StaticEstimator) Estimate(_ context.Context, from, to trip.Coordinate, mode Mode) (Estimate, error) {
	speed, ok := speedMetersPerMin[mode]
	if !ok {
		speed = speedMetersPerMin[ModeWalking]
	}
	meters := trip.DistanceMeters(from, to)
	minutes := int(meters/speed) + 1
	return Estimate{
		DurationMin:    minutes,
		DistanceMeters: int(meters),
	}, nil
}

// Degrading wraps a primary provider and falls back to the static
// estimator on any failure, so a degraded routing backend never blocks a
// planning run.
type Degrading struct {
	primary Provider
	static  *StaticEstimator
	logger  *slog.Logger
}

// NewDegrading wraps primary with static fallback. A nil primary degrades
// immediately.
func NewDegrading(primary Provider, logger *slog.Logger) *Degrading {
	if logger == nil {
		logger = slog.Default()
	}
	return &Degrading{
		primary: primary,
		static:  NewStaticEstimator(),
		logger:  logger.With("component", "traveltime"),
	}
}

// Estimate implements Provider.
func (d *Degrading) Estimate(ctx context.Context, from, to trip.Coordinate, mode Mode) (Estimate, error) {
	if d.primary != nil {
		est, err := d.primary.Estimate(ctx, from, to, mode)
		if err == nil {
			return est, nil
		}
		d.logger.Debug("travel-time provider degraded to static estimate", "error", err)
	}
	return d.static.Estimate(ctx, from, to, mode)
}
