package traveltime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

var (
	baixa   = trip.Coordinate{Lat: 38.7118, Lng: -9.1370}
	belem   = trip.Coordinate{Lat: 38.6972, Lng: -9.2064} // ~6.2 km from Baixa
	samePts = baixa
)

func TestStaticEstimator(t *testing.T) {
	e := NewStaticEstimator()

	walk, err := e.Estimate(context.Background(), baixa, belem, ModeWalking)
	require.NoError(t, err)
	assert.InDelta(t, 6200, walk.DistanceMeters, 300)
	assert.InDelta(t, 104, walk.DurationMin, 6, "~6.2 km at 60 m/min")

	transit, err := e.Estimate(context.Background(), baixa, belem, ModeTransit)
	require.NoError(t, err)
	assert.Less(t, transit.DurationMin, walk.DurationMin)

	driving, err := e.Estimate(context.Background(), baixa, belem, ModeDriving)
	require.NoError(t, err)
	assert.Less(t, driving.DurationMin, transit.DurationMin)
}

func TestStaticEstimatorZeroDistance(t *testing.T) {
	got, err := NewStaticEstimator().Estimate(context.Background(), baixa, samePts, ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DistanceMeters)
	assert.Equal(t, 1, got.DurationMin, "estimates are never zero minutes")
}

func TestStaticEstimatorUnknownMode(t *testing.T) {
	walk, err := NewStaticEstimator().Estimate(context.Background(), baixa, belem, ModeWalking)
	require.NoError(t, err)

	unknown, err := NewStaticEstimator().Estimate(context.Background(), baixa, belem, Mode("teleport"))
	require.NoError(t, err)
	assert.Equal(t, walk.DurationMin, unknown.DurationMin, "unknown modes fall back to walking speed")
}

type failingProvider struct {
	err   error
	calls int
}

func (f *failingProvider) Estimate(context.Context, trip.Coordinate, trip.Coordinate, Mode) (Estimate, error) {
	f.calls++
	return Estimate{}, f.err
}

type cannedProvider struct{ est Estimate }

func (c *cannedProvider) Estimate(context.Context, trip.Coordinate, trip.Coordinate, Mode) (Estimate, error) {
	return c.est, nil
}

func TestDegradingPrefersPrimary(t *testing.T) {
	primary := &cannedProvider{est: Estimate{DurationMin: 17, DistanceMeters: 5100, Polyline: "abc"}}
	d := NewDegrading(primary, nil)

	got, err := d.Estimate(context.Background(), baixa, belem, ModeTransit)
	require.NoError(t, err)
	assert.Equal(t, primary.est, got)
}

func TestDegradingFallsBackOnError(t *testing.T) {
	primary := &failingProvider{err: errors.New("routing backend unavailable")}
	d := NewDegrading(primary, nil)

	got, err := d.Estimate(context.Background(), baixa, belem, ModeWalking)
	require.NoError(t, err, "a degraded backend never blocks planning")
	assert.Equal(t, 1, primary.calls)
	assert.Positive(t, got.DurationMin)
	assert.Empty(t, got.Polyline, "heuristic estimates carry no route")
}

func TestDegradingNilPrimary(t *testing.T) {
	got, err := NewDegrading(nil, nil).Estimate(context.Background(), baixa, belem, ModeDriving)
	require.NoError(t, err)
	assert.Positive(t, got.DurationMin)
}
