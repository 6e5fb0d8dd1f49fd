package planner

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/critic"
	"github.com/Denosadchiy/travel-buddy-ai/internal/database"
	"github.com/Denosadchiy/travel-buddy-ai/internal/llm"
	"github.com/Denosadchiy/travel-buddy-ai/internal/lock"
	"github.com/Denosadchiy/travel-buddy-ai/internal/macro"
	"github.com/Denosadchiy/travel-buddy-ai/internal/poi"
	"github.com/Denosadchiy/travel-buddy-ai/internal/route"
	"github.com/Denosadchiy/travel-buddy-ai/internal/traveltime"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// testEnv wires the full pipeline against a temp database, a scripted
// generative backend, and the in-process lock.
type testEnv struct {
	db          *database.DB
	trips       database.TripDAO
	itineraries database.ItineraryDAO
	locker      *lock.MemoryLocker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:          db,
		trips:       database.NewTripDAO(db),
		itineraries: database.NewItineraryDAO(db),
		locker:      lock.NewMemoryLocker(),
	}
	env.seedCatalog(t)
	return env
}

func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	dao := database.NewPOIDAO(e.db)
	places := []struct {
		id, category string
		rating       float64
		lat, lng     float64
	}{
		{"cafe-central", "cafe", 4.5, 38.7120, -9.1372},
		{"cafe-river", "cafe", 4.1, 38.7105, -9.1401},
		{"tasca-maria", "restaurant", 4.6, 38.7131, -9.1355},
		{"casa-do-bacalhau", "restaurant", 4.2, 38.7140, -9.1388},
		{"city-museum", "museum", 4.4, 38.7127, -9.1349},
		{"river-gallery", "museum", 4.0, 38.7098, -9.1412},
		{"fado-bar", "bar", 4.3, 38.7112, -9.1380},
	}
	for _, p := range places {
		require.NoError(t, dao.Insert(context.Background(), "Lisbon", &trip.POICandidate{
			ID:       p.id,
			Name:     p.id,
			Category: p.category,
			Location: trip.Coordinate{Lat: p.lat, Lng: p.lng},
			Rating:   p.rating,
			Price:    trip.BudgetMedium,
		}))
	}
}

// orchestrator builds an Orchestrator whose generative responses come from
// the given completer.
func (e *testEnv) orchestrator(completer llm.Completer, cfg Config) *Orchestrator {
	gateway := llm.NewGateway(completer, llm.Config{}, nil)
	return New(
		e.trips,
		e.itineraries,
		macro.New(gateway, macro.DefaultConfig(), nil),
		poi.New(database.NewPOIDAO(e.db), poi.DefaultConfig(), nil),
		route.New(traveltime.NewDegrading(nil, nil), route.DefaultConfig(), nil),
		critic.New(critic.Config{}),
		e.locker,
		cfg,
		nil,
	)
}

func (e *testEnv) createTrip(t *testing.T) *trip.TripSpec {
	t.Helper()
	hotel := trip.Coordinate{Lat: 38.7118, Lng: -9.1370}
	spec := &trip.TripSpec{
		City:          "Lisbon",
		StartDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		Travelers:     2,
		Pace:          trip.PaceMedium,
		Budget:        trip.BudgetMedium,
		Interests:     []string{"history", "food"},
		HotelLocation: &hotel,
		Routine:       trip.DefaultDailyRoutine(),
	}
	require.NoError(t, e.trips.Create(context.Background(), spec))
	return spec
}

func skeletonJSON(dayIndexes ...int) string {
	payload := `{"days": [`
	for i, d := range dayIndexes {
		if i > 0 {
			payload += ","
		}
		payload += `{
			"day_index": ` + strconv.Itoa(d) + `,
			"theme": "Old town on foot",
			"blocks": [
				{"type": "meal", "theme": "Breakfast", "categories": ["cafe"], "window": {"start": 480, "end": 600}},
				{"type": "activity", "theme": "Museums", "categories": ["museum"], "window": {"start": 620, "end": 780}, "duration_min": 120},
				{"type": "meal", "theme": "Lunch", "categories": ["restaurant"], "window": {"start": 780, "end": 900}},
				{"type": "meal", "theme": "Dinner", "categories": ["restaurant"], "window": {"start": 1140, "end": 1260}}
			]
		}`
	}
	return payload + `]}`
}

func TestPlanHappyPath(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)
	completer := llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1))
	o := env.orchestrator(completer, DefaultConfig())

	result, err := o.Plan(context.Background(), spec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, result.Status)
	assert.Equal(t, types.StageDone, result.Stage)
	require.Len(t, result.Days, 2)

	for _, day := range result.Days {
		require.NoError(t, day.Validate(), "committed day honors ordering and travel gaps")
		assert.GreaterOrEqual(t, day.MealCount(), 2)
		for _, b := range day.Blocks {
			if b.Type.NeedsPOI() {
				require.NotNil(t, b.POI, "every place-backed block got a place")
			}
		}
	}

	t.Run("plan is persisted", func(t *testing.T) {
		days, err := env.itineraries.GetItinerary(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Len(t, days, 2)
	})

	t.Run("trip row carries the outcome", func(t *testing.T) {
		record, err := env.trips.GetByID(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusCompleted, record.PlanStatus)
		assert.Equal(t, types.StageDone, record.PlanStage)
		assert.Empty(t, record.FailureReason)
	})

	t.Run("run is on the audit trail", func(t *testing.T) {
		runs, err := env.itineraries.ListRuns(context.Background(), spec.ID)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, types.RunStatusCompleted, runs[0].Status)
	})

	t.Run("lock is released", func(t *testing.T) {
		lease, err := env.locker.Acquire(context.Background(), spec.ID, time.Minute)
		require.NoError(t, err)
		require.NoError(t, env.locker.Release(context.Background(), lease))
	})
}

func TestPlanDeterministicAcrossRuns(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)

	run := func() []trip.ItineraryDay {
		completer := llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1))
		result, err := env.orchestrator(completer, DefaultConfig()).Plan(context.Background(), spec.ID)
		require.NoError(t, err)
		return result.Days
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "identical inputs commit identical plans")
}

func TestPlanTransportFailureExhaustsRetries(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)
	completer := llm.NewScriptedCompleter().Fail(errors.New("connection refused"))
	cfg := DefaultConfig()
	cfg.StageAttempts = 2
	o := env.orchestrator(completer, cfg)

	result, err := o.Plan(context.Background(), spec.ID)
	require.Error(t, err)
	assert.Equal(t, types.PLAN_STAGE_FAILED, types.CodeOf(err))
	assert.Equal(t, types.RunStatusFailed, result.Status)
	assert.Equal(t, types.StageMacroPlanning, result.Stage)
	assert.NotEmpty(t, result.Reason)
	assert.Equal(t, 2, completer.Calls(), "transient failures are retried up to the stage bound")

	t.Run("failure is recorded on the trip", func(t *testing.T) {
		record, err := env.trips.GetByID(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusFailed, record.PlanStatus)
		assert.Equal(t, types.StageMacroPlanning, record.PlanStage)
		assert.NotEmpty(t, record.FailureReason)
	})

	t.Run("no partial itinerary is visible", func(t *testing.T) {
		days, err := env.itineraries.GetItinerary(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}

func TestPlanConflict(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)
	o := env.orchestrator(llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1)), DefaultConfig())

	held, err := env.locker.Acquire(context.Background(), spec.ID, time.Minute)
	require.NoError(t, err)
	defer env.locker.Release(context.Background(), held)

	result, err := o.Plan(context.Background(), spec.ID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, lock.ErrHeld)
	assert.Equal(t, types.PLAN_IN_PROGRESS, types.CodeOf(err))

	t.Run("conflicts leave no trace", func(t *testing.T) {
		runs, err := env.itineraries.ListRuns(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("another trip plans concurrently", func(t *testing.T) {
		other := env.createTrip(t)
		result, err := env.orchestrator(
			llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1)), DefaultConfig(),
		).Plan(context.Background(), other.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusCompleted, result.Status)
	})
}

func TestPlanCancellation(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)
	o := env.orchestrator(llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1)), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Plan(ctx, spec.ID)
	require.Error(t, err)
	assert.Equal(t, types.PLAN_CANCELLED, types.CodeOf(err))
	assert.Equal(t, types.RunStatusCancelled, result.Status)

	t.Run("cancellation is recorded", func(t *testing.T) {
		record, err := env.trips.GetByID(context.Background(), spec.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusCancelled, record.PlanStatus)
	})

	t.Run("lock is free afterwards", func(t *testing.T) {
		lease, err := env.locker.Acquire(context.Background(), spec.ID, time.Minute)
		require.NoError(t, err)
		require.NoError(t, env.locker.Release(context.Background(), lease))
	})
}

func TestPlanUnknownTrip(t *testing.T) {
	env := newTestEnv(t)
	o := env.orchestrator(llm.NewScriptedCompleter(), DefaultConfig())

	result, err := o.Plan(context.Background(), types.NewID())
	require.Error(t, err)
	assert.Equal(t, types.RunStatusFailed, result.Status)
	assert.Equal(t, types.StageLoadingSpec, result.Stage)
}

func TestPlanDay(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createTrip(t)

	full := llm.NewScriptedCompleter().Respond(skeletonJSON(0, 1))
	_, err := env.orchestrator(full, DefaultConfig()).Plan(context.Background(), spec.ID)
	require.NoError(t, err)

	before, err := env.itineraries.GetItinerary(context.Background(), spec.ID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	replan := llm.NewScriptedCompleter().Respond(`{"days": [{
		"day_index": 1,
		"theme": "Slow riverside day",
		"blocks": [
			{"type": "meal", "theme": "Brunch", "categories": ["cafe"], "window": {"start": 480, "end": 600}},
			{"type": "meal", "theme": "Lunch", "categories": ["restaurant"], "window": {"start": 780, "end": 900}},
			{"type": "meal", "theme": "Dinner", "categories": ["restaurant"], "window": {"start": 1140, "end": 1260}},
			{"type": "rest", "theme": "Wind down", "window": {"start": 1260, "end": 1380}}
		]
	}]}`)
	result, err := env.orchestrator(replan, DefaultConfig()).PlanDay(context.Background(), spec.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, result.Status)
	require.Len(t, result.Days, 1)
	assert.Equal(t, 1, result.Days[0].DayIndex)

	after, err := env.itineraries.GetItinerary(context.Background(), spec.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, before[0].Theme, after[0].Theme, "untouched day survives")
	assert.Equal(t, "Slow riverside day", after[1].Theme)

	t.Run("day out of range", func(t *testing.T) {
		result, err := env.orchestrator(replan, DefaultConfig()).PlanDay(context.Background(), spec.ID, 7)
		require.Error(t, err)
		assert.Equal(t, types.RunStatusFailed, result.Status)
		assert.Equal(t, types.StageMacroPlanning, result.Stage)
	})
}
