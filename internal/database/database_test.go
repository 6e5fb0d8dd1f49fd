package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func dbSpec(city string) *trip.TripSpec {
	return &trip.TripSpec{
		City:      city,
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Travelers: 2,
		Pace:      trip.PaceMedium,
		Budget:    trip.BudgetMedium,
		Interests: []string{"food", "history"},
		Routine:   trip.DefaultDailyRoutine(),
	}
}

func TestOpenAndMigrate(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Health(context.Background()))

	version, err := NewMigrator(db).CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, db.InitSchema())
		version, err := NewMigrator(db).CurrentVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, version)
	})
}

func TestWithTxRollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx,
			"INSERT INTO trips (id, city, spec) VALUES (?, ?, ?)", "t1", "Lisbon", "{}")
		require.NoError(t, execErr)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&count))
	assert.Zero(t, count, "rolled-back insert is invisible")
}

func TestTripDAO(t *testing.T) {
	db := testDB(t)
	dao := NewTripDAO(db)
	ctx := context.Background()

	spec := dbSpec("Lisbon")
	require.NoError(t, dao.Create(ctx, spec))
	assert.False(t, spec.ID.IsZero(), "create assigns an ID")

	got, err := dao.GetByID(ctx, spec.ID)
	require.NoError(t, err)
	assert.Equal(t, spec.ID, got.ID)
	assert.Equal(t, "Lisbon", got.City)
	assert.Equal(t, []string{"food", "history"}, got.Spec.Interests)
	assert.Equal(t, trip.PaceMedium, got.Spec.Pace)
	assert.Empty(t, got.PlanStatus)

	t.Run("update spec", func(t *testing.T) {
		updated := got.Spec
		updated.Travelers = 4
		require.NoError(t, dao.UpdateSpec(ctx, &updated))

		after, err := dao.GetByID(ctx, spec.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, after.Spec.Travelers)
	})

	t.Run("update plan state", func(t *testing.T) {
		require.NoError(t, dao.UpdatePlanState(ctx, spec.ID,
			types.RunStatusFailed, types.StageMacroPlanning, "model unreachable"))

		after, err := dao.GetByID(ctx, spec.ID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusFailed, after.PlanStatus)
		assert.Equal(t, types.StageMacroPlanning, after.PlanStage)
		assert.Equal(t, "model unreachable", after.FailureReason)
	})

	t.Run("list newest first", func(t *testing.T) {
		second := dbSpec("Porto")
		second.CreatedAt = time.Now().UTC().Add(time.Hour)
		require.NoError(t, dao.Create(ctx, second))

		all, err := dao.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Porto", all[0].City)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := dao.GetByID(ctx, types.NewID())
		assert.Equal(t, types.TRIP_NOT_FOUND, types.CodeOf(err))

		missing := dbSpec("Nowhere")
		missing.ID = types.NewID()
		assert.Equal(t, types.TRIP_NOT_FOUND, types.CodeOf(dao.UpdateSpec(ctx, missing)))
		assert.Equal(t, types.TRIP_NOT_FOUND, types.CodeOf(dao.Delete(ctx, types.NewID())))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, dao.Delete(ctx, spec.ID))
		_, err := dao.GetByID(ctx, spec.ID)
		assert.Equal(t, types.TRIP_NOT_FOUND, types.CodeOf(err))
	})
}

func sampleDay(index int) trip.ItineraryDay {
	return trip.ItineraryDay{
		DayIndex:  index,
		Date:      time.Date(2026, 9, 10+index, 0, 0, 0, 0, time.UTC),
		Theme:     "Old town",
		Truncated: index == 1,
		Blocks: []trip.ItineraryBlock{
			{Type: trip.BlockMeal, Theme: "Breakfast", Start: 480, End: 555,
				POI: &trip.POICandidate{ID: "cafe-1", Name: "Cafe Central", Rating: 4.4}},
			{Type: trip.BlockActivity, Start: 570, End: 690,
				Travel: trip.TravelLeg{DurationMin: 15, DistanceMeters: 900}},
		},
		Notes: []string{"note for day"},
	}
}

func TestItineraryDAOReplaceItinerary(t *testing.T) {
	db := testDB(t)
	trips := NewTripDAO(db)
	dao := NewItineraryDAO(db)
	ctx := context.Background()

	spec := dbSpec("Lisbon")
	require.NoError(t, trips.Create(ctx, spec))

	days := []trip.ItineraryDay{sampleDay(0), sampleDay(1)}
	issues := []trip.CritiqueIssue{
		{Severity: trip.SeverityWarning, Scope: trip.ScopeDay, Kind: trip.IssueDayTruncated,
			Message: "day 2 was truncated at sleep time", DayIndex: 1},
	}
	require.NoError(t, dao.ReplaceItinerary(ctx, spec.ID, days, issues))

	got, err := dao.GetItinerary(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].DayIndex)
	assert.True(t, got[0].Date.Equal(days[0].Date))
	assert.Equal(t, "Old town", got[0].Theme)
	assert.False(t, got[0].Truncated)
	assert.True(t, got[1].Truncated)
	require.Len(t, got[0].Blocks, 2)
	require.NotNil(t, got[0].Blocks[0].POI)
	assert.Equal(t, "Cafe Central", got[0].Blocks[0].POI.Name)
	assert.Equal(t, 15, got[0].Blocks[1].Travel.DurationMin)
	assert.Equal(t, []string{"note for day"}, got[0].Notes)

	critique, err := dao.GetCritique(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, critique, 1)
	assert.Equal(t, trip.IssueDayTruncated, critique[0].Kind)

	t.Run("replan supersedes everything", func(t *testing.T) {
		require.NoError(t, dao.ReplaceItinerary(ctx, spec.ID, []trip.ItineraryDay{sampleDay(0)}, nil))

		got, err := dao.GetItinerary(ctx, spec.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		critique, err := dao.GetCritique(ctx, spec.ID)
		require.NoError(t, err)
		assert.Empty(t, critique)
	})

	t.Run("cascade on trip delete", func(t *testing.T) {
		require.NoError(t, trips.Delete(ctx, spec.ID))
		got, err := dao.GetItinerary(ctx, spec.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestItineraryDAOReplaceDay(t *testing.T) {
	db := testDB(t)
	trips := NewTripDAO(db)
	dao := NewItineraryDAO(db)
	ctx := context.Background()

	spec := dbSpec("Lisbon")
	require.NoError(t, trips.Create(ctx, spec))

	days := []trip.ItineraryDay{sampleDay(0), sampleDay(1)}
	issues := []trip.CritiqueIssue{
		{Severity: trip.SeverityWarning, Scope: trip.ScopeTrip, Kind: trip.IssueTravelOverload,
			Message: "trip-wide concern"},
		{Severity: trip.SeverityWarning, Scope: trip.ScopeDay, Kind: trip.IssueTooFewMeals,
			Message: "day 2 has only 1 meal block(s)", DayIndex: 1},
	}
	require.NoError(t, dao.ReplaceItinerary(ctx, spec.ID, days, issues))

	replacement := sampleDay(1)
	replacement.Theme = "Replanned evening"
	replacement.Truncated = false
	require.NoError(t, dao.ReplaceDay(ctx, spec.ID, replacement, nil))

	got, err := dao.GetItinerary(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Old town", got[0].Theme, "other days untouched")
	assert.Equal(t, "Replanned evening", got[1].Theme)
	assert.False(t, got[1].Truncated)

	critique, err := dao.GetCritique(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, critique, 1)
	assert.Equal(t, trip.ScopeTrip, critique[0].Scope, "trip-scoped issues survive a day replan")
}

func TestItineraryDAORuns(t *testing.T) {
	db := testDB(t)
	trips := NewTripDAO(db)
	dao := NewItineraryDAO(db)
	ctx := context.Background()

	spec := dbSpec("Lisbon")
	require.NoError(t, trips.Create(ctx, spec))

	started := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(40 * time.Second)
	require.NoError(t, dao.RecordRun(ctx, &PlanRun{
		TripID:    spec.ID,
		Status:    types.RunStatusCompleted,
		Stage:     types.StageDone,
		StartedAt: started, FinishedAt: &finished,
	}))
	require.NoError(t, dao.RecordRun(ctx, &PlanRun{
		TripID: spec.ID,
		Status: types.RunStatusFailed,
		Stage:  types.StageMacroPlanning, FailureReason: "model unreachable",
		StartedAt: started.Add(time.Hour),
	}))

	runs, err := dao.ListRuns(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, types.RunStatusFailed, runs[0].Status, "newest first")
	assert.Nil(t, runs[0].FinishedAt)
	assert.Equal(t, types.RunStatusCompleted, runs[1].Status)
	require.NotNil(t, runs[1].FinishedAt)
	assert.True(t, runs[1].FinishedAt.Equal(finished))
}
