package critic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

func criticSpec(pace trip.Pace) *trip.TripSpec {
	return &trip.TripSpec{
		ID:        types.NewID(),
		City:      "Lisbon",
		StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Travelers: 2,
		Pace:      pace,
		Budget:    trip.BudgetMedium,
		Routine:   trip.DefaultDailyRoutine(),
	}
}

// goodDay has two meals, one activity, and modest travel.
func goodDay(index int) trip.ItineraryDay {
	return trip.ItineraryDay{
		DayIndex: index,
		Date:     time.Date(2026, 9, 10+index, 0, 0, 0, 0, time.UTC),
		Blocks: []trip.ItineraryBlock{
			{Type: trip.BlockMeal, Start: 480, End: 555},
			{Type: trip.BlockActivity, Start: 570, End: 690, Travel: trip.TravelLeg{DurationMin: 15}},
			{Type: trip.BlockMeal, Start: 780, End: 855, Travel: trip.TravelLeg{DurationMin: 10}},
		},
	}
}

func issuesOfKind(issues []trip.CritiqueIssue, kind trip.IssueKind) []trip.CritiqueIssue {
	var out []trip.CritiqueIssue
	for _, i := range issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func TestCritiqueCleanItinerary(t *testing.T) {
	c := New(Config{})
	issues := c.Critique([]trip.ItineraryDay{goodDay(0), goodDay(1)}, criticSpec(trip.PaceMedium))
	assert.Empty(t, issues)
}

func TestMealCountRule(t *testing.T) {
	day := goodDay(0)
	day.Blocks = day.Blocks[:2] // one meal left

	issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
	got := issuesOfKind(issues, trip.IssueTooFewMeals)
	require.Len(t, got, 1)
	assert.Equal(t, trip.SeverityWarning, got[0].Severity)
	assert.Equal(t, trip.ScopeDay, got[0].Scope)
	assert.Equal(t, 0, got[0].DayIndex)
	assert.Contains(t, got[0].Message, "only 1 meal")
}

func TestMealCountRuleStrictEscalation(t *testing.T) {
	day := goodDay(0)
	day.Blocks = day.Blocks[:2]
	day.Truncated = true

	t.Run("strict escalates truncated days to error", func(t *testing.T) {
		issues := New(Config{StrictMeals: true}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
		got := issuesOfKind(issues, trip.IssueTooFewMeals)
		require.Len(t, got, 1)
		assert.Equal(t, trip.SeverityError, got[0].Severity)
	})

	t.Run("strict without truncation stays a warning", func(t *testing.T) {
		plain := goodDay(0)
		plain.Blocks = plain.Blocks[:2]
		issues := New(Config{StrictMeals: true}).Critique([]trip.ItineraryDay{plain}, criticSpec(trip.PaceMedium))
		got := issuesOfKind(issues, trip.IssueTooFewMeals)
		require.Len(t, got, 1)
		assert.Equal(t, trip.SeverityWarning, got[0].Severity)
	})
}

func TestOpeningHoursRule(t *testing.T) {
	// 2026-09-10 is a Thursday.
	closedThursday := trip.OpeningHours{
		time.Friday: []trip.TimeWindow{{Start: 480, End: 1200}},
	}
	day := goodDay(0)
	day.Blocks[1].POI = &trip.POICandidate{
		ID: "museum", Name: "City Museum", Hours: closedThursday,
	}

	issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
	got := issuesOfKind(issues, trip.IssueOutsideHours)
	require.Len(t, got, 1)
	assert.Equal(t, trip.SeverityError, got[0].Severity)
	assert.Equal(t, trip.ScopeBlock, got[0].Scope)
	assert.Equal(t, 1, got[0].BlockIndex)
	assert.Contains(t, got[0].Message, "City Museum")

	t.Run("unknown hours draw no issue", func(t *testing.T) {
		day := goodDay(0)
		day.Blocks[1].POI = &trip.POICandidate{ID: "park", Name: "Riverside Park"}
		issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
		assert.Empty(t, issuesOfKind(issues, trip.IssueOutsideHours))
	})
}

func TestTravelLoadRule(t *testing.T) {
	day := goodDay(0)
	day.Blocks[1].Travel.DurationMin = 80 // total 90 with the meal leg

	t.Run("slow pace flags at 60", func(t *testing.T) {
		issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceSlow))
		got := issuesOfKind(issues, trip.IssueTravelOverload)
		require.Len(t, got, 1)
		assert.Equal(t, trip.SeverityWarning, got[0].Severity)
		assert.Contains(t, got[0].Message, "90 minutes")
	})

	t.Run("medium pace tolerates exactly 90", func(t *testing.T) {
		issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
		assert.Empty(t, issuesOfKind(issues, trip.IssueTravelOverload))
	})
}

func TestActivityCountRule(t *testing.T) {
	day := goodDay(0)
	day.Blocks = append(day.Blocks,
		trip.ItineraryBlock{Type: trip.BlockActivity, Start: 900, End: 1000},
		trip.ItineraryBlock{Type: trip.BlockNightlife, Start: 1260, End: 1380},
	)
	// 2 activities + 1 nightlife = 3 against the slow-pace limit of 2.

	issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceSlow))
	got := issuesOfKind(issues, trip.IssueTooManyActivities)
	require.Len(t, got, 1)
	assert.Equal(t, trip.SeverityInfo, got[0].Severity, "packing density is advisory")

	t.Run("fast pace absorbs the same day", func(t *testing.T) {
		issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceFast))
		assert.Empty(t, issuesOfKind(issues, trip.IssueTooManyActivities))
	})
}

func TestTruncationRule(t *testing.T) {
	day := goodDay(0)
	day.Truncated = true

	issues := New(Config{}).Critique([]trip.ItineraryDay{day}, criticSpec(trip.PaceMedium))
	got := issuesOfKind(issues, trip.IssueDayTruncated)
	require.Len(t, got, 1)
	assert.Equal(t, trip.SeverityWarning, got[0].Severity)
	assert.Contains(t, got[0].Message, "day 1")
}

func TestCritiqueRuleOrderIndependence(t *testing.T) {
	// One day drawing issues from four rules at once: a single meal, heavy
	// travel for slow pace, a place closed on the day, and truncation.
	day := goodDay(0)
	day.Blocks = day.Blocks[:2]
	day.Blocks[1].Travel.DurationMin = 95
	day.Blocks[1].POI = &trip.POICandidate{
		ID: "museum", Name: "City Museum",
		Hours: trip.OpeningHours{
			time.Friday: []trip.TimeWindow{{Start: 480, End: 1200}},
		},
	}
	day.Truncated = true
	days := []trip.ItineraryDay{day, goodDay(1)}
	spec := criticSpec(trip.PaceSlow)

	baseline := New(Config{}).Critique(days, spec)
	require.Len(t, baseline, 4)

	standard := Rules()
	orders := [][]int{
		{4, 3, 2, 1, 0},
		{1, 0, 3, 4, 2},
		{2, 4, 0, 1, 3},
	}
	for _, order := range orders {
		permuted := make([]Rule, len(standard))
		for i, j := range order {
			permuted[i] = standard[j]
		}
		c := &Critic{rules: permuted}
		assert.ElementsMatch(t, baseline, c.Critique(days, spec),
			"issue set depends on rule order %v", order)
	}
}

func TestCritiquePerDayIndependence(t *testing.T) {
	bad := goodDay(1)
	bad.Blocks = bad.Blocks[:2]

	issues := New(Config{}).Critique([]trip.ItineraryDay{goodDay(0), bad}, criticSpec(trip.PaceMedium))
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].DayIndex, "issues carry the offending day")
}
