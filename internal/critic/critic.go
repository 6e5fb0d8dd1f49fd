package critic

import (
	"fmt"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

// Pace-dependent thresholds. A day whose travel load or activity count
// exceeds its pace budget draws an issue.
var (
	travelLoadThresholdMin = map[trip.Pace]int{
		trip.PaceSlow:   60,
		trip.PaceMedium: 90,
		trip.PaceFast:   150,
	}
	maxActivities = map[trip.Pace]int{
		trip.PaceSlow:   2,
		trip.PaceMedium: 3,
		trip.PaceFast:   5,
	}
)

// Config holds critique policy flags.
type Config struct {
	// StrictMeals escalates the missing-meal warning to an error on days
	// the optimizer truncated, where the dropped block may have been a
	// required meal.
	StrictMeals bool
}

// Rule is one independent critique check. Rules are additive: each
// produces zero or more issues, and the final issue set does not depend on
// evaluation order.
type Rule func(days []trip.ItineraryDay, spec *trip.TripSpec, cfg Config) []trip.CritiqueIssue

// Rules returns the standard rule set.
func Rules() []Rule {
	return []Rule{
		mealCountRule,
		openingHoursRule,
		travelLoadRule,
		activityCountRule,
		truncationRule,
	}
}

// Critic runs rule checks over a committed itinerary. The pass is pure:
// no side effects, no collaborator calls.
type Critic struct {
	cfg   Config
	rules []Rule
}

// New creates a critic with the standard rule set.
func New(cfg Config) *Critic {
	return &Critic{cfg: cfg, rules: Rules()}
}

// Critique evaluates every rule against the itinerary and returns the
// combined issue list. Issues are generated fresh each pass.
func (c *Critic) Critique(days []trip.ItineraryDay, spec *trip.TripSpec) []trip.CritiqueIssue {
	issues := make([]trip.CritiqueIssue, 0)
	for _, rule := range c.rules {
		issues = append(issues, rule(days, spec, c.cfg)...)
	}
	return issues
}

func mealCountRule(days []trip.ItineraryDay, _ *trip.TripSpec, cfg Config) []trip.CritiqueIssue {
	var issues []trip.CritiqueIssue
	for _, d := range days {
		n := d.MealCount()
		if n >= 2 {
			continue
		}
		severity := trip.SeverityWarning
		if cfg.StrictMeals && d.Truncated {
			severity = trip.SeverityError
		}
		issues = append(issues, trip.CritiqueIssue{
			Severity: severity,
			Scope:    trip.ScopeDay,
			Kind:     trip.IssueTooFewMeals,
			Message:  fmt.Sprintf("day %d has only %d meal block(s)", d.DayIndex+1, n),
			DayIndex: d.DayIndex,
		})
	}
	return issues
}

func openingHoursRule(days []trip.ItineraryDay, _ *trip.TripSpec, _ Config) []trip.CritiqueIssue {
	var issues []trip.CritiqueIssue
	for _, d := range days {
		weekday := d.Date.Weekday()
		for i, b := range d.Blocks {
			if b.POI == nil || b.POI.Hours == nil {
				continue
			}
			if b.POI.Hours.CoversWindow(weekday, trip.TimeWindow{Start: b.Start, End: b.End}) {
				continue
			}
			issues = append(issues, trip.CritiqueIssue{
				Severity: trip.SeverityError,
				Scope:    trip.ScopeBlock,
				Kind:     trip.IssueOutsideHours,
				Message: fmt.Sprintf("day %d: %s is not open for %s-%s",
					d.DayIndex+1, b.POI.Name, b.Start, b.End),
				DayIndex:   d.DayIndex,
				BlockIndex: i,
			})
		}
	}
	return issues
}

func travelLoadRule(days []trip.ItineraryDay, spec *trip.TripSpec, _ Config) []trip.CritiqueIssue {
	threshold, ok := travelLoadThresholdMin[spec.Pace]
	if !ok {
		threshold = travelLoadThresholdMin[trip.PaceMedium]
	}
	var issues []trip.CritiqueIssue
	for _, d := range days {
		if load := d.TravelMinutes(); load > threshold {
			issues = append(issues, trip.CritiqueIssue{
				Severity: trip.SeverityWarning,
				Scope:    trip.ScopeDay,
				Kind:     trip.IssueTravelOverload,
				Message: fmt.Sprintf("day %d has %d minutes of travel, above the %s-pace budget of %d",
					d.DayIndex+1, load, spec.Pace, threshold),
				DayIndex: d.DayIndex,
			})
		}
	}
	return issues
}

func activityCountRule(days []trip.ItineraryDay, spec *trip.TripSpec, _ Config) []trip.CritiqueIssue {
	limit, ok := maxActivities[spec.Pace]
	if !ok {
		limit = maxActivities[trip.PaceMedium]
	}
	var issues []trip.CritiqueIssue
	for _, d := range days {
		n := 0
		for _, b := range d.Blocks {
			if b.Type == trip.BlockActivity || b.Type == trip.BlockNightlife {
				n++
			}
		}
		if n > limit {
			issues = append(issues, trip.CritiqueIssue{
				Severity: trip.SeverityInfo,
				Scope:    trip.ScopeDay,
				Kind:     trip.IssueTooManyActivities,
				Message: fmt.Sprintf("day %d packs %d activities, above the %s-pace maximum of %d",
					d.DayIndex+1, n, spec.Pace, limit),
				DayIndex: d.DayIndex,
			})
		}
	}
	return issues
}

func truncationRule(days []trip.ItineraryDay, _ *trip.TripSpec, _ Config) []trip.CritiqueIssue {
	var issues []trip.CritiqueIssue
	for _, d := range days {
		if d.Truncated {
			issues = append(issues, trip.CritiqueIssue{
				Severity: trip.SeverityWarning,
				Scope:    trip.ScopeDay,
				Kind:     trip.IssueDayTruncated,
				Message:  fmt.Sprintf("day %d was truncated at sleep time", d.DayIndex+1),
				DayIndex: d.DayIndex,
			})
		}
	}
	return issues
}
