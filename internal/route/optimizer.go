package route

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/traveltime"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

// Config tunes the optimizer.
type Config struct {
	// Mode is the travel mode used for leg estimates.
	Mode traveltime.Mode
}

// DefaultConfig returns the optimizer defaults.
func DefaultConfig() Config {
	return Config{Mode: traveltime.ModeWalking}
}

// Optimizer assigns one POI per block and commits concrete times, day by
// day. Given identical skeleton, candidate lists, and travel-time
// responses, the result is always identical: there is no randomness in
// tie-breaks and no floating point in time arithmetic.
type Optimizer struct {
	travel traveltime.Provider
	cfg    Config
	logger *slog.Logger
}

// New creates an optimizer. The travel provider is expected to degrade
// rather than fail; wrap it in traveltime.NewDegrading.
func New(travel traveltime.Provider, cfg Config, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = traveltime.ModeWalking
	}
	return &Optimizer{travel: travel, cfg: cfg, logger: logger.With("component", "optimizer")}
}

// ResolveDay turns one day skeleton plus its per-block candidate lists
// into a committed ItineraryDay. Blocks are committed greedily in skeleton
// order; the optimizer never reorders blocks, only assigns times.
func (o *Optimizer) ResolveDay(ctx context.Context, skeleton trip.DaySkeleton, candidatesByBlock [][]trip.POICandidate, spec *trip.TripSpec) (trip.ItineraryDay, error) {
	if len(candidatesByBlock) != len(skeleton.Blocks) {
		return trip.ItineraryDay{}, fmt.Errorf("day %d: %d candidate lists for %d blocks",
			skeleton.DayIndex, len(candidatesByBlock), len(skeleton.Blocks))
	}

	day := trip.ItineraryDay{
		DayIndex: skeleton.DayIndex,
		Date:     skeleton.Date,
		Theme:    skeleton.Theme,
	}
	weekday := skeleton.Date.Weekday()
	routine := spec.Routine

	cursor := routine.Wake
	anchor := spec.HotelLocation

	for i, sb := range skeleton.Blocks {
		if cursor >= routine.Sleep {
			day.Truncated = true
			day.Notes = append(day.Notes,
				fmt.Sprintf("dropped %d block(s) past sleep time", len(skeleton.Blocks)-i))
			break
		}

		block := o.commitBlock(ctx, sb, candidatesByBlock[i], cursor, anchor, weekday, routine)
		day.Blocks = append(day.Blocks, block)

		cursor = block.End
		if block.POI != nil {
			loc := block.POI.Location
			anchor = &loc
		}

		if block.End > routine.Sleep {
			if i < len(skeleton.Blocks)-1 {
				day.Truncated = true
				day.Notes = append(day.Notes,
					fmt.Sprintf("dropped %d block(s) past sleep time", len(skeleton.Blocks)-i-1))
			}
			break
		}
	}

	if err := day.Validate(); err != nil {
		return trip.ItineraryDay{}, fmt.Errorf("day %d failed commit validation: %w", skeleton.DayIndex, err)
	}
	return day, nil
}

// commitBlock assigns a place and hard times to one skeleton block. When
// no candidate's opening hours can host the block, it degrades to a free
// block with no POI rather than failing the run.
func (o *Optimizer) commitBlock(ctx context.Context, sb trip.SkeletonBlock, candidates []trip.POICandidate, cursor trip.Minute, anchor *trip.Coordinate, weekday time.Weekday, routine trip.DailyRoutine) trip.ItineraryBlock {
	duration := sb.DurationMin
	if duration <= 0 {
		duration = trip.DefaultDurationMin(sb.Type)
	}

	if sb.Type.NeedsPOI() {
		for _, cand := range candidates {
			leg := o.legTo(ctx, anchor, cand.Location)
			arrival := cursor + trip.Minute(leg.DurationMin)
			start, clamped := pinMealStart(sb, arrival, routine)
			window := trip.TimeWindow{Start: start, End: start + trip.Minute(duration)}

			hours := cand.Hours
			if hours == nil {
				hours = trip.AlwaysOpen()
			}
			if !hours.CoversWindow(weekday, window) {
				continue
			}

			c := cand
			return trip.ItineraryBlock{
				Type:    sb.Type,
				Theme:   sb.Theme,
				Start:   start,
				End:     window.End,
				POI:     &c,
				Travel:  leg,
				Clamped: clamped,
			}
		}
	}

	// Free/rest block: no POI, no travel. Soft window start is honored
	// when it is still ahead of the cursor.
	start := cursor
	if sb.Window.Start > start {
		start = sb.Window.Start
	}
	start, clamped := pinMealStart(sb, start, routine)

	notes := ""
	if sb.Type.NeedsPOI() {
		notes = "no suitable place found; free time"
	} else if sb.Theme != "" {
		notes = sb.Theme
	}
	return trip.ItineraryBlock{
		Type:    sb.Type,
		Theme:   sb.Theme,
		Start:   start,
		End:     start + trip.Minute(duration),
		Clamped: clamped,
		Notes:   notes,
	}
}

// pinMealStart applies the meal-window pin to a tentative start: a meal
// that would begin before its configured window is clamped forward to the
// window start (never to the window end), and the clamp is recorded as a
// soft adjustment visible to the critic.
func pinMealStart(sb trip.SkeletonBlock, start trip.Minute, routine trip.DailyRoutine) (trip.Minute, bool) {
	if sb.Type != trip.BlockMeal {
		return start, false
	}
	window := mealWindowFor(sb, routine)
	if start < window.Start {
		return window.Start, true
	}
	return start, false
}

// mealWindowFor picks the routine meal window a meal block belongs to: the
// window overlapping the block's soft window, or failing that the one with
// the nearest start.
func mealWindowFor(sb trip.SkeletonBlock, routine trip.DailyRoutine) trip.TimeWindow {
	windows := routine.MealWindows()
	for _, w := range windows {
		if w.Overlaps(sb.Window) {
			return w
		}
	}
	best := windows[0]
	bestDist := absMinutes(best.Start - sb.Window.Start)
	for _, w := range windows[1:] {
		if d := absMinutes(w.Start - sb.Window.Start); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}

// legTo queries the travel provider for the leg from the anchor. A nil
// anchor (no previous location and no hotel) yields a zero leg.
func (o *Optimizer) legTo(ctx context.Context, anchor *trip.Coordinate, dest trip.Coordinate) trip.TravelLeg {
	if anchor == nil {
		return trip.TravelLeg{}
	}
	est, err := o.travel.Estimate(ctx, *anchor, dest, o.cfg.Mode)
	if err != nil {
		// Providers are expected to degrade; a hard failure still must
		// not block the run.
		o.logger.Debug("travel estimate unavailable, using zero leg", "error", err)
		return trip.TravelLeg{}
	}
	return trip.TravelLeg{
		DurationMin:    est.DurationMin,
		DistanceMeters: est.DistanceMeters,
		Polyline:       est.Polyline,
	}
}

func absMinutes(m trip.Minute) trip.Minute {
	if m < 0 {
		return -m
	}
	return m
}
