package macro

import "github.com/Denosadchiy/travel-buddy-ai/internal/trip"

// minActivityGapMin is the smallest gap between meals worth filling with
// an activity block.
const minActivityGapMin = 60

// heuristicDay builds a deterministic skeleton for one day without the
// generative component: meal blocks at the routine's canonical windows and
// one activity block per remaining waking gap. The pipeline must always be
// able to proceed on this path alone.
func heuristicDay(spec *trip.TripSpec, dayIndex int, theme string) trip.DaySkeleton {
	r := spec.Routine
	waking := trip.TimeWindow{Start: r.Wake, End: r.Sleep}

	activityCategories := spec.Interests
	if len(activityCategories) > 3 {
		activityCategories = activityCategories[:3]
	}

	var blocks []trip.SkeletonBlock
	addMeal := func(w trip.TimeWindow, label string, categories []string) {
		if !waking.Covers(w) {
			return
		}
		blocks = append(blocks, trip.SkeletonBlock{
			Type:        trip.BlockMeal,
			Theme:       label,
			Categories:  categories,
			Window:      w,
			DurationMin: trip.DefaultDurationMin(trip.BlockMeal),
		})
	}
	addActivity := func(start, end trip.Minute) {
		if int(end-start) < minActivityGapMin {
			return
		}
		blocks = append(blocks, trip.SkeletonBlock{
			Type:        trip.BlockActivity,
			Theme:       theme,
			Categories:  activityCategories,
			Window:      trip.TimeWindow{Start: start, End: end},
			DurationMin: trip.DefaultDurationMin(trip.BlockActivity),
		})
	}

	addMeal(r.Breakfast, "Breakfast", []string{"breakfast", "cafe"})
	addActivity(r.Breakfast.End, r.Lunch.Start)
	addMeal(r.Lunch, "Lunch", []string{"restaurant"})
	addActivity(r.Lunch.End, r.Dinner.Start)
	addMeal(r.Dinner, "Dinner", []string{"restaurant"})

	// Evening block after dinner, by pace: fast gets nightlife, slow gets
	// rest, medium gets nightlife only when a comfortable gap remains.
	eveningGap := int(r.Sleep - r.Dinner.End)
	switch {
	case spec.Pace == trip.PaceFast && eveningGap >= minActivityGapMin,
		spec.Pace == trip.PaceMedium && eveningGap >= 90:
		blocks = append(blocks, trip.SkeletonBlock{
			Type:        trip.BlockNightlife,
			Theme:       "Evening out",
			Categories:  []string{"bar", "nightlife"},
			Window:      trip.TimeWindow{Start: r.Dinner.End, End: r.Sleep},
			DurationMin: trip.DefaultDurationMin(trip.BlockNightlife),
		})
	case eveningGap >= minActivityGapMin:
		blocks = append(blocks, trip.SkeletonBlock{
			Type:        trip.BlockRest,
			Theme:       "Wind down",
			Window:      trip.TimeWindow{Start: r.Dinner.End, End: r.Sleep},
			DurationMin: trip.DefaultDurationMin(trip.BlockRest),
		})
	}

	return trip.DaySkeleton{
		DayIndex: dayIndex,
		Date:     spec.DateOfDay(dayIndex),
		Theme:    theme,
		Blocks:   blocks,
	}
}
