package trip

import (
	"fmt"
	"time"
)

// TravelLeg is the travel-from-previous-block metadata on an itinerary
// block.
type TravelLeg struct {
	DurationMin    int    `json:"duration_min"`
	DistanceMeters int    `json:"distance_meters,omitempty"`
	Polyline       string `json:"polyline,omitempty"`
}

// ItineraryBlock is a committed, time-resolved block: hard start and end
// times, the chosen place (nil for free/rest blocks), and the travel leg
// from the previous block.
type ItineraryBlock struct {
	Type  BlockType `json:"type"`
	Theme string    `json:"theme,omitempty"`
	Start Minute    `json:"start"`
	End   Minute    `json:"end"`

	POI    *POICandidate `json:"poi,omitempty"`
	Travel TravelLeg     `json:"travel"`

	// Clamped is set when an early meal block's start was pushed forward
	// to its configured window start. The critic sees this soft adjustment.
	Clamped bool `json:"clamped,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// ItineraryDay is one committed day of the plan. Days are superseded, not
// patched: a re-planning run replaces all days for the trip in one
// transaction.
type ItineraryDay struct {
	DayIndex int              `json:"day_index"`
	Date     time.Time        `json:"date"`
	Theme    string           `json:"theme"`
	Blocks   []ItineraryBlock `json:"blocks"`

	// Truncated is set when the optimizer dropped trailing skeleton
	// blocks that would have run past sleep time.
	Truncated bool `json:"truncated,omitempty"`

	Notes []string `json:"notes,omitempty"`
}

// MealCount returns the number of committed meal blocks.
func (d *ItineraryDay) MealCount() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Type == BlockMeal {
			n++
		}
	}
	return n
}

// TravelMinutes returns the day's total travel load.
func (d *ItineraryDay) TravelMinutes() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.Travel.DurationMin
	}
	return n
}

// Validate enforces the commit-time invariant: blocks strictly time-ordered
// with start[i] >= end[i-1] + travel duration, and no overlaps.
func (d *ItineraryDay) Validate() error {
	for i, b := range d.Blocks {
		if b.End <= b.Start {
			return fmt.Errorf("day %d block %d has non-positive span %s-%s",
				d.DayIndex, i, b.Start, b.End)
		}
		if b.Travel.DurationMin < 0 {
			return fmt.Errorf("day %d block %d has negative travel duration", d.DayIndex, i)
		}
		if i > 0 {
			prev := d.Blocks[i-1]
			if b.Start < prev.End+Minute(b.Travel.DurationMin) {
				return fmt.Errorf("day %d block %d starts at %s before %s + %dm travel",
					d.DayIndex, i, b.Start, prev.End, b.Travel.DurationMin)
			}
		}
	}
	return nil
}
