package trip

import (
	"fmt"
	"time"
)

// BlockType categorizes a skeleton or itinerary block.
type BlockType string

const (
	BlockMeal      BlockType = "meal"
	BlockActivity  BlockType = "activity"
	BlockNightlife BlockType = "nightlife"
	BlockRest      BlockType = "rest"
)

// Valid reports whether the block type is known.
func (t BlockType) Valid() bool {
	switch t {
	case BlockMeal, BlockActivity, BlockNightlife, BlockRest:
		return true
	}
	return false
}

// NeedsPOI reports whether blocks of this type get a concrete place
// assigned. Rest blocks never do.
func (t BlockType) NeedsPOI() bool {
	switch t {
	case BlockMeal, BlockActivity, BlockNightlife:
		return true
	}
	return false
}

// SkeletonBlock is a themed time block within a day skeleton. The window
// is soft: it is advisory ordering input for the optimizer, which commits
// hard times later.
type SkeletonBlock struct {
	Type BlockType `json:"type"`

	// Theme is a free-text label ("street food crawl", "old town walk").
	Theme string `json:"theme,omitempty"`

	// Categories hints the catalog query ("museum", "ramen", "jazz bar").
	Categories []string `json:"categories,omitempty"`

	// Window is the desired soft time window.
	Window TimeWindow `json:"window"`

	// DurationMin is the estimated block length in minutes. Zero means
	// use the per-category default.
	DurationMin int `json:"duration_min,omitempty"`
}

// DaySkeleton is one planned day before places are chosen: a theme plus an
// ordered list of blocks in non-decreasing soft-start order.
type DaySkeleton struct {
	DayIndex int             `json:"day_index"`
	Date     time.Time       `json:"date"`
	Theme    string          `json:"theme"`
	Blocks   []SkeletonBlock `json:"blocks"`
}

// MealCount returns the number of meal blocks in the day.
func (d *DaySkeleton) MealCount() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Type == BlockMeal {
			n++
		}
	}
	return n
}

// shortDayMinutes is the waking span below which a day is considered a
// partial day and the 2-3 meal requirement is relaxed.
const shortDayMinutes = 8 * 60

// Validate enforces the skeleton invariants against the owning spec's
// routine: blocks in non-decreasing soft-start order, known types, valid
// windows, and 2-3 meal blocks for full days.
func (d *DaySkeleton) Validate(routine DailyRoutine) error {
	if len(d.Blocks) == 0 {
		return fmt.Errorf("day %d has no blocks", d.DayIndex)
	}
	for i, b := range d.Blocks {
		if !b.Type.Valid() {
			return fmt.Errorf("day %d block %d has unknown type %q", d.DayIndex, i, b.Type)
		}
		if !b.Window.Valid() {
			return fmt.Errorf("day %d block %d has invalid window %s", d.DayIndex, i, b.Window)
		}
		if b.DurationMin < 0 {
			return fmt.Errorf("day %d block %d has negative duration", d.DayIndex, i)
		}
		if i > 0 && b.Window.Start < d.Blocks[i-1].Window.Start {
			return fmt.Errorf("day %d blocks out of soft-start order at index %d", d.DayIndex, i)
		}
	}
	wakingSpan := int(routine.Sleep - routine.Wake)
	if wakingSpan >= shortDayMinutes {
		if n := d.MealCount(); n < 2 || n > 3 {
			return fmt.Errorf("day %d has %d meal blocks, want 2-3", d.DayIndex, n)
		}
	}
	return nil
}
