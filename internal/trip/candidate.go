package trip

import "time"

// OpeningHours maps a day of week to the open intervals for that day.
// Days without an entry are closed.
type OpeningHours map[time.Weekday][]TimeWindow

// OpenAt reports whether the place is open at the given minute on the
// given weekday.
func (h OpeningHours) OpenAt(day time.Weekday, m Minute) bool {
	for _, w := range h[day] {
		if w.Contains(m) {
			return true
		}
	}
	return false
}

// CoversWindow reports whether a single open interval fully contains the
// given window on the given weekday.
func (h OpeningHours) CoversWindow(day time.Weekday, w TimeWindow) bool {
	for _, open := range h[day] {
		if open.Covers(w) {
			return true
		}
	}
	return false
}

// AlwaysOpen is the opening-hours table for places without listed hours.
func AlwaysOpen() OpeningHours {
	all := TimeWindow{Start: 0, End: MinutesPerDay}
	h := make(OpeningHours, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		h[d] = []TimeWindow{all}
	}
	return h
}

// POICandidate is a ranked, unconfirmed place proposal for one block.
// Candidates are ephemeral: they exist only within a single planning run
// and are never persisted independently.
type POICandidate struct {
	// ID is the catalog-stable source identifier, used as the final
	// deterministic tie-break in ranking.
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Location Coordinate   `json:"location"`
	Rating   float64      `json:"rating"`
	Price    BudgetTier   `json:"price"`
	Hours    OpeningHours `json:"hours,omitempty"`

	// RankScore is the planner's weighted fit score; higher is better.
	// Scores may be floating point, but never drive time arithmetic.
	RankScore float64 `json:"rank_score"`
}
