package trip

import (
	"fmt"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Pace controls how densely days are scheduled.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceMedium Pace = "medium"
	PaceFast   Pace = "fast"
)

// Valid reports whether the pace is a known value.
func (p Pace) Valid() bool {
	switch p {
	case PaceSlow, PaceMedium, PaceFast:
		return true
	}
	return false
}

// BudgetTier is the traveler's spending level. Tiers are ordered; Rank
// gives the ordering used for price-fit penalties.
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// Valid reports whether the tier is a known value.
func (b BudgetTier) Valid() bool {
	switch b {
	case BudgetLow, BudgetMedium, BudgetHigh:
		return true
	}
	return false
}

// Rank returns the ordinal position of the tier, low first.
func (b BudgetTier) Rank() int {
	switch b {
	case BudgetLow:
		return 0
	case BudgetMedium:
		return 1
	case BudgetHigh:
		return 2
	}
	return 1
}

// DailyRoutine holds the traveler's daily rhythm: wake and sleep times and
// the three meal windows, all as minutes-of-day.
type DailyRoutine struct {
	Wake      Minute     `json:"wake"`
	Sleep     Minute     `json:"sleep"`
	Breakfast TimeWindow `json:"breakfast"`
	Lunch     TimeWindow `json:"lunch"`
	Dinner    TimeWindow `json:"dinner"`
}

// DefaultDailyRoutine returns the routine applied when the form omits one:
// wake 08:00, sleep 23:00, meals 08-10 / 13-15 / 19-21.
func DefaultDailyRoutine() DailyRoutine {
	return DailyRoutine{
		Wake:      MustClock("08:00"),
		Sleep:     MustClock("23:00"),
		Breakfast: TimeWindow{Start: MustClock("08:00"), End: MustClock("10:00")},
		Lunch:     TimeWindow{Start: MustClock("13:00"), End: MustClock("15:00")},
		Dinner:    TimeWindow{Start: MustClock("19:00"), End: MustClock("21:00")},
	}
}

// MealWindows returns the three meal windows in chronological order.
func (r DailyRoutine) MealWindows() []TimeWindow {
	return []TimeWindow{r.Breakfast, r.Lunch, r.Dinner}
}

// Validate enforces the routine invariants: wake before sleep, every meal
// window well-formed, inside [wake, sleep], and non-overlapping.
func (r DailyRoutine) Validate() error {
	if !r.Wake.Valid() || !r.Sleep.Valid() {
		return fmt.Errorf("wake and sleep times must be within a day")
	}
	if r.Wake >= r.Sleep {
		return fmt.Errorf("wake time %s must precede sleep time %s", r.Wake, r.Sleep)
	}
	day := TimeWindow{Start: r.Wake, End: r.Sleep}
	meals := r.MealWindows()
	names := []string{"breakfast", "lunch", "dinner"}
	for i, w := range meals {
		if !w.Valid() {
			return fmt.Errorf("%s window %s is invalid", names[i], w)
		}
		if !day.Covers(w) {
			return fmt.Errorf("%s window %s falls outside waking hours %s", names[i], w, day)
		}
	}
	for i := 0; i < len(meals); i++ {
		for j := i + 1; j < len(meals); j++ {
			if meals[i].Overlaps(meals[j]) {
				return fmt.Errorf("%s window overlaps %s window", names[i], names[j])
			}
		}
	}
	return nil
}

// TripSpec is the consolidated, mutable description of trip intent. It is
// created on first form submission and mutated field-by-field by chat
// interpretation patches and direct form edits; it is never wholesale
// replaced while the trip exists.
type TripSpec struct {
	ID        types.ID   `json:"id"`
	City      string     `json:"city"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Travelers int        `json:"travelers"`
	Pace      Pace       `json:"pace"`
	Budget    BudgetTier `json:"budget"`

	// Interests is an ordered set; insertion order is meaningful for
	// ranking weights (earlier interests weigh more).
	Interests []string `json:"interests"`

	Routine       DailyRoutine `json:"daily_routine"`
	HotelLocation *Coordinate  `json:"hotel_location,omitempty"`

	// Preferences accumulates free-text likes/dislikes extracted from chat.
	Preferences map[string]string `json:"preferences,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Days returns the number of itinerary days in the date range, inclusive
// of both endpoints.
func (s *TripSpec) Days() int {
	if s.EndDate.Before(s.StartDate) {
		return 0
	}
	return int(s.EndDate.Sub(s.StartDate).Hours()/24) + 1
}

// DateOfDay returns the calendar date for a zero-based day index.
func (s *TripSpec) DateOfDay(dayIndex int) time.Time {
	return s.StartDate.AddDate(0, 0, dayIndex)
}

// HasInterest reports whether tag is in the interest set, and at which
// position (for insertion-order weighting).
func (s *TripSpec) HasInterest(tag string) (int, bool) {
	for i, t := range s.Interests {
		if t == tag {
			return i, true
		}
	}
	return 0, false
}

// Validate enforces the TripSpec invariants. horizonDays bounds how far
// out a trip may extend; a non-positive horizon disables the check.
func (s *TripSpec) Validate(horizonDays int) error {
	if s.City == "" {
		return types.NewError(types.TRIP_SPEC_INVALID, "destination city is required")
	}
	days := s.Days()
	if days <= 0 {
		return types.NewError(types.TRIP_SPEC_INVALID, "date range is empty")
	}
	if horizonDays > 0 && days > horizonDays {
		return types.NewError(types.TRIP_SPEC_INVALID,
			fmt.Sprintf("trip length %d days exceeds planning horizon of %d days", days, horizonDays))
	}
	if s.Travelers < 1 {
		return types.NewError(types.TRIP_SPEC_INVALID, "traveler count must be at least 1")
	}
	if !s.Pace.Valid() {
		return types.NewError(types.TRIP_SPEC_INVALID, fmt.Sprintf("unknown pace %q", s.Pace))
	}
	if !s.Budget.Valid() {
		return types.NewError(types.TRIP_SPEC_INVALID, fmt.Sprintf("unknown budget tier %q", s.Budget))
	}
	if err := s.Routine.Validate(); err != nil {
		return types.WrapError(types.TRIP_SPEC_INVALID, "invalid daily routine", err)
	}
	if s.HotelLocation != nil && !s.HotelLocation.Valid() {
		return types.NewError(types.TRIP_SPEC_INVALID, "hotel location out of bounds")
	}
	return nil
}
