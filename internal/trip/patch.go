package trip

import "time"

// RoutinePatch is a partial DailyRoutine update. Nil fields are left
// untouched; set fields replace the corresponding routine value.
type RoutinePatch struct {
	Wake      *Minute     `json:"wake,omitempty"`
	Sleep     *Minute     `json:"sleep,omitempty"`
	Breakfast *TimeWindow `json:"breakfast,omitempty"`
	Lunch     *TimeWindow `json:"lunch,omitempty"`
	Dinner    *TimeWindow `json:"dinner,omitempty"`
}

// SpecPatch is a partial TripSpec update produced by form edits or by the
// chat interpretation step. Patches are merged field-by-field; a TripSpec
// is never wholesale replaced.
type SpecPatch struct {
	City          *string           `json:"city,omitempty"`
	StartDate     *time.Time        `json:"start_date,omitempty"`
	EndDate       *time.Time        `json:"end_date,omitempty"`
	Travelers     *int              `json:"travelers,omitempty"`
	Pace          *Pace             `json:"pace,omitempty"`
	Budget        *BudgetTier       `json:"budget,omitempty"`
	Interests     []string          `json:"interests,omitempty"`
	Routine       *RoutinePatch     `json:"daily_routine,omitempty"`
	HotelLocation *Coordinate       `json:"hotel_location,omitempty"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p *SpecPatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.City == nil && p.StartDate == nil && p.EndDate == nil &&
		p.Travelers == nil && p.Pace == nil && p.Budget == nil &&
		p.Interests == nil && p.Routine == nil && p.HotelLocation == nil &&
		len(p.Preferences) == 0
}

// Apply merges the patch into the spec. Interests replace the whole
// ordered set when present; preferences are merged key-by-key so chat
// messages accumulate rather than overwrite each other.
func (p *SpecPatch) Apply(s *TripSpec) {
	if p == nil {
		return
	}
	if p.City != nil {
		s.City = *p.City
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		s.EndDate = *p.EndDate
	}
	if p.Travelers != nil {
		s.Travelers = *p.Travelers
	}
	if p.Pace != nil {
		s.Pace = *p.Pace
	}
	if p.Budget != nil {
		s.Budget = *p.Budget
	}
	if p.Interests != nil {
		s.Interests = append([]string(nil), p.Interests...)
	}
	if p.Routine != nil {
		if p.Routine.Wake != nil {
			s.Routine.Wake = *p.Routine.Wake
		}
		if p.Routine.Sleep != nil {
			s.Routine.Sleep = *p.Routine.Sleep
		}
		if p.Routine.Breakfast != nil {
			s.Routine.Breakfast = *p.Routine.Breakfast
		}
		if p.Routine.Lunch != nil {
			s.Routine.Lunch = *p.Routine.Lunch
		}
		if p.Routine.Dinner != nil {
			s.Routine.Dinner = *p.Routine.Dinner
		}
	}
	if p.HotelLocation != nil {
		loc := *p.HotelLocation
		s.HotelLocation = &loc
	}
	if len(p.Preferences) > 0 {
		if s.Preferences == nil {
			s.Preferences = make(map[string]string, len(p.Preferences))
		}
		for k, v := range p.Preferences {
			s.Preferences[k] = v
		}
	}
}
