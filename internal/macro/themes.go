package macro

import "github.com/Denosadchiy/travel-buddy-ai/internal/trip"

// fallbackInterests seeds theme allocation for trips without interest tags.
var fallbackInterests = []string{"city highlights", "local food", "culture & history"}

// allocateThemes spreads the trip's interest tags across days so that no
// two consecutive days share a dominant theme. The first and last day are
// biased toward lighter pacing: arrival and departure days get an easier
// framing around the same interest.
func allocateThemes(spec *trip.TripSpec) []string {
	days := spec.Days()
	interests := spec.Interests
	if len(interests) == 0 {
		interests = fallbackInterests
	}

	dominant := make([]string, days)
	idx := 0
	for i := 0; i < days; i++ {
		tag := interests[idx%len(interests)]
		// With a single interest, alternate with an unthemed day rather
		// than repeating the dominant theme back to back.
		if i > 0 && tag == dominant[i-1] {
			tag = "rest & wander"
		}
		dominant[i] = tag
		idx++
	}

	themes := make([]string, days)
	for i, tag := range dominant {
		switch {
		case i == 0 && days > 1:
			themes[i] = "Arrival day: easy " + tag
		case i == days-1 && days > 1:
			themes[i] = "Departure day: relaxed " + tag
		default:
			themes[i] = "A day of " + tag
		}
	}
	return themes
}
