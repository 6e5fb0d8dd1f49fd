package llm

import (
	"fmt"
	"strings"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

const interpretSystemPrompt = `You are a travel planning assistant. The user sends a short message about
their trip. Answer with a single JSON object and nothing else:

{"reply": "<one or two friendly sentences>", "patch": {<changed fields only>}}

The patch object may contain: "pace" (slow|medium|fast), "budget"
(low|medium|high), "interests" (full replacement list of tags),
"daily_routine" ({"wake": minutes, "sleep": minutes, "breakfast"/"lunch"/
"dinner": {"start": minutes, "end": minutes}}), and "preferences" (a map of
free-text likes/dislikes, e.g. {"food": "vegetarian"}). Times are minutes
since midnight. Omit the patch entirely if nothing should change.`

// buildInterpretPrompt renders the current spec context plus the user
// message for the chat model.
func buildInterpretPrompt(message string, spec *trip.TripSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current trip: %s, %s to %s, %d traveler(s), pace %s, budget %s.\n",
		spec.City,
		spec.StartDate.Format("2006-01-02"),
		spec.EndDate.Format("2006-01-02"),
		spec.Travelers, spec.Pace, spec.Budget)
	if len(spec.Interests) > 0 {
		fmt.Fprintf(&b, "Interests (in priority order): %s.\n", strings.Join(spec.Interests, ", "))
	}
	if len(spec.Preferences) > 0 {
		b.WriteString("Known preferences:\n")
		for k, v := range spec.Preferences {
			fmt.Fprintf(&b, "  - %s: %s\n", k, v)
		}
	}
	fmt.Fprintf(&b, "\nUser message: %s\n", message)
	return b.String()
}

const skeletonSchemaHint = `{
  "days": [
    {
      "day_index": 0,
      "theme": "string",
      "blocks": [
        {
          "type": "meal|activity|nightlife|rest",
          "theme": "string",
          "categories": ["string"],
          "window": {"start": 480, "end": 600},
          "duration_min": 90
        }
      ]
    }
  ]
}`

// skeletonSystemPrompt returns the structured-generation instructions.
// The strict variant is sent after a malformed response and forbids any
// text outside the JSON object.
func skeletonSystemPrompt(strict bool) string {
	base := `You are a travel itinerary planner. Produce a day-by-day skeleton as a
JSON object with this exact shape (times are minutes since midnight):

` + skeletonSchemaHint + `

Rules: each day has 2-3 meal blocks; blocks are listed in non-decreasing
window start order; windows stay inside the traveler's waking hours.`
	if strict {
		return base + `

IMPORTANT: your previous answer was not valid against the schema. Respond
with ONLY the JSON object. No prose, no markdown fences, no comments. Every
block needs "type" and "window" with integer "start" and "end".`
	}
	return base
}

// buildSkeletonPrompt renders the spec and requested day range for the
// planning model.
func buildSkeletonPrompt(spec *trip.TripSpec, fromDay, toDay int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", spec.City)
	fmt.Fprintf(&b, "Plan days %d through %d (zero-based) of a %d-day trip starting %s.\n",
		fromDay, toDay, spec.Days(), spec.StartDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Travelers: %d, pace: %s, budget: %s.\n", spec.Travelers, spec.Pace, spec.Budget)
	if len(spec.Interests) > 0 {
		fmt.Fprintf(&b, "Interests in priority order: %s.\n", strings.Join(spec.Interests, ", "))
	}
	r := spec.Routine
	fmt.Fprintf(&b, "Waking hours %s-%s. Meal windows: breakfast %s, lunch %s, dinner %s.\n",
		r.Wake, r.Sleep, r.Breakfast, r.Lunch, r.Dinner)
	if len(spec.Preferences) > 0 {
		b.WriteString("Preferences:\n")
		for k, v := range spec.Preferences {
			fmt.Fprintf(&b, "  - %s: %s\n", k, v)
		}
	}
	b.WriteString("\nKeep first and last days lighter than the middle days, and vary the dominant theme between consecutive days.\n")
	return b.String()
}
