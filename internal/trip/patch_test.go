package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecPatchApplyFieldByField(t *testing.T) {
	spec := validSpec()
	originalCity := spec.City

	pace := PaceFast
	patch := &SpecPatch{Pace: &pace}
	patch.Apply(spec)

	assert.Equal(t, PaceFast, spec.Pace)
	assert.Equal(t, originalCity, spec.City, "unset fields stay untouched")
	assert.Equal(t, []string{"food", "history"}, spec.Interests)
}

func TestSpecPatchInterestsReplaceWholesale(t *testing.T) {
	spec := validSpec()

	patch := &SpecPatch{Interests: []string{"art"}}
	patch.Apply(spec)

	assert.Equal(t, []string{"art"}, spec.Interests)
}

func TestSpecPatchPreferencesMerge(t *testing.T) {
	spec := validSpec()

	(&SpecPatch{Preferences: map[string]string{"likes": "seafood"}}).Apply(spec)
	(&SpecPatch{Preferences: map[string]string{"dislikes": "queues"}}).Apply(spec)
	(&SpecPatch{Preferences: map[string]string{"likes": "pastries"}}).Apply(spec)

	assert.Equal(t, map[string]string{
		"likes":    "pastries",
		"dislikes": "queues",
	}, spec.Preferences, "preferences accumulate key-by-key")
}

func TestSpecPatchRoutinePartial(t *testing.T) {
	spec := validSpec()
	wake := MustClock("07:00")

	patch := &SpecPatch{Routine: &RoutinePatch{Wake: &wake}}
	patch.Apply(spec)

	assert.Equal(t, wake, spec.Routine.Wake)
	assert.Equal(t, DefaultDailyRoutine().Dinner, spec.Routine.Dinner)
}

func TestSpecPatchIsEmpty(t *testing.T) {
	assert.True(t, (&SpecPatch{}).IsEmpty())
	assert.True(t, (*SpecPatch)(nil).IsEmpty())

	city := "Porto"
	assert.False(t, (&SpecPatch{City: &city}).IsEmpty())
}
