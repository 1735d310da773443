package plan

import (
	"testing"
	"time"

	"github.com/claude/liftline/internal/models"
)

// TestDefaultIsCopy verifies that mutating a returned default plan does not
// leak into subsequent calls.
func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	a.Days[0].Name = "Mutated"
	a.Days[0].Exercises[0].Sets = 99

	b := Default()
	if b.Days[0].Name != "Push Day" {
		t.Errorf("day name = %q, want %q", b.Days[0].Name, "Push Day")
	}
	if b.Days[0].Exercises[0].Sets != 4 {
		t.Errorf("bench sets = %d, want 4", b.Days[0].Exercises[0].Sets)
	}
}

// TestDayIndex verifies the weekday mapping: Mon/Thu push, Tue/Fri pull,
// Wed/Sat legs, Sunday rest.
func TestDayIndex(t *testing.T) {
	cases := []struct {
		wd   time.Weekday
		want int
	}{
		{time.Monday, 0},
		{time.Thursday, 0},
		{time.Tuesday, 1},
		{time.Friday, 1},
		{time.Wednesday, 2},
		{time.Saturday, 2},
		{time.Sunday, -1},
	}
	for _, c := range cases {
		if got := DayIndex(c.wd); got != c.want {
			t.Errorf("DayIndex(%v) = %d, want %d", c.wd, got, c.want)
		}
	}
}

// TestForWeekday verifies rest-day resolution returns false on Sunday and
// the matching day otherwise.
func TestForWeekday(t *testing.T) {
	p := Default()

	if _, ok := ForWeekday(p, time.Sunday); ok {
		t.Error("Sunday should be a rest day")
	}
	day, ok := ForWeekday(p, time.Wednesday)
	if !ok {
		t.Fatal("Wednesday should resolve to a workout day")
	}
	if day.ID != "legs" {
		t.Errorf("Wednesday day = %q, want %q", day.ID, "legs")
	}
}

// TestResolve verifies the user's saved plan wins over the default.
func TestResolve(t *testing.T) {
	if got := Resolve(nil); got.Days[0].Name != "Push Day" {
		t.Errorf("nil override should resolve to default, got %q", got.Days[0].Name)
	}

	custom := Default()
	custom.Days[0].Name = "Chest Day"
	if got := Resolve(&custom); got.Days[0].Name != "Chest Day" {
		t.Errorf("override not used, got %q", got.Days[0].Name)
	}
}

func validEditedPlan() models.Plan {
	day := func(id, name string) models.WorkoutDay {
		return models.WorkoutDay{
			ID:   id,
			Name: name,
			Exercises: []models.Exercise{
				{Name: "Bench Press", Sets: 3, Reps: "10-8-6"},
			},
		}
	}
	return models.Plan{Days: []models.WorkoutDay{day("push", "Push"), day("pull", "Pull"), day("legs", "Legs")}}
}

// TestValidateAcceptsPerSetTargets verifies a well-formed edited plan passes.
func TestValidateAcceptsPerSetTargets(t *testing.T) {
	if err := Validate(validEditedPlan()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestValidateRejects covers the save-blocking validation failures: wrong
// day count, empty exercise list, rep target count mismatch, and
// non-numeric rep targets.
func TestValidateRejects(t *testing.T) {
	tooFew := validEditedPlan()
	tooFew.Days = tooFew.Days[:2]
	if err := Validate(tooFew); err == nil {
		t.Error("plan with 2 days should fail")
	}

	empty := validEditedPlan()
	empty.Days[1].Exercises = nil
	if err := Validate(empty); err == nil {
		t.Error("day with no exercises should fail")
	}

	mismatch := validEditedPlan()
	mismatch.Days[0].Exercises[0] = models.Exercise{Name: "Squats", Sets: 4, Reps: "10-8-6"}
	if err := Validate(mismatch); err == nil {
		t.Error("3 rep targets for 4 sets should fail")
	}

	junk := validEditedPlan()
	junk.Days[0].Exercises[0] = models.Exercise{Name: "Squats", Sets: 2, Reps: "10-heavy"}
	if err := Validate(junk); err == nil {
		t.Error("non-numeric rep target should fail")
	}

	zeroSets := validEditedPlan()
	zeroSets.Days[0].Exercises[0] = models.Exercise{Name: "Squats", Sets: 0, Reps: ""}
	if err := Validate(zeroSets); err == nil {
		t.Error("sets=0 should fail")
	}
}
