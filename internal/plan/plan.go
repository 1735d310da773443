// Package plan holds the built-in push/pull/legs split, weekday resolution,
// and validation for user-edited plans.
package plan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftline/internal/models"
)

// defaultPlan is the built-in split. Never handed out directly — Default
// returns a deep copy so user edits can't mutate it.
var defaultPlan = models.Plan{
	Days: []models.WorkoutDay{
		{
			ID:   "push",
			Name: "Push Day",
			Exercises: []models.Exercise{
				{Name: "Bench Press", Sets: 4, Reps: "8-10"},
				{Name: "Overhead Press", Sets: 4, Reps: "8-10"},
				{Name: "Incline Dumbbell Press", Sets: 3, Reps: "10-12"},
				{Name: "Lateral Raises", Sets: 3, Reps: "12-15"},
				{Name: "Tricep Pushdowns", Sets: 3, Reps: "12-15"},
				{Name: "Overhead Tricep Extension", Sets: 3, Reps: "12-15"},
			},
		},
		{
			ID:   "pull",
			Name: "Pull Day",
			Exercises: []models.Exercise{
				{Name: "Deadlift", Sets: 4, Reps: "6-8"},
				{Name: "Pull Ups", Sets: 4, Reps: "8-10"},
				{Name: "Barbell Rows", Sets: 4, Reps: "8-10"},
				{Name: "Face Pulls", Sets: 3, Reps: "15-20"},
				{Name: "Barbell Curls", Sets: 3, Reps: "10-12"},
				{Name: "Hammer Curls", Sets: 3, Reps: "10-12"},
			},
		},
		{
			ID:   "legs",
			Name: "Legs Day",
			Exercises: []models.Exercise{
				{Name: "Squats", Sets: 4, Reps: "8-10"},
				{Name: "Romanian Deadlift", Sets: 4, Reps: "10-12"},
				{Name: "Leg Press", Sets: 3, Reps: "12-15"},
				{Name: "Leg Curls", Sets: 3, Reps: "12-15"},
				{Name: "Calf Raises", Sets: 4, Reps: "15-20"},
				{Name: "Leg Extensions", Sets: 3, Reps: "12-15"},
			},
		},
	},
}

// Default returns a deep copy of the built-in plan.
func Default() models.Plan {
	return clone(defaultPlan)
}

func clone(p models.Plan) models.Plan {
	out := models.Plan{Days: make([]models.WorkoutDay, len(p.Days))}
	for i, d := range p.Days {
		out.Days[i] = d
		out.Days[i].Exercises = append([]models.Exercise(nil), d.Exercises...)
	}
	return out
}

// DayIndex maps a weekday to the plan day index: Mon/Thu push (0),
// Tue/Fri pull (1), Wed/Sat legs (2). Sunday is a rest day (-1).
func DayIndex(wd time.Weekday) int {
	switch wd {
	case time.Monday, time.Thursday:
		return 0
	case time.Tuesday, time.Friday:
		return 1
	case time.Wednesday, time.Saturday:
		return 2
	default:
		return -1
	}
}

// ForWeekday returns the plan day for the given weekday, or false on a
// rest day.
func ForWeekday(p models.Plan, wd time.Weekday) (models.WorkoutDay, bool) {
	i := DayIndex(wd)
	if i < 0 || i >= len(p.Days) {
		return models.WorkoutDay{}, false
	}
	return p.Days[i], true
}

// Resolve returns the user's saved plan when one exists, otherwise a copy
// of the default. The stored plan is already validated on save.
func Resolve(userPlan *models.Plan) models.Plan {
	if userPlan != nil {
		return *userPlan
	}
	return Default()
}

// Validate checks a user-edited plan before it is saved: exactly 3 days,
// each with at least one exercise, and per-exercise rep targets that
// tokenize into exactly Sets numeric entries.
func Validate(p models.Plan) error {
	if len(p.Days) != 3 {
		return fmt.Errorf("plan must have exactly 3 workout days, got %d", len(p.Days))
	}
	for _, d := range p.Days {
		if d.ID == "" || d.Name == "" {
			return fmt.Errorf("workout day missing id or name")
		}
		if len(d.Exercises) == 0 {
			return fmt.Errorf("workout day %q has no exercises", d.Name)
		}
		for _, ex := range d.Exercises {
			if err := ValidateExercise(ex); err != nil {
				return fmt.Errorf("day %q: %w", d.Name, err)
			}
		}
	}
	return nil
}

// ValidateExercise checks one edited exercise: non-empty name, sets >= 1,
// and a reps string of exactly Sets dash-separated positive integers.
func ValidateExercise(ex models.Exercise) error {
	if strings.TrimSpace(ex.Name) == "" {
		return fmt.Errorf("exercise name is required")
	}
	if ex.Sets < 1 {
		return fmt.Errorf("exercise %q: sets must be at least 1", ex.Name)
	}
	tokens := strings.Split(ex.Reps, "-")
	if len(tokens) != ex.Sets {
		return fmt.Errorf("exercise %q: reps %q has %d entries, want %d",
			ex.Name, ex.Reps, len(tokens), ex.Sets)
	}
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 1 {
			return fmt.Errorf("exercise %q: rep target %q is not a positive number", ex.Name, tok)
		}
	}
	return nil
}
