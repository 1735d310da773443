package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is one exercise template within a workout day. Reps is either a
// range description ("8-10") or a dash-separated list of per-set targets
// ("10-8-8-6") whose count must equal Sets in user-edited plans.
type Exercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

// WorkoutDay is one day template of the split (push, pull or legs).
type WorkoutDay struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Plan is an ordered set of workout day templates mapped to weekdays.
// Sunday has no day (rest).
type Plan struct {
	Days []WorkoutDay `json:"days"`
}

// SessionRow is a persisted workout session. EndedAt and TotalDuration are
// set when the workout ends; a session with a nil EndedAt is in progress
// (or was abandoned).
type SessionRow struct {
	ID            uuid.UUID  `json:"id"`
	UserID        int        `json:"user_id"`
	WorkoutType   string     `json:"workout_type"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	TotalDuration *int       `json:"total_duration,omitempty"` // seconds
}

// SetRow is one logged set. SessionID is nil when the session record could
// not be created at workout start; the set is still persisted.
type SetRow struct {
	ID           uuid.UUID  `json:"id"`
	UserID       int        `json:"user_id"`
	SessionID    *uuid.UUID `json:"session_id,omitempty"`
	ExerciseName string     `json:"exercise_name"`
	SetNumber    int        `json:"set_number"`
	Weight       float64    `json:"weight"`
	Reps         int        `json:"reps"`
	LoggedAt     time.Time  `json:"logged_at"`
}

// Volume returns weight x reps for the set.
func (s SetRow) Volume() float64 {
	return s.Weight * float64(s.Reps)
}
