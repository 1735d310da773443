package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the read-only view of the live workout consumed by the SPA:
// current position, countdowns, and the session summary so far.
type Snapshot struct {
	Running            bool        `json:"running"`
	WorkoutType        string      `json:"workout_type,omitempty"`
	SessionID          *uuid.UUID  `json:"session_id,omitempty"`
	ExerciseIndex      int         `json:"exercise_index"`
	ExerciseCount      int         `json:"exercise_count"`
	ExerciseName       string      `json:"exercise_name,omitempty"`
	ExerciseSets       int         `json:"exercise_sets,omitempty"`
	TargetReps         string      `json:"target_reps,omitempty"`
	SetNumber          int         `json:"set_number"`
	Resting            bool        `json:"resting"`
	ExerciseTransition bool        `json:"exercise_transition"`
	RestRemaining      int         `json:"rest_remaining"` // seconds
	RestDisplay        string      `json:"rest_display,omitempty"`
	Elapsed            int         `json:"elapsed"` // seconds
	ElapsedDisplay     string      `json:"elapsed_display,omitempty"`
	TotalSets          int         `json:"total_sets"`
	TotalVolume        float64     `json:"total_volume"`
	Sets               []LoggedSet `json:"sets,omitempty"`
}

// Snapshot captures the current state at the engine's clock time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return Snapshot{}
	}

	now := e.now()
	snap := Snapshot{
		Running:            true,
		WorkoutType:        e.day.Name,
		SessionID:          e.sessionID,
		ExerciseIndex:      e.exIdx,
		ExerciseCount:      len(e.day.Exercises),
		SetNumber:          e.setNum,
		Resting:            e.resting,
		ExerciseTransition: e.transition,
		Elapsed:            int(now.Sub(e.startedAt) / time.Second),
		TotalSets:          len(e.logged),
		Sets:               e.logged,
	}
	snap.ElapsedDisplay = FormatDuration(snap.Elapsed)

	if e.exIdx < len(e.day.Exercises) {
		ex := e.day.Exercises[e.exIdx]
		snap.ExerciseName = ex.Name
		snap.ExerciseSets = ex.Sets
		snap.TargetReps = ex.Reps
	}

	if e.resting && !e.restDeadline.IsZero() {
		snap.RestRemaining = remainingSeconds(e.restDeadline, now)
		snap.RestDisplay = FormatDuration(snap.RestRemaining)
	}

	for _, s := range e.logged {
		snap.TotalVolume += s.Weight * float64(s.Reps)
	}
	return snap
}

// remainingSeconds is the displayed countdown: the deadline minus now,
// rounded up to whole seconds and clamped to zero.
func remainingSeconds(deadline, now time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return secs
}

// FormatDuration renders seconds as H:MM:SS past the hour mark, M:SS
// (zero-padded) below it.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
