// Package session implements the live-workout engine: exercise/set
// progression, the wall-clock rest countdown, and best-effort persistence
// of session and set records.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/google/uuid"
)

// RestDuration is the fixed rest period between sets and exercises.
const RestDuration = 60 * time.Second

// pollInterval is how often the rest deadline is checked. Polling against
// an absolute deadline (instead of decrementing a counter per tick) keeps
// the countdown correct when ticks are delayed or missed entirely.
const pollInterval = 500 * time.Millisecond

var (
	ErrNoSession     = errors.New("no active workout session")
	ErrSessionActive = errors.New("a workout session is already active")
)

// Store persists session and set records. Satisfied by *storage.DB.
type Store interface {
	InsertSession(ctx context.Context, row models.SessionRow) (uuid.UUID, error)
	FinishSession(ctx context.Context, id uuid.UUID, endedAt time.Time, totalDuration int) error
	InsertSet(ctx context.Context, row models.SetRow) (uuid.UUID, error)
}

// Direction is a manual navigation request outside the rest overlay.
type Direction int

const (
	Previous Direction = iota
	Next
)

// LoggedSet is an entry in the in-memory list of sets logged this session,
// used for the session summary. It mirrors the persisted row.
type LoggedSet struct {
	ID           uuid.UUID `json:"id"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Engine drives one user's live workout. All state transitions happen under
// the mutex, so every user action and every timer tick applies atomically.
// Persistence never gates a transition: store calls run outside the lock and
// their failures are logged, not retried.
type Engine struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	cue   func() // rest-completion cue, best effort

	mu           sync.Mutex
	running      bool
	userID       int
	day          models.WorkoutDay
	sessionID    *uuid.UUID
	startedAt    time.Time
	exIdx        int
	setNum       int
	resting      bool
	restDeadline time.Time
	transition   bool
	logged       []LoggedSet
}

// New creates an engine for one user.
func New(store Store, log *slog.Logger, userID int) *Engine {
	return &Engine{store: store, log: log, now: time.Now, userID: userID}
}

// SetClock overrides the time source. For tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// SetCue registers a callback fired when a rest countdown completes on its
// own (not when skipped). The SPA maps this to a vibration.
func (e *Engine) SetCue(cue func()) { e.cue = cue }

// Start begins a workout for the given plan day: exercise 0, set 1, timers
// reset. A session row is created; if that fails the workout proceeds with
// no session reference and sets are persisted unattached.
func (e *Engine) Start(ctx context.Context, day models.WorkoutDay) (Snapshot, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return e.Snapshot(), ErrSessionActive
	}
	start := e.now()
	e.running = true
	e.day = day
	e.exIdx = 0
	e.setNum = 1
	e.resting = false
	e.restDeadline = time.Time{}
	e.transition = false
	e.startedAt = start
	e.sessionID = nil
	e.logged = nil
	e.mu.Unlock()

	row := models.SessionRow{
		ID:          uuid.New(),
		UserID:      e.userID,
		WorkoutType: day.Name,
		StartedAt:   start,
	}
	id, err := e.store.InsertSession(ctx, row)
	if err != nil {
		e.log.Error("session create failed, continuing without session record",
			"user_id", e.userID, "workout_type", day.Name, "error", err)
	} else {
		e.mu.Lock()
		if e.running && e.startedAt.Equal(start) {
			e.sessionID = &id
		}
		e.mu.Unlock()
	}
	return e.Snapshot(), nil
}

// Advance is called when the user finishes a working set. It starts the
// rest countdown; set/exercise numbers advance only when the rest completes
// or is skipped. On the last set of the last exercise it is a no-op.
func (e *Engine) Advance() Snapshot {
	e.mu.Lock()
	if e.running && !e.resting {
		ex := e.day.Exercises[e.exIdx]
		switch {
		case e.setNum < ex.Sets:
			e.transition = false
			e.beginRestLocked()
		case e.exIdx < len(e.day.Exercises)-1:
			e.transition = true
			e.beginRestLocked()
		}
	}
	e.mu.Unlock()
	return e.Snapshot()
}

func (e *Engine) beginRestLocked() {
	e.resting = true
	e.restDeadline = e.now().Add(RestDuration)
}

// finishRestLocked applies the deferred progression: next exercise on a
// transition rest, next set otherwise.
func (e *Engine) finishRestLocked() {
	if e.transition {
		e.exIdx++
		e.setNum = 1
		e.transition = false
	} else {
		e.setNum++
	}
	e.resting = false
	e.restDeadline = time.Time{}
}

// Poll checks the rest deadline at the given instant and fires the
// completion transition when it has passed. Returns true when the
// transition fired. A late poll (now well past the deadline) still fires
// exactly once: the resting guard clears on the first hit.
func (e *Engine) Poll(now time.Time) bool {
	e.mu.Lock()
	if !e.running || !e.resting || e.restDeadline.IsZero() || now.Before(e.restDeadline) {
		e.mu.Unlock()
		return false
	}
	e.finishRestLocked()
	cue := e.cue
	e.mu.Unlock()

	if cue != nil {
		cue()
	}
	return true
}

// SkipRest ends the rest period immediately with the same progression as a
// completed countdown. No-op unless resting.
func (e *Engine) SkipRest() Snapshot {
	e.mu.Lock()
	if e.running && e.resting {
		e.finishRestLocked()
	}
	e.mu.Unlock()
	return e.Snapshot()
}

// Navigate manually moves between sets outside the rest overlay.
// Previous steps back one set, or to the last set of the previous exercise.
// Next follows Advance semantics.
func (e *Engine) Navigate(d Direction) Snapshot {
	if d == Next {
		return e.Advance()
	}
	e.mu.Lock()
	if e.running && !e.resting {
		if e.setNum > 1 {
			e.setNum--
		} else if e.exIdx > 0 {
			e.exIdx--
			e.setNum = e.day.Exercises[e.exIdx].Sets
		}
	}
	e.mu.Unlock()
	return e.Snapshot()
}

// LogSet persists one completed set. The set is attributed to the current
// exercise; the recorded set number accounts for deferred advancement
// (during an exercise transition it is the exercise's final set). A failed
// insert is logged and the set is left out of the in-memory list; the
// caller still sees success.
func (e *Engine) LogSet(ctx context.Context, weight float64, reps int) (Snapshot, error) {
	if weight < 0 {
		return e.Snapshot(), fmt.Errorf("weight must not be negative")
	}
	if reps < 1 {
		return e.Snapshot(), fmt.Errorf("reps must be at least 1")
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return e.Snapshot(), ErrNoSession
	}
	ex := e.day.Exercises[e.exIdx]
	setNumber := e.setNum
	if e.transition {
		setNumber = ex.Sets
	} else if e.setNum > 1 {
		setNumber = e.setNum - 1
	}
	row := models.SetRow{
		ID:           uuid.New(),
		UserID:       e.userID,
		SessionID:    e.sessionID,
		ExerciseName: ex.Name,
		SetNumber:    setNumber,
		Weight:       weight,
		Reps:         reps,
		LoggedAt:     e.now(),
	}
	e.mu.Unlock()

	id, err := e.store.InsertSet(ctx, row)
	if err != nil {
		e.log.Error("set insert failed", "user_id", e.userID,
			"exercise", row.ExerciseName, "set_number", row.SetNumber, "error", err)
		return e.Snapshot(), nil
	}

	e.mu.Lock()
	if e.running {
		e.logged = append(e.logged, LoggedSet{
			ID:           id,
			ExerciseName: row.ExerciseName,
			SetNumber:    row.SetNumber,
			Weight:       row.Weight,
			Reps:         row.Reps,
			LoggedAt:     row.LoggedAt,
		})
	}
	e.mu.Unlock()
	return e.Snapshot(), nil
}

// DeleteLogged removes a set from the in-memory session list. Returns false
// when the id is not in the list. The persisted row is deleted separately.
func (e *Engine) DeleteLogged(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.logged {
		if s.ID == id {
			e.logged = append(e.logged[:i], e.logged[i+1:]...)
			return true
		}
	}
	return false
}

// Summary is the result of a finished workout.
type Summary struct {
	WorkoutType     string            `json:"workout_type"`
	Duration        int               `json:"duration"` // seconds
	DurationDisplay string            `json:"duration_display"`
	TotalSets       int               `json:"total_sets"`
	TotalVolume     float64           `json:"total_volume"`
	Sets            []LoggedSet       `json:"sets"`
	PerExercise     []ExerciseSummary `json:"per_exercise"`
}

// ExerciseSummary groups the logged sets of one exercise, in the order the
// exercises were first logged.
type ExerciseSummary struct {
	ExerciseName string  `json:"exercise_name"`
	Sets         int     `json:"sets"`
	Volume       float64 `json:"volume"`
}

// End finalizes the session record (ended_at, total_duration) and clears
// all transient state. State is cleared even when the update fails; the
// failure is only logged.
func (e *Engine) End(ctx context.Context) (Summary, error) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return Summary{}, ErrNoSession
	}
	endedAt := e.now()
	duration := int(endedAt.Sub(e.startedAt) / time.Second)
	id := e.sessionID
	sets := e.logged

	sum := Summary{
		WorkoutType:     e.day.Name,
		Duration:        duration,
		DurationDisplay: FormatDuration(duration),
		TotalSets:       len(sets),
		Sets:            sets,
	}
	byName := make(map[string]int)
	for _, s := range sets {
		sum.TotalVolume += s.Weight * float64(s.Reps)
		i, ok := byName[s.ExerciseName]
		if !ok {
			i = len(sum.PerExercise)
			byName[s.ExerciseName] = i
			sum.PerExercise = append(sum.PerExercise, ExerciseSummary{ExerciseName: s.ExerciseName})
		}
		sum.PerExercise[i].Sets++
		sum.PerExercise[i].Volume += s.Weight * float64(s.Reps)
	}

	e.running = false
	e.resting = false
	e.restDeadline = time.Time{}
	e.transition = false
	e.sessionID = nil
	e.logged = nil
	e.mu.Unlock()

	if id != nil {
		if err := e.store.FinishSession(ctx, *id, endedAt, duration); err != nil {
			e.log.Error("session end update failed", "session_id", *id, "error", err)
		}
	}
	return sum, nil
}

// Run polls the rest deadline until the context is canceled or the workout
// ends. Each tick re-checks the resting guard, so a SkipRest or End racing
// a scheduled tick cannot make the transition fire twice.
func (e *Engine) Run(ctx context.Context) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Poll(e.now())
			if !e.Running() {
				return
			}
		}
	}
}

// Running reports whether a workout is live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}
