package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/claude/liftline/internal/plan"
	"github.com/claude/liftline/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleWorkoutSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.workouts.Engine(userIDFromContext(r)).Snapshot()
	if !snap.Running {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWorkoutStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DayID string `json:"day_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	p, err := s.resolvePlan(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	day, ok := resolveDay(p, req.DayID)
	if !ok {
		if req.DayID != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown plan day: " + req.DayID})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": "today is a rest day"})
		return
	}

	snap, err := s.workouts.Start(r.Context(), userIDFromContext(r), day)
	if errors.Is(err, session.ErrSessionActive) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a workout is already active"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// resolveDay picks an explicitly requested plan day, or today's day from
// the weekday rotation. ok is false on a rest day (or an unknown day id).
func resolveDay(p models.Plan, dayID string) (models.WorkoutDay, bool) {
	if dayID != "" {
		for _, d := range p.Days {
			if d.ID == dayID {
				return d, true
			}
		}
		return models.WorkoutDay{}, false
	}
	return plan.ForWeekday(p, time.Now().Weekday())
}

func (s *Server) handleWorkoutAdvance(w http.ResponseWriter, r *http.Request) {
	e := s.workouts.Engine(userIDFromContext(r))
	if !e.Running() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, e.Advance())
}

func (s *Server) handleWorkoutSkipRest(w http.ResponseWriter, r *http.Request) {
	e := s.workouts.Engine(userIDFromContext(r))
	if !e.Running() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, e.SkipRest())
}

func (s *Server) handleWorkoutLogSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	e := s.workouts.Engine(userIDFromContext(r))
	snap, err := e.LogSet(r.Context(), req.Weight, req.Reps)
	if errors.Is(err, session.ErrNoSession) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWorkoutNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var d session.Direction
	switch req.Direction {
	case "previous":
		d = session.Previous
	case "next":
		d = session.Next
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `direction must be "previous" or "next"`})
		return
	}

	e := s.workouts.Engine(userIDFromContext(r))
	if !e.Running() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, e.Navigate(d))
}

func (s *Server) handleWorkoutEnd(w http.ResponseWriter, r *http.Request) {
	e := s.workouts.Engine(userIDFromContext(r))
	sum, err := e.End(r.Context())
	if errors.Is(err, session.ErrNoSession) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleWorkoutDeleteSet removes a set from the live session list and
// best-effort deletes the persisted row. A failed backend delete is logged
// only; the in-memory list is authoritative for the session summary.
func (s *Server) handleWorkoutDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}

	uid := userIDFromContext(r)
	e := s.workouts.Engine(uid)
	if !e.DeleteLogged(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not in current session"})
		return
	}

	if s.db != nil {
		if _, err := s.db.DeleteSet(r.Context(), uid, id); err != nil {
			s.log.Error("backend set delete failed", "set_id", id, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
