package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/claude/liftline/internal/plan"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// resolvePlan returns the user's saved plan or the built-in default.
func (s *Server) resolvePlan(r *http.Request) (models.Plan, error) {
	userPlan, err := s.db.GetUserPlan(r.Context(), userIDFromContext(r))
	if err != nil {
		return models.Plan{}, err
	}
	return plan.Resolve(userPlan), nil
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.resolvePlan(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPlan(w http.ResponseWriter, r *http.Request) {
	var p models.Plan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	// Validation failures block the save; this is the only error class
	// surfaced to the user synchronously.
	if err := plan.Validate(p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	if err := s.db.UpsertUserPlan(r.Context(), userIDFromContext(r), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTodayPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.resolvePlan(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	day, ok := plan.ForWeekday(p, time.Now().Weekday())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"rest_day": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rest_day": false, "day": day})
}

func (s *Server) handleQuerySets(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	sets, err := s.db.QuerySetsByExercise(r.Context(), userIDFromContext(r), exercise)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}

	deleted, err := s.db.DeleteSet(r.Context(), userIDFromContext(r), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	names, err := s.db.ListExerciseNames(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	sessions, err := s.db.QuerySessions(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionSets(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	sets, err := s.db.QuerySetsBySession(r.Context(), userIDFromContext(r), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetWeeklyStats(r.Context(), userIDFromContext(r), time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// importSet is one entry of a bulk legacy import payload.
type importSet struct {
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	LoggedAt     time.Time `json:"logged_at"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload []importSet
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	uid := userIDFromContext(r)
	rows := make([]models.SetRow, 0, len(payload))
	for _, p := range payload {
		if p.ExerciseName == "" || p.Reps < 1 || p.SetNumber < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "each set needs exercise_name, set_number >= 1 and reps >= 1"})
			return
		}
		loggedAt := p.LoggedAt
		if loggedAt.IsZero() {
			loggedAt = time.Now()
		}
		rows = append(rows, models.SetRow{
			ID:           uuid.New(),
			UserID:       uid,
			ExerciseName: p.ExerciseName,
			SetNumber:    p.SetNumber,
			Weight:       p.Weight,
			Reps:         p.Reps,
			LoggedAt:     loggedAt,
		})
	}

	inserted, err := s.db.InsertSets(r.Context(), rows)
	if err != nil {
		s.log.Error("import failed", "user_id", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": len(payload), "inserted": inserted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseLimit(r *http.Request, fallback int) int {
	l := r.URL.Query().Get("limit")
	if l == "" {
		return fallback
	}
	n, err := strconv.Atoi(l)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
