package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftline/internal/models"
	"github.com/google/uuid"
)

// InsertSet inserts one logged set. SessionID may be nil (session create
// failed at workout start); the set is stored unattached.
func (db *DB) InsertSet(ctx context.Context, row models.SetRow) (uuid.UUID, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sets (id, user_id, session_id, exercise_name, set_number, weight, reps, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.UserID, row.SessionID, row.ExerciseName, row.SetNumber,
		row.Weight, row.Reps, row.LoggedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting set: %w", err)
	}
	return row.ID, nil
}

// InsertSets batch-inserts logged sets (legacy import). Returns count inserted.
func (db *DB) InsertSets(ctx context.Context, rows []models.SetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (id, user_id, session_id, exercise_name, set_number, weight, reps, logged_at) VALUES `
	args := make([]any, 0, len(rows)*8)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.ID, r.UserID, r.SessionID, r.ExerciseName,
			r.SetNumber, r.Weight, r.Reps, r.LoggedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySetsByExercise retrieves a user's sets for one exercise ordered by
// log time, oldest first. Feeds the progress charts.
func (db *DB) QuerySetsByExercise(ctx context.Context, userID int, exercise string) ([]models.SetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, session_id, exercise_name, set_number, weight, reps, logged_at
		 FROM workout_sets
		 WHERE user_id = $1 AND exercise_name = $2
		 ORDER BY logged_at ASC`,
		userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// QuerySetsBySession retrieves all sets of one session in logged order.
func (db *DB) QuerySetsBySession(ctx context.Context, userID int, sessionID uuid.UUID) ([]models.SetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, session_id, exercise_name, set_number, weight, reps, logged_at
		 FROM workout_sets
		 WHERE user_id = $1 AND session_id = $2
		 ORDER BY logged_at ASC`,
		userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// ListExerciseNames returns the distinct exercise names a user has logged
// sets for, alphabetically.
func (db *DB) ListExerciseNames(ctx context.Context, userID int) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT exercise_name FROM workout_sets WHERE user_id = $1 ORDER BY exercise_name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning exercise name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteSet removes a logged set by id. Returns false when no row matched.
func (db *DB) DeleteSet(ctx context.Context, userID int, id uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sets WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting set: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSetRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.SetRow, error) {
	var result []models.SetRow
	for rows.Next() {
		var s models.SetRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.SessionID, &s.ExerciseName,
			&s.SetNumber, &s.Weight, &s.Reps, &s.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
