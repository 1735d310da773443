package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/google/uuid"
)

// InsertSession inserts a workout session row at workout start. Returns the
// session id used by subsequent set inserts.
func (db *DB) InsertSession(ctx context.Context, row models.SessionRow) (uuid.UUID, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, workout_type, started_at)
		 VALUES ($1, $2, $3, $4)`,
		row.ID, row.UserID, row.WorkoutType, row.StartedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}
	return row.ID, nil
}

// FinishSession records the end time and total duration of a session.
func (db *DB) FinishSession(ctx context.Context, id uuid.UUID, endedAt time.Time, totalDuration int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET ended_at = $2, total_duration = $3 WHERE id = $1`,
		id, endedAt, totalDuration)
	if err != nil {
		return fmt.Errorf("finishing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing session: no row with id %s", id)
	}
	return nil
}

// QuerySessions retrieves a user's sessions, most recent first.
func (db *DB) QuerySessions(ctx context.Context, userID, limit int) ([]models.SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, workout_type, started_at, ended_at, total_duration
		 FROM workout_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.WorkoutType, &s.StartedAt, &s.EndedAt, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CountSessionsSince counts a user's sessions started at or after the given
// instant. Used for the weekly stat.
func (db *DB) CountSessionsSince(ctx context.Context, userID int, since time.Time) (int64, error) {
	var count int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions WHERE user_id = $1 AND started_at >= $2`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}

// RecentSessionDays returns the distinct calendar days (UTC midnight) with
// at least one session, most recent first. Used for the streak calculation.
func (db *DB) RecentSessionDays(ctx context.Context, userID, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 60
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT date_trunc('day', started_at) AS day
		 FROM workout_sessions
		 WHERE user_id = $1
		 ORDER BY day DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying session days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning session day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
