package storage

import (
	"context"
	"fmt"
	"time"
)

// WeeklyStats is the dashboard summary: sessions this week, the consecutive
// training-day streak, and lifetime totals.
type WeeklyStats struct {
	SessionsThisWeek int64   `json:"sessions_this_week"`
	DayStreak        int     `json:"day_streak"`
	TotalSessions    int64   `json:"total_sessions"`
	TotalSets        int64   `json:"total_sets"`
	TotalVolume      float64 `json:"total_volume"`
}

// GetWeeklyStats computes the dashboard stats as of the given instant.
func (db *DB) GetWeeklyStats(ctx context.Context, userID int, now time.Time) (*WeeklyStats, error) {
	stats := &WeeklyStats{}

	weekStart := StartOfWeek(now)
	count, err := db.CountSessionsSince(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	stats.SessionsThisWeek = count

	days, err := db.RecentSessionDays(ctx, userID, 60)
	if err != nil {
		return nil, err
	}
	stats.DayStreak = ComputeStreak(days, now)

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(weight * reps), 0) FROM workout_sets WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalSets, &stats.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("summing sets: %w", err)
	}

	return stats, nil
}

// StartOfWeek returns Monday 00:00 of the week containing t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0 ... Sunday = 6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// ComputeStreak counts consecutive training days ending today or yesterday,
// given distinct session days sorted most recent first. A gap of more than
// one day from now breaks the streak immediately.
func ComputeStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expect := today
	first := truncateDay(days[0])

	// The streak may end yesterday without being broken (today's workout
	// just hasn't happened yet).
	if first.Before(today) {
		expect = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range days {
		d = truncateDay(d)
		if !d.Equal(expect) {
			break
		}
		streak++
		expect = expect.AddDate(0, 0, -1)
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
