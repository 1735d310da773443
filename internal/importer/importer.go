// Package importer reads a legacy SQLite workout export and loads its set
// history into the primary store.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SetWriter receives the imported rows. Satisfied by *storage.DB.
type SetWriter interface {
	InsertSets(ctx context.Context, rows []models.SetRow) (int64, error)
}

// Result summarizes one import run.
type Result struct {
	Read     int
	Skipped  int
	Inserted int64
}

// timeLayouts covers the timestamp formats seen in legacy exports.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReadSets reads all sets from the legacy export at path and maps them to
// rows owned by userID. Rows with no exercise name or non-positive reps are
// counted as skipped, not errors.
func ReadSets(path string, userID int) ([]models.SetRow, int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer db.Close()

	// logged_at is TEXT in mixed formats, so a SQL ORDER BY would sort
	// lexically; rows are sorted after parsing instead.
	rows, err := db.Query(`SELECT exercise_name, set_number, weight, reps, logged_at
		FROM workout_sets`)
	if err != nil {
		return nil, 0, fmt.Errorf("reading export: %w", err)
	}
	defer rows.Close()

	var out []models.SetRow
	skipped := 0
	for rows.Next() {
		var (
			name     string
			setNum   int
			weight   float64
			reps     int
			loggedAt string
		)
		if err := rows.Scan(&name, &setNum, &weight, &reps, &loggedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning export row: %w", err)
		}
		if name == "" || reps < 1 {
			skipped++
			continue
		}
		if setNum < 1 {
			setNum = 1
		}
		out = append(out, models.SetRow{
			ID:           uuid.New(),
			UserID:       userID,
			ExerciseName: name,
			SetNumber:    setNum,
			Weight:       weight,
			Reps:         reps,
			LoggedAt:     parseLoggedAt(loggedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading export: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt.Before(out[j].LoggedAt)
	})
	return out, skipped, nil
}

// parseLoggedAt tries the known export layouts, falling back to now so a
// malformed timestamp never drops the set itself.
func parseLoggedAt(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// Run imports the export at path for userID. With dryRun set, nothing is
// written and Inserted stays zero.
func Run(ctx context.Context, w SetWriter, log *slog.Logger, path string, userID int, dryRun bool) (Result, error) {
	sets, skipped, err := ReadSets(path, userID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Read: len(sets) + skipped, Skipped: skipped}
	if dryRun {
		log.Info("dry run, nothing written", "read", res.Read, "skipped", res.Skipped)
		return res, nil
	}

	inserted, err := w.InsertSets(ctx, sets)
	if err != nil {
		return res, fmt.Errorf("inserting sets: %w", err)
	}
	res.Inserted = inserted
	log.Info("import complete", "read", res.Read, "skipped", res.Skipped, "inserted", res.Inserted)
	return res, nil
}
