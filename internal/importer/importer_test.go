package importer

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/claude/liftline/internal/models"
)

type captureWriter struct {
	rows []models.SetRow
}

func (c *captureWriter) InsertSets(_ context.Context, rows []models.SetRow) (int64, error) {
	c.rows = append(c.rows, rows...)
	return int64(len(rows)), nil
}

// writeExport creates a legacy export with the given rows.
func writeExport(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE workout_sets (
		exercise_name TEXT,
		set_number    INTEGER,
		weight        REAL,
		reps          INTEGER,
		logged_at     TEXT
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO workout_sets (exercise_name, set_number, weight, reps, logged_at)
			VALUES (?, ?, ?, ?, ?)`, r...)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

// TestReadSets covers the mixed timestamp formats of real exports: the rows
// are stored out of chronological order (and lexical TEXT order disagrees
// with time order across formats), so the reader must sort by parsed time.
func TestReadSets(t *testing.T) {
	path := writeExport(t, [][]any{
		{"Bench Press", 2, 60.0, 7, "2025-03-01 18:03:00"},
		{"Squats", 0, 80.0, 5, "2025-03-02"}, // set number clamped to 1
		{"Bench Press", 1, 60.0, 8, "2025-03-01T18:00:00Z"},
		{"", 1, 10.0, 8, "2025-03-01T18:06:00Z"}, // no name, skipped
		{"Squats", 1, 80.0, 0, "2025-03-02"},     // no reps, skipped
	})

	sets, skipped, err := ReadSets(path, 7)
	if err != nil {
		t.Fatalf("ReadSets: %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(sets) != 3 {
		t.Fatalf("len(sets) = %d, want 3", len(sets))
	}

	first := sets[0]
	if first.UserID != 7 || first.ExerciseName != "Bench Press" || first.Weight != 60 || first.Reps != 8 {
		t.Errorf("unexpected first row: %+v", first)
	}
	if got := first.LoggedAt.Format("2006-01-02T15:04:05Z"); got != "2025-03-01T18:00:00Z" {
		t.Errorf("logged_at = %s", got)
	}
	for i := 1; i < len(sets); i++ {
		if sets[i].LoggedAt.Before(sets[i-1].LoggedAt) {
			t.Errorf("sets[%d] out of order: %v before %v", i, sets[i].LoggedAt, sets[i-1].LoggedAt)
		}
	}
	if last := sets[2]; last.SetNumber != 1 {
		t.Errorf("clamped set number = %d, want 1", last.SetNumber)
	}
}

func TestRunDryRun(t *testing.T) {
	path := writeExport(t, [][]any{
		{"Deadlift", 1, 100.0, 5, "2025-03-01T10:00:00Z"},
	})

	w := &captureWriter{}
	res, err := Run(context.Background(), w, slog.Default(), path, 1, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Read != 1 || res.Inserted != 0 {
		t.Errorf("res = %+v, want read 1 inserted 0", res)
	}
	if len(w.rows) != 0 {
		t.Errorf("dry run wrote %d rows", len(w.rows))
	}
}

func TestRunInserts(t *testing.T) {
	path := writeExport(t, [][]any{
		{"Deadlift", 1, 100.0, 5, "2025-03-01T10:00:00Z"},
		{"Deadlift", 2, 100.0, 5, "2025-03-01T10:05:00Z"},
	})

	w := &captureWriter{}
	res, err := Run(context.Background(), w, slog.Default(), path, 3, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", res.Inserted)
	}
	if len(w.rows) != 2 || w.rows[0].UserID != 3 {
		t.Errorf("unexpected rows: %+v", w.rows)
	}
}
