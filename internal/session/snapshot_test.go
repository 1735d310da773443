package session

import (
	"testing"
	"time"
)

// TestFormatDuration verifies the M:SS and H:MM:SS rendering with zero
// padding on minutes and seconds.
func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{330, "05:30"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{7325, "2:02:05"},
		{-3, "00:00"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

// TestRemainingSeconds verifies the countdown rounds partial seconds up and
// clamps to zero once the deadline has passed.
func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)

	if got := remainingSeconds(now.Add(60*time.Second), now); got != 60 {
		t.Errorf("full rest = %d, want 60", got)
	}
	if got := remainingSeconds(now.Add(1500*time.Millisecond), now); got != 2 {
		t.Errorf("1.5s left = %d, want 2 (round up)", got)
	}
	if got := remainingSeconds(now, now); got != 0 {
		t.Errorf("at deadline = %d, want 0", got)
	}
	if got := remainingSeconds(now.Add(-10*time.Second), now); got != 0 {
		t.Errorf("past deadline = %d, want 0", got)
	}
}

// TestSnapshotIdle verifies the zero snapshot when no workout is live.
func TestSnapshotIdle(t *testing.T) {
	e, _ := newTestEngine(t, newFakeStore())
	snap := e.Snapshot()
	if snap.Running {
		t.Error("idle engine reports running")
	}
	if snap.SessionID != nil || snap.TotalSets != 0 {
		t.Errorf("idle snapshot not empty: %+v", snap)
	}
}
