package mcp

import (
	"context"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/claude/liftline/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySetsByExercise(ctx context.Context, userID int, exercise string) ([]models.SetRow, error)
	QuerySetsBySession(ctx context.Context, userID int, sessionID uuid.UUID) ([]models.SetRow, error)
	ListExerciseNames(ctx context.Context, userID int) ([]string, error)
	QuerySessions(ctx context.Context, userID, limit int) ([]models.SessionRow, error)
	GetWeeklyStats(ctx context.Context, userID int, now time.Time) (*storage.WeeklyStats, error)
	GetUserPlan(ctx context.Context, userID int) (*models.Plan, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
