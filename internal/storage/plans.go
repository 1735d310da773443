package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftline/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetUserPlan returns the user's customized plan, or nil when the user has
// never saved one (the built-in default applies).
func (db *DB) GetUserPlan(ctx context.Context, userID int) (*models.Plan, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT workout_plan FROM user_workout_plans WHERE user_id = $1`,
		userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user plan: %w", err)
	}

	var p models.Plan
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decoding user plan: %w", err)
	}
	return &p, nil
}

// UpsertUserPlan saves the user's plan document, replacing any previous one.
func (db *DB) UpsertUserPlan(ctx context.Context, userID int, p models.Plan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO user_workout_plans (user_id, workout_plan, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
			SET workout_plan = EXCLUDED.workout_plan, updated_at = EXCLUDED.updated_at
	`, userID, doc, time.Now())
	if err != nil {
		return fmt.Errorf("upserting user plan: %w", err)
	}
	return nil
}
