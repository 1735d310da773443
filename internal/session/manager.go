package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/liftline/internal/models"
)

// Manager hands out one engine per user and runs the rest poller for each
// live workout. A user has at most one active session at a time; the
// engine itself rejects a second Start.
type Manager struct {
	store Store
	log   *slog.Logger

	mu      sync.Mutex
	engines map[int]*Engine
}

// NewManager creates a manager backed by the given store.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log, engines: make(map[int]*Engine)}
}

// Engine returns the user's engine, creating it on first use.
func (m *Manager) Engine(userID int) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.engines[userID]
	if !ok {
		e = New(m.store, m.log, userID)
		m.engines[userID] = e
	}
	return e
}

// Start begins a workout for the user and launches the rest poller, which
// exits on its own when the workout ends.
func (m *Manager) Start(ctx context.Context, userID int, day models.WorkoutDay) (Snapshot, error) {
	e := m.Engine(userID)
	snap, err := e.Start(ctx, day)
	if err != nil {
		return snap, err
	}
	go e.Run(context.WithoutCancel(ctx))
	return snap, nil
}
