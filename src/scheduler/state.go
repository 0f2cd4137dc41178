package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// SQLiteStateStore persists last-fired markers in the scheduler_state
// table so de-duplication survives process restarts.
type SQLiteStateStore struct {
	db *sql.DB
}

func NewSQLiteStateStore(db *sql.DB) *SQLiteStateStore {
	return &SQLiteStateStore{db: db}
}

func (s *SQLiteStateStore) LastFired(ctx context.Context, triggerName string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_fired_key FROM scheduler_state WHERE trigger_name = ?`, triggerName).Scan(&key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read scheduler state for %s: %w", triggerName, err)
	}
	return key, nil
}

func (s *SQLiteStateStore) SetLastFired(ctx context.Context, triggerName, periodKey string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO scheduler_state (trigger_name, last_fired_key, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(trigger_name) DO UPDATE SET
		last_fired_key = excluded.last_fired_key,
		updated_at = excluded.updated_at`,
		triggerName, periodKey, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record scheduler state for %s: %w", triggerName, err)
	}
	return nil
}

// MemoryStateStore keeps last-fired markers in memory. Used by tests and
// as a fallback when no database is configured.
type MemoryStateStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{keys: make(map[string]string)}
}

func (s *MemoryStateStore) LastFired(ctx context.Context, triggerName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[triggerName], nil
}

func (s *MemoryStateStore) SetLastFired(ctx context.Context, triggerName, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[triggerName] = periodKey
	return nil
}
