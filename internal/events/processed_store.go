// Package events records which inbound webhook events were already handled so
// redelivered notifications are processed once.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// ProcessedTracker claims an event id. MarkProcessed returns true the first
// time it sees (provider, eventID) within the retention window and false for
// every repeat.
type ProcessedTracker interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresProcessedStore claims event ids in the processed_events table.
// A claim older than ttl may be taken again; a zero ttl keeps claims forever.
type PostgresProcessedStore struct {
	db  pgExecer
	ttl time.Duration
	now func() time.Time
}

func NewPostgresProcessedStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newPostgresProcessedStore(pool, ttl)
}

func newPostgresProcessedStore(db pgExecer, ttl time.Duration) *PostgresProcessedStore {
	if db == nil {
		panic("events: exec required")
	}
	return &PostgresProcessedStore{db: db, ttl: ttl, now: time.Now}
}

var _ ProcessedTracker = (*PostgresProcessedStore)(nil)

const claimProcessedSQL = `
	INSERT INTO processed_events (provider, event_id, processed_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (provider, event_id) DO UPDATE
		SET processed_at = EXCLUDED.processed_at
		WHERE processed_events.processed_at < $4
`

func (s *PostgresProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	now := s.now().UTC()
	ct, err := s.db.Exec(ctx, claimProcessedSQL, provider, eventID, now, s.cutoff(now))
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// Prune deletes claims that fell out of the retention window.
func (s *PostgresProcessedStore) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	ct, err := s.db.Exec(ctx, `DELETE FROM processed_events WHERE processed_at < $1`, s.cutoff(s.now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("events: prune processed: %w", err)
	}
	return ct.RowsAffected(), nil
}

// RunPruner calls Prune every interval until ctx is done.
func (s *PostgresProcessedStore) RunPruner(ctx context.Context, interval time.Duration, logger *logging.Logger) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Prune(ctx)
			if err != nil {
				logger.Warn("failed to prune processed events", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("pruned processed events", "count", n)
			}
		}
	}
}

// cutoff is the oldest claim still inside the window. Without a ttl it is
// the zero time, so no existing claim is ever reclaimed.
func (s *PostgresProcessedStore) cutoff(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(-s.ttl)
}
