// Package postgres persists the audit trail in a single append-only table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	id "fides/pkg/domain"
	audit "fides/pkg/platform/audit"
)

// Store implements audit.Store on PostgreSQL. Rows are insert-only; there is
// no update or delete path.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return New(db), nil
}

// Append inserts an audit event row.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	const q = `
		INSERT INTO audit_events
			(id, category, occurred_at, registry, subject, actor, action, detail, height, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, q,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.Registry,
		event.Subject.String(),
		event.Actor.String(),
		event.Action,
		event.Detail,
		event.Height,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySubject returns all events recorded for a subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject id.Identity) ([]audit.Event, error) {
	const q = `
		SELECT category, occurred_at, registry, subject, actor, action, detail, height, request_id
		FROM audit_events
		WHERE subject = $1
		ORDER BY occurred_at ASC`
	rows, err := s.db.QueryContext(ctx, q, subject.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category   string
			event      audit.Event
			subjectRaw string
			actorRaw   string
		)
		if err := rows.Scan(&category, &event.Timestamp, &event.Registry, &subjectRaw, &actorRaw,
			&event.Action, &event.Detail, &event.Height, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Subject = id.Identity(subjectRaw)
		event.Actor = id.Identity(actorRaw)
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
