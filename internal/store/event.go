package store

import (
	"database/sql"
	"time"
)

// Event is one journal entry: a gesture transition, a dispatched command, a
// stop, or any other notable moment in a session.
type Event struct {
	ID        int64
	SessionID string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

// EventRepository provides append and query operations for the event journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append inserts one journal entry. CreatedAt is stamped if unset.
func (r *EventRepository) Append(ev *Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	result, err := r.db.Exec(
		`INSERT INTO events (session_id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		ev.SessionID, ev.Kind, ev.Detail, ev.CreatedAt,
	)
	if err != nil {
		return err
	}
	ev.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves a session's journal in insertion order, capped at
// limit entries; limit <= 0 means no cap.
func (r *EventRepository) ListBySession(sessionID string, limit int) ([]*Event, error) {
	query := `SELECT id, session_id, kind, detail, created_at
	          FROM events WHERE session_id = ? ORDER BY id`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev := &Event{}
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Kind, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountByKind returns how many journal entries of the given kind a session
// produced.
func (r *EventRepository) CountByKind(sessionID, kind string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE session_id = ? AND kind = ?`,
		sessionID, kind,
	).Scan(&count)
	return count, err
}
