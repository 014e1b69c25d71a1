package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ecosortai/ecosort/internal/tracker"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventRepository provides durable storage for detection events.
// It implements tracker.EventSink.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// AppendEvent inserts a detection event into the backup history.
func (r *EventRepository) AppendEvent(e tracker.Event) error {
	_, err := r.db.Exec(
		`INSERT INTO events (id, timestamp, material, credits) VALUES (?, ?, ?, ?)`,
		e.ID, e.Timestamp, string(e.Material), e.Credits,
	)
	return err
}

// List retrieves the full backup history in insertion order.
func (r *EventRepository) List() ([]tracker.Event, error) {
	rows, err := r.db.Query(
		`SELECT id, timestamp, material, credits FROM events ORDER BY timestamp, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []tracker.Event
	for rows.Next() {
		var e tracker.Event
		var material string
		var ts time.Time

		if err := rows.Scan(&e.ID, &ts, &material, &e.Credits); err != nil {
			return nil, err
		}

		e.Timestamp = ts
		e.Material = tracker.Material(material)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByMaterial returns the number of stored events per material.
func (r *EventRepository) CountByMaterial() (map[tracker.Material]int, error) {
	rows, err := r.db.Query(
		`SELECT material, COUNT(*) FROM events GROUP BY material`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[tracker.Material]int)
	for _, m := range tracker.Materials() {
		counts[m] = 0
	}

	for rows.Next() {
		var material string
		var count int
		if err := rows.Scan(&material, &count); err != nil {
			return nil, err
		}
		counts[tracker.Material(material)] = count
	}

	return counts, rows.Err()
}

// CreditTotal returns the sum of credits over all stored events.
func (r *EventRepository) CreditTotal() (int, error) {
	var total int
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(credits), 0) FROM events`,
	).Scan(&total)
	return total, err
}

// Reset removes all stored events.
func (r *EventRepository) Reset() error {
	_, err := r.db.Exec(`DELETE FROM events`)
	return err
}
