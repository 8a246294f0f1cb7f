package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/tracking"
)

// EventRecord is one logged gesture event.
type EventRecord struct {
	ID         string        `json:"id"`
	Event      gesture.Event `json:"event"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// EventRepository stores the gesture event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, assigning an ID when it has none.
func (r *EventRepository) Record(e *EventRecord) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, kind, x, y, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Event.String(), e.X, e.Y, e.OccurredAt.UTC(),
	)
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*EventRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(
		`SELECT id, kind, x, y, occurred_at FROM gesture_events
		 ORDER BY occurred_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*EventRecord
	for rows.Next() {
		e := &EventRecord{}
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.X, &e.Y, &e.OccurredAt); err != nil {
			return nil, err
		}
		if e.Event, err = gesture.ParseEvent(kind); err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// CountByKind returns the number of logged events per event name.
func (r *EventRepository) CountByKind() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM gesture_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// EventSink logs every gesture event of a tracked frame.
type EventSink struct {
	events *EventRepository
}

// NewEventSink returns a tracking.Sink writing to events.
func NewEventSink(events *EventRepository) *EventSink {
	return &EventSink{events: events}
}

// HandleFrame implements tracking.Sink.
func (s *EventSink) HandleFrame(f tracking.Frame) error {
	for _, ev := range f.Events {
		rec := &EventRecord{
			Event:      ev,
			X:          f.Cursor.X,
			Y:          f.Cursor.Y,
			OccurredAt: f.At,
		}
		if err := s.events.Record(rec); err != nil {
			return err
		}
	}
	return nil
}
