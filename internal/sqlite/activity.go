package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/repository"
)

var _ repository.EventRepository = (*EventRepository)(nil)

// EventRepository implements repository.EventRepository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Log inserts a new generation event
func (r *EventRepository) Log(ctx context.Context, event *activity.Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO generation_events (
			attempt_id, activity_id, status, message, created_at
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.AttemptID,
		event.ActivityID,
		event.Status,
		event.Message,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log generation event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		event.ID = id
	}
	event.CreatedAt = createdAt

	return nil
}

// List returns the most recent events for an activity, newest first
func (r *EventRepository) List(ctx context.Context, activityID string, limit int) ([]activity.Event, error) {
	query := `
		SELECT id, attempt_id, activity_id, status, message, created_at
		FROM generation_events
		WHERE activity_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []any{activityID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation events: %w", err)
	}
	defer rows.Close()

	events := []activity.Event{}
	for rows.Next() {
		var event activity.Event
		if err := rows.Scan(
			&event.ID,
			&event.AttemptID,
			&event.ActivityID,
			&event.Status,
			&event.Message,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation event rows: %w", err)
	}

	return events, nil
}
