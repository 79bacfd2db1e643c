package repository

import (
	"context"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

// KVStore is a string key-value store scoped to one installation, the
// server-side counterpart of browser local storage.
type KVStore interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// EventRepository manages generation event persistence
type EventRepository interface {
	Log(ctx context.Context, event *activity.Event) error
	List(ctx context.Context, activityID string, limit int) ([]activity.Event, error)
}
