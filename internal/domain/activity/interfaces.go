package activity

import "context"

// Cache is the durable store of completed details.
type Cache interface {
	Get(ctx context.Context, id string) (Detail, bool, error)
	Put(ctx context.Context, id string, detail Detail) error
}

// Generator produces a detail for an activity summary.
type Generator interface {
	Generate(ctx context.Context, summary Summary) (Detail, error)
}

// PlaceSearcher resolves a keyword into place records.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, display int) ([]Place, error)
}

// ActivityLookup finds the summary of a recommended activity by ID.
type ActivityLookup interface {
	FindActivity(ctx context.Context, id string) (Summary, error)
}

// LookupFunc adapts a function to ActivityLookup.
type LookupFunc func(ctx context.Context, id string) (Summary, error)

func (f LookupFunc) FindActivity(ctx context.Context, id string) (Summary, error) {
	return f(ctx, id)
}

// EventLog provides persistence for generation events.
type EventLog interface {
	Log(ctx context.Context, event *Event) error
	List(ctx context.Context, activityID string, limit int) ([]Event, error)
}
