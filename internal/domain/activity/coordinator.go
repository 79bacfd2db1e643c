package activity

import (
	"context"
	"log/slog"
	"sync"
)

// Listener observes status changes for one activity ID.
type Listener func(Status)

type subscription struct {
	id string
	fn Listener
}

// Coordinator is the authoritative in-memory status store for activity
// detail generation. It mirrors completed details into a Cache and notifies
// subscribers on every mutation.
type Coordinator struct {
	cache  Cache
	logger *slog.Logger

	mu       sync.Mutex
	statuses map[string]Status
	subs     map[uint64]subscription
	nextSub  uint64

	// notifyMu orders deliveries: a snapshot is taken and delivered in full
	// before the next one is taken, so a listener never sees an older status
	// after a newer one.
	notifyMu sync.Mutex

	onPersistError func(id string, err error)
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPersistErrorHandler sets a hook called when a completed detail cannot
// be written to the cache.
func WithPersistErrorHandler(fn func(id string, err error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onPersistError = fn
	}
}

// NewCoordinator creates a coordinator backed by cache. A nil cache keeps
// state in memory only.
func NewCoordinator(cache Cache, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Coordinator{
		cache:    cache,
		logger:   logger,
		statuses: make(map[string]Status),
		subs:     make(map[uint64]subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current status of id. A memory miss falls back to the
// cache; a cache hit is backfilled into memory as Complete.
func (c *Coordinator) Status(ctx context.Context, id string) Status {
	c.mu.Lock()
	st, ok := c.statuses[id]
	c.mu.Unlock()
	if ok {
		return st
	}

	detail, found := c.readCache(ctx, id)
	if !found {
		return Idle{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A transition may have landed while the cache was read.
	if current, ok := c.statuses[id]; ok {
		return current
	}
	backfilled := Complete{Detail: detail}
	c.statuses[id] = backfilled
	return backfilled
}

// SetLoading overwrites the status of id with Loading.
func (c *Coordinator) SetLoading(id string) {
	c.set(id, Loading{})
	c.logger.Debug("activity status changed", "id", id, "status", KindLoading)
}

// BeginLoading atomically moves id from Idle or Failed to Loading. It
// returns false when id is already Loading or Complete.
func (c *Coordinator) BeginLoading(ctx context.Context, id string) bool {
	// Resolve cold-start state first so a cached detail is not regenerated.
	if _, ok := c.Status(ctx, id).(Complete); ok {
		return false
	}

	c.mu.Lock()
	switch c.statuses[id].(type) {
	case Loading, Complete:
		c.mu.Unlock()
		return false
	}
	c.statuses[id] = Loading{}
	c.mu.Unlock()

	c.logger.Debug("activity status changed", "id", id, "status", KindLoading)
	c.notify()
	return true
}

// SetComplete stores detail as the result for id and writes it through to
// the cache. A failed cache write never changes the in-memory status.
func (c *Coordinator) SetComplete(ctx context.Context, id string, detail Detail) {
	c.set(id, Complete{Detail: detail})
	if c.cache != nil {
		if err := c.cache.Put(ctx, id, detail); err != nil {
			c.handlePersistFailure(id, err)
		}
	}
	c.logger.Debug("activity status changed", "id", id, "status", KindComplete)
}

// SetError records a failed attempt for id. Errors are never persisted.
func (c *Coordinator) SetError(id, message string) {
	c.set(id, Failed{Message: message})
	c.logger.Warn("activity status changed", "id", id, "status", KindError, "error", message)
}

// Clear drops the in-memory status of id and reports whether there was one.
// The cache entry is kept.
func (c *Coordinator) Clear(id string) bool {
	c.mu.Lock()
	_, existed := c.statuses[id]
	delete(c.statuses, id)
	c.mu.Unlock()
	if existed {
		c.notify()
	}
	return existed
}

// IsLoading reports whether a generation for id is in flight.
func (c *Coordinator) IsLoading(ctx context.Context, id string) bool {
	_, ok := c.Status(ctx, id).(Loading)
	return ok
}

// HasData reports whether id has a completed detail.
func (c *Coordinator) HasData(ctx context.Context, id string) bool {
	_, ok := c.Status(ctx, id).(Complete)
	return ok
}

// Data returns the completed detail for id; ok is false for any other status.
func (c *Coordinator) Data(ctx context.Context, id string) (Detail, bool) {
	if st, ok := c.Status(ctx, id).(Complete); ok {
		return st.Detail, true
	}
	return Detail{}, false
}

// Subscribe registers fn for id. fn is called with the current status right
// away and again after every store mutation, for any ID. Calls to fn never
// overlap. fn may read the store but must not mutate it or subscribe. The
// returned function removes the subscription.
func (c *Coordinator) Subscribe(ctx context.Context, id string, fn Listener) func() {
	c.notifyMu.Lock()
	c.mu.Lock()
	key := c.nextSub
	c.nextSub++
	c.subs[key] = subscription{id: id, fn: fn}
	c.mu.Unlock()

	fn(c.Status(ctx, id))
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, key)
			c.mu.Unlock()
		})
	}
}

func (c *Coordinator) set(id string, st Status) {
	c.mu.Lock()
	c.statuses[id] = st
	c.mu.Unlock()
	c.notify()
}

// notify re-reads every subscriber's ID from memory and calls it outside the
// lock.
func (c *Coordinator) notify() {
	type delivery struct {
		id string
		fn Listener
		st Status
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	pending := make([]delivery, 0, len(c.subs))
	for _, sub := range c.subs {
		pending = append(pending, delivery{id: sub.id, fn: sub.fn, st: c.statuses[sub.id]})
	}
	c.mu.Unlock()

	for _, d := range pending {
		if d.st == nil {
			// Entries missing from memory fall back to the cache like any other read.
			d.st = c.Status(context.Background(), d.id)
		}
		d.fn(d.st)
	}
}

func (c *Coordinator) readCache(ctx context.Context, id string) (Detail, bool) {
	if c.cache == nil {
		return Detail{}, false
	}
	detail, found, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("activity cache read failed", "id", id, "error", err)
		return Detail{}, false
	}
	return detail, found
}

func (c *Coordinator) handlePersistFailure(id string, err error) {
	recordPersistFailure()
	c.logger.Error("activity cache write failed", "id", id, "error", err)
	if c.onPersistError != nil {
		c.onPersistError(id, err)
	}
}
