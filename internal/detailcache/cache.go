// Package detailcache persists completed activity details in a string
// key-value store.
//
// All details live in one JSON object under a single key, so every write
// re-serializes the whole dictionary. That is fine for the tens to low
// hundreds of entries a user accumulates; it does not scale to thousands.
package detailcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/repository"
)

// StoreKey is the key the detail dictionary is stored under.
const StoreKey = "activity_details"

// Cache maps activity IDs to completed details.
type Cache struct {
	kv     repository.KVStore
	logger *slog.Logger

	// mu serializes read-modify-write cycles on the dictionary.
	mu sync.Mutex
}

// New creates a cache over kv.
func New(kv repository.KVStore, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{kv: kv, logger: logger}
}

// Get returns the detail for id. A store or parse failure is reported as a
// miss and logged.
func (c *Cache) Get(ctx context.Context, id string) (activity.Detail, bool, error) {
	all := c.loadOrEmpty(ctx)
	detail, ok := all[id]
	return detail, ok, nil
}

// Has reports whether a detail is cached for id.
func (c *Cache) Has(ctx context.Context, id string) bool {
	_, ok, _ := c.Get(ctx, id)
	return ok
}

// Put stores detail under id.
func (c *Cache) Put(ctx context.Context, id string, detail activity.Detail) error {
	if id == "" {
		return repository.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.loadAll(ctx)
	if err != nil {
		return fmt.Errorf("saving activity detail %s: %w", id, err)
	}
	all[id] = detail
	if err := c.saveAll(ctx, all); err != nil {
		return fmt.Errorf("saving activity detail %s: %w", id, err)
	}
	return nil
}

// Delete removes the detail for id.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.loadAll(ctx)
	if err != nil {
		return fmt.Errorf("deleting activity detail %s: %w", id, err)
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	if err := c.saveAll(ctx, all); err != nil {
		return fmt.Errorf("deleting activity detail %s: %w", id, err)
	}
	return nil
}

// ClearAll removes every cached detail.
func (c *Cache) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.RemoveItem(ctx, StoreKey); err != nil {
		return fmt.Errorf("clearing activity details: %w", err)
	}
	return nil
}

// IDs lists the cached activity IDs.
func (c *Cache) IDs(ctx context.Context) []string {
	all := c.loadOrEmpty(ctx)
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	return ids
}

// loadOrEmpty is loadAll for readers: any failure is a miss.
func (c *Cache) loadOrEmpty(ctx context.Context) map[string]activity.Detail {
	all, err := c.loadAll(ctx)
	if err != nil {
		c.logger.Warn("reading activity detail cache failed", "error", err)
		return map[string]activity.Detail{}
	}
	return all
}

// loadAll reads the dictionary. A store error is returned so that writers
// never replace entries they could not read. Unparsable content is logged and
// treated as empty, since it cannot be recovered.
func (c *Cache) loadAll(ctx context.Context) (map[string]activity.Detail, error) {
	raw, ok, err := c.kv.GetItem(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", StoreKey, err)
	}
	if !ok || raw == "" {
		return map[string]activity.Detail{}, nil
	}
	var all map[string]activity.Detail
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		c.logger.Warn("parsing activity detail cache failed", "error", err)
		return map[string]activity.Detail{}, nil
	}
	if all == nil {
		all = map[string]activity.Detail{}
	}
	return all, nil
}

func (c *Cache) saveAll(ctx context.Context, all map[string]activity.Detail) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return c.kv.SetItem(ctx, StoreKey, string(data))
}
