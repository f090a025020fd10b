// Package cache implements a query cache keyed by (entity, parameters) with
// stale-while-revalidate reads and a snapshot/apply/commit-or-revert
// protocol for optimistic mutations. The cache is an explicitly constructed,
// injected instance; stores back it with either process memory or Redis.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store is the minimal key-value surface a cache backend must provide.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// envelope wraps a cached value with its fetch time so readers can decide
// between fresh-enough and stale.
type envelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// QueryCache caches query results keyed by entity name plus the full
// parameter object, so two parameterizations of the same entity live and
// die independently.
type QueryCache struct {
	store    Store
	freshFor time.Duration
	ttl      time.Duration

	mu       sync.Mutex
	nextRead uint64
	inflight map[string]map[uint64]context.CancelFunc
}

// Option configures a QueryCache.
type Option func(*QueryCache)

// WithFreshFor sets how long a cached value is served without triggering a
// background refresh.
func WithFreshFor(d time.Duration) Option {
	return func(c *QueryCache) { c.freshFor = d }
}

// WithTTL sets the hard expiry of entries in the backing store.
func WithTTL(d time.Duration) Option {
	return func(c *QueryCache) { c.ttl = d }
}

// New creates a QueryCache over the given store.
func New(store Store, opts ...Option) *QueryCache {
	c := &QueryCache{
		store:    store,
		freshFor: 30 * time.Second,
		ttl:      10 * time.Minute,
		inflight: make(map[string]map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the composite cache key for an entity and its parameter
// object. Struct fields marshal in declaration order, so equal parameter
// objects always yield equal keys.
func Key(entity string, params any) string {
	if params == nil {
		return entity + "|"
	}
	b, err := json.Marshal(params)
	if err != nil {
		return entity + "|"
	}
	return entity + "|" + string(b)
}

// Invalidate drops either the given parameterizations of an entity, or
// every cached view of it when no params are passed (joint invalidation,
// used when a mutation affects all views).
func (c *QueryCache) Invalidate(ctx context.Context, entity string, params ...any) error {
	if len(params) == 0 {
		return c.store.DeleteByPrefix(ctx, entity+"|")
	}
	keys := make([]string, 0, len(params))
	for _, p := range params {
		keys = append(keys, Key(entity, p))
	}
	return c.store.Delete(ctx, keys...)
}

// CancelReads requests cancellation of every in-flight background read for
// the entity. Best-effort: a read that already completed has already been
// stored.
func (c *QueryCache) CancelReads(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.inflight[entity] {
		cancel()
	}
	delete(c.inflight, entity)
}

// trackRead registers a cancellable context for a background refresh. The
// returned func cancels the read and removes it from the inflight table, so
// completed refreshes do not accumulate spent cancel funcs.
func (c *QueryCache) trackRead(entity string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.nextRead++
	id := c.nextRead
	reads := c.inflight[entity]
	if reads == nil {
		reads = make(map[uint64]context.CancelFunc)
		c.inflight[entity] = reads
	}
	reads[id] = cancel
	c.mu.Unlock()

	return ctx, func() {
		cancel()
		c.mu.Lock()
		if reads := c.inflight[entity]; reads != nil {
			delete(reads, id)
			if len(reads) == 0 {
				delete(c.inflight, entity)
			}
		}
		c.mu.Unlock()
	}
}

// Fetch returns the cached value for (entity, params) when present,
// triggering a background refresh if it is past its freshness window
// (stale-while-revalidate). On a miss the loader runs synchronously.
func Fetch[T any](ctx context.Context, c *QueryCache, entity string, params any, loader func(context.Context) (T, error)) (T, error) {
	key := Key(entity, params)

	if raw, ok, err := c.store.Get(ctx, key); err == nil && ok {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			var cached T
			if err := json.Unmarshal(env.Data, &cached); err == nil {
				if time.Since(env.FetchedAt) > c.freshFor {
					refreshCtx, cancel := c.trackRead(entity)
					go func() {
						defer cancel()
						v, err := loader(refreshCtx)
						if err != nil || refreshCtx.Err() != nil {
							return
						}
						_ = c.put(refreshCtx, key, v)
					}()
				}
				return cached, nil
			}
		}
	}

	v, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = c.put(ctx, key, v)
	return v, nil
}

func (c *QueryCache) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{FetchedAt: time.Now(), Data: data})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw, c.ttl)
}

// Mutate runs a mutation against an entity with the three-phase optimistic
// protocol: snapshot every cached view, apply the patch to each, then call
// the remote operation. On failure the snapshots are restored verbatim; in
// every case the entity is invalidated afterwards so the next read
// reconciles with the source of truth. The patch must be pure: it may only
// reshape the cached collection, never touch the remote side.
func Mutate[T any](ctx context.Context, c *QueryCache, entity string, patch func(T) T, remote func(context.Context) error) error {
	c.CancelReads(entity)

	var snapshots map[string][]byte
	if patch != nil {
		keys, err := c.store.Keys(ctx, entity+"|")
		if err == nil {
			snapshots = make(map[string][]byte, len(keys))
			for _, key := range keys {
				raw, ok, err := c.store.Get(ctx, key)
				if err != nil || !ok {
					continue
				}
				snapshots[key] = raw

				var env envelope
				if err := json.Unmarshal(raw, &env); err != nil {
					continue
				}
				var value T
				if err := json.Unmarshal(env.Data, &value); err != nil {
					continue
				}
				patched, err := json.Marshal(patch(value))
				if err != nil {
					continue
				}
				env.Data = patched
				if updated, err := json.Marshal(env); err == nil {
					_ = c.store.Set(ctx, key, updated, c.ttl)
				}
			}
		}
	}

	remoteErr := remote(ctx)

	if remoteErr != nil {
		for key, raw := range snapshots {
			_ = c.store.Set(ctx, key, raw, c.ttl)
		}
		return remoteErr
	}

	// Settlement: drop every view so the next read refetches.
	_ = c.Invalidate(ctx, entity)
	return nil
}
