// Package synccache keeps a locally cached, ordered collection of entities
// mirroring a remote authoritative store, applying mutations optimistically
// so callers observe the effect before the remote call resolves.
package synccache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Identifiable is satisfied by every cached entity type.
type Identifiable interface {
	EntityID() int64
}

// Store is the remote authoritative copy for one entity type. Insert returns
// the persisted record with server-assigned fields. Patch carries a typed
// partial update whose key set is fixed per entity.
type Store[T Identifiable, P any] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, item T) (T, error)
	Patch(ctx context.Context, id int64, patch P) error
	Remove(ctx context.Context, id int64) error
}

type Action string

const (
	ActionReload   Action = "reload"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionRollback Action = "rollback"
)

// Event describes a cache change delivered to subscribers.
type Event struct {
	Collection string `json:"collection"`
	Action     Action `json:"action"`
	ID         int64  `json:"id,omitempty"`
}

type loadCall[T Identifiable] struct {
	done  chan struct{}
	items []T
	err   error
}

// Collection caches one entity type. Mutations snapshot the cache before the
// optimistic apply; a failed remote call restores that exact snapshot rather
// than a diffed reversal, so overlapping mutations cannot corrupt each other.
type Collection[T Identifiable, P any] struct {
	name  string
	store Store[T, P]
	apply func(T, P) T
	log   zerolog.Logger

	mu       sync.Mutex
	items    []T
	loaded   bool
	inflight *loadCall[T]

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New builds a collection over a store. apply merges a patch into an entity
// for the optimistic local merge; it must mirror what the store's Patch does.
func New[T Identifiable, P any](name string, store Store[T, P], apply func(T, P) T, log zerolog.Logger) *Collection[T, P] {
	return &Collection[T, P]{
		name:  name,
		store: store,
		apply: apply,
		log:   log.With().Str("collection", name).Logger(),
		subs:  make(map[int]func(Event)),
	}
}

func (c *Collection[T, P]) Name() string { return c.name }

// Load fetches the remote collection and replaces the cache. A load already
// in flight is reused rather than duplicated; the joiner shares its result.
func (c *Collection[T, P]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if lc := c.inflight; lc != nil {
		c.mu.Unlock()
		select {
		case <-lc.done:
			return lc.items, lc.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	lc := &loadCall[T]{done: make(chan struct{})}
	c.inflight = lc
	c.mu.Unlock()

	items, err := c.store.List(ctx)

	c.mu.Lock()
	if c.inflight == lc {
		c.inflight = nil
	}
	// Coalescing serializes fetches: a new fetch cannot start until the
	// previous one has applied its result, so this result is the newest.
	if err == nil {
		c.items = cloneSlice(items)
		c.loaded = true
	}
	c.mu.Unlock()

	lc.items, lc.err = items, err
	close(lc.done)

	if err != nil {
		c.log.Error().Err(err).Msg("load failed")
		return nil, &RemoteError{Op: "list", Collection: c.name, Err: err}
	}
	c.notify(Event{Collection: c.name, Action: ActionReload})
	return items, nil
}

// awaitLoad blocks until no load is in flight. Mutations call it before
// taking their snapshot so a reconciling load cannot race the optimistic
// apply and re-order entries underneath the pending rollback state.
func (c *Collection[T, P]) awaitLoad(ctx context.Context) error {
	for {
		c.mu.Lock()
		lc := c.inflight
		c.mu.Unlock()
		if lc == nil {
			return nil
		}
		select {
		case <-lc.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Create inserts the entity at the head of the cache, then persists it. On
// success the optimistic entry is replaced by the stored record; on failure
// the pre-mutation snapshot is restored and the error returned unretried.
func (c *Collection[T, P]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := c.awaitLoad(ctx); err != nil {
		return zero, err
	}

	c.mu.Lock()
	snapshot := cloneSlice(c.items)
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
	c.notify(Event{Collection: c.name, Action: ActionCreate, ID: item.EntityID()})

	persisted, err := c.store.Insert(ctx, item)
	if err != nil {
		c.restore(snapshot)
		return zero, &RemoteError{Op: "insert", Collection: c.name, Err: err}
	}

	c.mu.Lock()
	if i := c.indexOf(item.EntityID()); i >= 0 {
		c.items[i] = persisted
	} else {
		// An overlapping rollback restored a snapshot without the
		// optimistic entry; the stored record still belongs in the cache.
		c.items = append([]T{persisted}, c.items...)
	}
	c.mu.Unlock()
	c.notify(Event{Collection: c.name, Action: ActionCreate, ID: persisted.EntityID()})
	return persisted, nil
}

// Update merges the patch into the cached entity, then persists it.
func (c *Collection[T, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	var zero T
	if err := c.awaitLoad(ctx); err != nil {
		return zero, err
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, ErrNotFound
	}
	snapshot := cloneSlice(c.items)
	merged := c.apply(c.items[i], patch)
	c.items[i] = merged
	c.mu.Unlock()
	c.notify(Event{Collection: c.name, Action: ActionUpdate, ID: id})

	if err := c.store.Patch(ctx, id, patch); err != nil {
		c.restore(snapshot)
		return zero, &RemoteError{Op: "patch", Collection: c.name, Err: err}
	}
	return merged, nil
}

// Delete removes the cached entity, then persists the removal.
func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.awaitLoad(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	snapshot := cloneSlice(c.items)
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.mu.Unlock()
	c.notify(Event{Collection: c.name, Action: ActionDelete, ID: id})

	if err := c.store.Remove(ctx, id); err != nil {
		c.restore(snapshot)
		return &RemoteError{Op: "remove", Collection: c.name, Err: err}
	}
	return nil
}

// Get returns the cached entity with the given id.
func (c *Collection[T, P]) Get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Items returns a copy of the current cache in order.
func (c *Collection[T, P]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSlice(c.items)
}

// Loaded reports whether at least one load has completed.
func (c *Collection[T, P]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Subscribe registers a change listener and returns its remover. Listeners
// run synchronously on the mutating goroutine; keep them cheap.
func (c *Collection[T, P]) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Collection[T, P]) restore(snapshot []T) {
	c.mu.Lock()
	c.items = snapshot
	c.mu.Unlock()
	c.notify(Event{Collection: c.name, Action: ActionRollback})
}

// indexOf requires c.mu held.
func (c *Collection[T, P]) indexOf(id int64) int {
	for i, it := range c.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T, P]) notify(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
