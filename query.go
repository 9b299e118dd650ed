package codelearn

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// QueryState is a typed snapshot of the cache entry behind a Query.
type QueryState[T any] struct {
	Status     QueryStatus
	Data       T
	HasData    bool
	Err        error
	Stale      bool
	IsFetching bool
	UpdatedAt  time.Time
}

// Loading reports whether the query has no data yet and a fetch is running.
func (s QueryState[T]) Loading() bool {
	return s.Status == StatusLoading && !s.HasData
}

// QueryOption configures a Query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	enabled bool
}

// WithEnabled controls whether Mount fetches automatically. Disabled queries
// still answer Fetch and Refetch.
func WithEnabled(enabled bool) QueryOption {
	return func(o *queryOptions) { o.enabled = enabled }
}

// Query is a typed view of one key in a QueryClient. Queries built with the
// same key share a single cache entry and a single in-flight fetch.
type Query[T any] struct {
	client  *QueryClient
	key     QueryKey
	hash    string
	fn      func(context.Context) (T, error)
	enabled bool

	mu        sync.Mutex
	sub       *subscription
	cancel    context.CancelFunc
	listeners map[int]func(QueryState[T])
	nextID    int
}

// NewQuery binds fn to key on qc.
func NewQuery[T any](qc *QueryClient, key QueryKey, fn func(context.Context) (T, error), opts ...QueryOption) *Query[T] {
	o := queryOptions{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}

	return &Query[T]{
		client:    qc,
		key:       append(QueryKey(nil), key...),
		hash:      key.String(),
		fn:        fn,
		enabled:   o.enabled,
		listeners: make(map[int]func(QueryState[T])),
	}
}

// Key returns the query's key.
func (q *Query[T]) Key() QueryKey {
	return q.key
}

func (q *Query[T]) fetcher() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return q.fn(ctx)
	}
}

// Fetch returns the cached data when it is fresh, otherwise fetches it.
// Repeated calls with no invalidation in between trigger a single fetch.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	if v, ok := q.client.cached(q.hash); ok {
		if typed, ok := v.(T); ok {
			q.client.metrics.RecordQueryHit(q.hash)
			return typed, nil
		}
	}
	q.client.metrics.RecordQueryMiss(q.hash)
	return q.Refetch(ctx)
}

// Refetch fetches regardless of freshness.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	v, err := q.client.fetch(ctx, q.key, q.fetcher())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached value has type %T", q.hash, v)
	}
	return typed, nil
}

// Mount registers the query as an active subscriber so invalidations of its
// key trigger a refetch. When enabled and the entry is missing or stale, it
// starts a fetch in the background, bounded by ctx and cancelled by Unmount.
// Refetches after an invalidation are shared by every mounted query of the
// key and run until the last of them unmounts.
func (q *Query[T]) Mount(ctx context.Context) {
	q.mu.Lock()
	if q.sub != nil {
		q.mu.Unlock()
		return
	}
	mountCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.sub = &subscription{
		fetch:    q.fetcher(),
		onUpdate: q.publish,
	}
	sub := q.sub
	q.mu.Unlock()

	q.client.subscribe(ctx, q.key, sub)

	if !q.enabled {
		return
	}
	if _, fresh := q.client.cached(q.hash); fresh {
		q.client.metrics.RecordQueryHit(q.hash)
		return
	}
	q.client.metrics.RecordQueryMiss(q.hash)

	q.client.background.Add(1)
	go func() {
		defer q.client.background.Done()
		_, _ = q.client.fetch(mountCtx, q.key, sub.fetch)
	}()
}

// Unmount removes the subscription and cancels fetches made for it. The
// cached entry stays until it is collected.
func (q *Query[T]) Unmount() {
	q.mu.Lock()
	sub := q.sub
	cancel := q.cancel
	q.sub = nil
	q.cancel = nil
	q.mu.Unlock()

	if sub == nil {
		return
	}
	q.client.unsubscribe(q.key, sub)
	cancel()
}

// Mounted reports whether the query is subscribed.
func (q *Query[T]) Mounted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sub != nil
}

// State returns the current state of the shared entry.
func (q *Query[T]) State() QueryState[T] {
	e, ok := q.client.snapshot(q.hash)
	if !ok {
		return QueryState[T]{Status: StatusIdle}
	}

	s := QueryState[T]{
		Status:     e.status,
		Err:        e.err,
		Stale:      e.stale,
		IsFetching: e.fetching > 0,
		UpdatedAt:  e.updatedAt,
	}
	if e.hasData {
		if typed, ok := e.data.(T); ok {
			s.Data = typed
			s.HasData = true
		}
	}
	return s
}

// Subscribe registers fn for state changes of the entry while the query is
// mounted and returns a function that removes it.
func (q *Query[T]) Subscribe(fn func(QueryState[T])) func() {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

func (q *Query[T]) publish() {
	q.mu.Lock()
	listeners := make([]func(QueryState[T]), 0, len(q.listeners))
	for _, fn := range q.listeners {
		listeners = append(listeners, fn)
	}
	q.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	s := q.State()
	for _, fn := range listeners {
		fn(s)
	}
}
