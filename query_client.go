package codelearn

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// QueryStatus is the lifecycle state of a cached query.
type QueryStatus int

const (
	StatusIdle QueryStatus = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s QueryStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Default retention settings for the query cache.
const (
	DefaultGCTime     = 30 * time.Minute
	DefaultMaxEntries = 1_000
)

type fetchFunc func(ctx context.Context) (any, error)

type queryEntry struct {
	key       QueryKey
	data      any
	hasData   bool
	err       error
	status    QueryStatus
	stale     bool
	fetching  int
	updatedAt time.Time
}

type subscription struct {
	fetch    fetchFunc
	onUpdate func()
}

// observerSet holds the mounted queries of one key. ctx lives until the last
// of them unmounts and bounds refetches started by invalidation.
type observerSet struct {
	key    QueryKey
	subs   map[*subscription]struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// flight is one shared execution of a fetch function. Its context is
// cancelled once every caller waiting on it has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// QueryClientOption configures a QueryClient.
type QueryClientOption func(*queryClientConfig)

type queryClientConfig struct {
	staleTime  time.Duration
	gcTime     time.Duration
	maxEntries int
	metrics    *MetricsCollector
	logger     zerolog.Logger
}

// WithStaleTime makes entries stale once they are older than d. Zero keeps
// them fresh until invalidated.
func WithStaleTime(d time.Duration) QueryClientOption {
	return func(c *queryClientConfig) { c.staleTime = d }
}

// WithGCTime sets how long an entry survives without being read.
func WithGCTime(d time.Duration) QueryClientOption {
	return func(c *queryClientConfig) { c.gcTime = d }
}

// WithMaxEntries bounds the number of cached keys.
func WithMaxEntries(n int) QueryClientOption {
	return func(c *queryClientConfig) { c.maxEntries = n }
}

// WithQueryMetrics records cache activity on mc.
func WithQueryMetrics(mc *MetricsCollector) QueryClientOption {
	return func(c *queryClientConfig) { c.metrics = mc }
}

// WithQueryLogger sets the logger for cache activity.
func WithQueryLogger(logger zerolog.Logger) QueryClientOption {
	return func(c *queryClientConfig) { c.logger = logger }
}

// QueryClient is a key-addressed cache of fetch results shared by every
// Query built on it. Mutations invalidate keys to force mounted queries to
// refetch. It is safe for concurrent use.
type QueryClient struct {
	mu          sync.Mutex
	entries     *otter.Cache[string, *queryEntry]
	counter     *stats.Counter
	observers   map[string]*observerSet
	flights     map[string]*flight
	generations map[string]uint64
	group       singleflight.Group
	staleTime   time.Duration
	metrics     *MetricsCollector
	logger      zerolog.Logger
	background  sync.WaitGroup
}

// NewQueryClient creates an empty query cache.
func NewQueryClient(opts ...QueryClientOption) *QueryClient {
	cfg := queryClientConfig{
		gcTime:     DefaultGCTime,
		maxEntries: DefaultMaxEntries,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.gcTime <= 0 {
		cfg.gcTime = DefaultGCTime
	}
	if cfg.maxEntries <= 0 {
		cfg.maxEntries = DefaultMaxEntries
	}

	counter := stats.NewCounter()
	entries := otter.Must(&otter.Options[string, *queryEntry]{
		MaximumSize:      cfg.maxEntries,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryAccessing[string, *queryEntry](cfg.gcTime),
	})

	return &QueryClient{
		entries:     entries,
		counter:     counter,
		observers:   make(map[string]*observerSet),
		flights:     make(map[string]*flight),
		generations: make(map[string]uint64),
		staleTime:   cfg.staleTime,
		metrics:     cfg.metrics,
		logger:      cfg.logger,
	}
}

// entryLocked returns the entry for hash, creating it when absent. qc.mu must
// be held.
func (qc *QueryClient) entryLocked(hash string, key QueryKey) *queryEntry {
	if e, ok := qc.entries.GetIfPresent(hash); ok {
		return e
	}
	e := &queryEntry{key: append(QueryKey(nil), key...)}
	qc.entries.Set(hash, e)
	qc.metrics.RecordQueryEntries(qc.entries.EstimatedSize())
	return e
}

// cached returns the entry data when it is present and fresh.
func (qc *QueryClient) cached(hash string) (any, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, ok := qc.entries.GetIfPresent(hash)
	if !ok || !e.hasData || e.stale {
		return nil, false
	}
	if qc.staleTime > 0 && time.Since(e.updatedAt) > qc.staleTime {
		return nil, false
	}
	return e.data, true
}

func flightKey(hash string, gen uint64) string {
	return hash + "#" + strconv.FormatUint(gen, 10)
}

// fetch runs fn for key, sharing one execution between concurrent callers of
// the same generation, and records the outcome in the cache entry. A result
// that an invalidation or explicit write superseded is returned to the caller
// but not stored.
func (qc *QueryClient) fetch(ctx context.Context, key QueryKey, fn fetchFunc) (any, error) {
	hash := key.String()

	qc.mu.Lock()
	e := qc.entryLocked(hash, key)
	e.status = StatusLoading
	e.fetching++
	gen := qc.generations[hash]
	fkey := flightKey(hash, gen)
	f, ok := qc.flights[fkey]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		qc.flights[fkey] = f
	}
	f.waiters++
	qc.mu.Unlock()
	qc.notify(hash)

	ch := qc.group.DoChan(fkey, func() (any, error) {
		qc.logger.Debug().Str("key", hash).Msg("fetching query")
		v, err := fn(f.ctx)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		qc.metrics.RecordQueryFetch(hash, outcome)
		return v, err
	})

	var (
		v         any
		err       error
		abandoned bool
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
		abandoned = true
	}

	qc.mu.Lock()
	f.waiters--
	last := f.waiters == 0
	if last {
		f.cancel()
		qc.group.Forget(fkey)
		if qc.flights[fkey] == f {
			delete(qc.flights, fkey)
		}
	}
	e = qc.entryLocked(hash, key)
	if e.fetching > 0 {
		e.fetching--
	}
	switch {
	case qc.generations[hash] != gen:
		if e.fetching == 0 && e.status == StatusLoading {
			e.status = StatusIdle
			if e.hasData {
				e.status = StatusSuccess
			}
		}
	case abandoned && !last:
		// the flight continues for the remaining callers
	case err != nil:
		e.err = err
		e.status = StatusError
	default:
		e.data = v
		e.hasData = true
		e.err = nil
		e.status = StatusSuccess
		e.stale = false
		e.updatedAt = time.Now()
	}
	qc.mu.Unlock()
	qc.notify(hash)

	if err != nil {
		qc.logger.Debug().Err(err).Str("key", hash).Msg("query failed")
	}
	return v, err
}

func (qc *QueryClient) notify(hash string) {
	qc.mu.Lock()
	var subs []*subscription
	if set, ok := qc.observers[hash]; ok {
		subs = make([]*subscription, 0, len(set.subs))
		for sub := range set.subs {
			subs = append(subs, sub)
		}
	}
	qc.mu.Unlock()

	for _, sub := range subs {
		if sub.onUpdate != nil {
			sub.onUpdate()
		}
	}
}

func (qc *QueryClient) subscribe(ctx context.Context, key QueryKey, sub *subscription) {
	hash := key.String()

	qc.mu.Lock()
	qc.entryLocked(hash, key)
	set, ok := qc.observers[hash]
	if !ok {
		sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		set = &observerSet{
			key:    append(QueryKey(nil), key...),
			subs:   make(map[*subscription]struct{}),
			ctx:    sctx,
			cancel: cancel,
		}
		qc.observers[hash] = set
	}
	set.subs[sub] = struct{}{}
	qc.mu.Unlock()
}

func (qc *QueryClient) unsubscribe(key QueryKey, sub *subscription) {
	hash := key.String()

	qc.mu.Lock()
	if set, ok := qc.observers[hash]; ok {
		delete(set.subs, sub)
		if len(set.subs) == 0 {
			set.cancel()
			delete(qc.observers, hash)
		}
	}
	qc.mu.Unlock()
}

// Subscribers returns the number of mounted queries for exactly key.
func (qc *QueryClient) Subscribers(key QueryKey) int {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if set, ok := qc.observers[key.String()]; ok {
		return len(set.subs)
	}
	return 0
}

// Invalidate marks every entry whose key starts with one of keys as stale and
// refetches each matching key that has mounted queries, once per key. It
// does not wait for the refetches.
func (qc *QueryClient) Invalidate(keys ...QueryKey) {
	qc.invalidate(false, keys)
}

// InvalidateExact is Invalidate restricted to exactly equal keys.
func (qc *QueryClient) InvalidateExact(keys ...QueryKey) {
	qc.invalidate(true, keys)
}

func (qc *QueryClient) invalidate(exact bool, keys []QueryKey) {
	if len(keys) == 0 {
		return
	}

	matches := func(k QueryKey) bool {
		for _, target := range keys {
			if exact && k.Equal(target) || !exact && k.HasPrefix(target) {
				return true
			}
		}
		return false
	}

	type refetch struct {
		key   QueryKey
		ctx   context.Context
		fetch fetchFunc
	}
	var pending []refetch

	qc.mu.Lock()
	mark := func(hash string, e *queryEntry) {
		e.stale = true
		qc.generations[hash]++
		qc.metrics.RecordInvalidation(hash)

		if set, ok := qc.observers[hash]; ok {
			for sub := range set.subs {
				pending = append(pending, refetch{key: set.key, ctx: set.ctx, fetch: sub.fetch})
				break
			}
		}
	}

	seen := make(map[string]struct{})
	for hash, e := range qc.entries.All() {
		seen[hash] = struct{}{}
		if matches(e.key) {
			mark(hash, e)
		}
	}
	// mounted keys whose entry the store already collected
	for hash, set := range qc.observers {
		if _, ok := seen[hash]; ok || !matches(set.key) {
			continue
		}
		mark(hash, qc.entryLocked(hash, set.key))
	}
	qc.mu.Unlock()

	for _, r := range pending {
		hash := r.key.String()
		qc.logger.Debug().Str("key", hash).Msg("refetching invalidated query")
		qc.metrics.RecordRefetch(hash)

		qc.background.Add(1)
		go func(r refetch) {
			defer qc.background.Done()
			_, _ = qc.fetch(r.ctx, r.key, r.fetch)
		}(r)
	}
}

// Wait blocks until every background refetch started so far has settled.
func (qc *QueryClient) Wait() {
	qc.background.Wait()
}

// SetQueryData writes data for key explicitly and notifies mounted queries.
// This is the only way the cache changes without a fetch.
func (qc *QueryClient) SetQueryData(key QueryKey, data any) {
	hash := key.String()

	qc.mu.Lock()
	e := qc.entryLocked(hash, key)
	e.data = data
	e.hasData = true
	e.err = nil
	e.status = StatusSuccess
	e.stale = false
	e.updatedAt = time.Now()
	qc.generations[hash]++
	qc.mu.Unlock()

	qc.notify(hash)
}

// GetQueryData returns the cached data for key, fresh or not.
func (qc *QueryClient) GetQueryData(key QueryKey) (any, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, ok := qc.entries.GetIfPresent(key.String())
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// QueryData is a typed GetQueryData.
func QueryData[T any](qc *QueryClient, key QueryKey) (T, bool) {
	var zero T
	v, ok := qc.GetQueryData(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// IsStale reports whether key has no fresh data.
func (qc *QueryClient) IsStale(key QueryKey) bool {
	_, fresh := qc.cached(key.String())
	return !fresh
}

// Clear drops every entry. Mounted queries keep their subscriptions and
// refetch on their next Fetch.
func (qc *QueryClient) Clear() {
	qc.mu.Lock()
	for hash := range qc.entries.All() {
		qc.generations[hash]++
	}
	qc.entries.InvalidateAll()
	qc.metrics.RecordQueryEntries(0)
	qc.mu.Unlock()
}

// Stats returns hit/miss counters of the underlying store.
func (qc *QueryClient) Stats() stats.Stats {
	return qc.counter.Snapshot()
}

func (qc *QueryClient) snapshot(hash string) (queryEntry, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, ok := qc.entries.GetIfPresent(hash)
	if !ok {
		return queryEntry{}, false
	}
	return *e, true
}
