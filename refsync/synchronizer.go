// Package refsync keeps reference-layer geometries of spatial filters in
// step with the reference layer's own filter.
//
// A spatial filter naming a ReferenceLayerID takes its geometries from the
// features of that layer that pass the layer's current CQL filter. The
// Synchronizer observes forest snapshots, compiles the reference layer's
// filter as a signature, and refetches only when that signature changes.
// Fetched geometries are merged into the owning group, which is written back
// through a GroupSink.
//
// A sync unit is a (group, reference layer) pair. At most one fetch runs per
// unit; a newer trigger supersedes it and its response is discarded.
package refsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hugr-lab/layerfilter/cql"
	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/filter"
	"github.com/hugr-lab/layerfilter/internal/recovery"
)

// GroupSink receives groups with merged reference geometries.
// Implementations MUST be goroutine-safe.
type GroupSink interface {
	// Replace swaps the stored group with the same ID for g.
	Replace(ctx context.Context, g filter.Group) error
}

// Snapshotter is optionally implemented by a GroupSink holding the current
// forest. Merges then start from its snapshot instead of the last synced one.
type Snapshotter interface {
	Snapshot() *filter.Forest
}

// unit identifies a sync unit.
type unit struct {
	group string
	layer string
}

// task is an in-flight fetch of a unit.
type task struct {
	signature string
	token     uint64
	cancel    context.CancelFunc
}

// Synchronizer fetches reference-layer geometries for spatial filters.
type Synchronizer struct {
	fetcher      feature.Fetcher
	sink         GroupSink
	logger       *slog.Logger
	metrics      *Metrics
	maxFetches   int
	fetchTimeout time.Duration
	sem          *semaphore.Weighted

	mu       sync.Mutex
	latest   *filter.Forest
	cache    map[unit]string
	inflight map[unit]*task
	warned   map[unit]struct{}
	token    uint64

	wg sync.WaitGroup
}

// New creates a Synchronizer fetching through fetcher and writing merged
// groups to sink.
func New(fetcher feature.Fetcher, sink GroupSink, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		fetcher:    fetcher,
		sink:       sink,
		logger:     slog.Default(),
		maxFetches: DefaultMaxConcurrentFetches,
		cache:      make(map[unit]string),
		inflight:   make(map[unit]*task),
		warned:     make(map[unit]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	s.sem = semaphore.NewWeighted(int64(s.maxFetches))
	return s
}

// Metrics returns the synchronizer collectors.
func (s *Synchronizer) Metrics() *Metrics {
	return s.metrics
}

// Signature returns the cached signature of a unit.
func (s *Synchronizer) Signature(groupID, layerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.cache[unit{group: groupID, layer: layerID}]
	return sig, ok
}

// Sync runs one pass over forest: it evicts state of removed units and
// dispatches a fetch for every unit whose signature changed. An in-flight
// fetch for another signature is cancelled first, even when the new
// signature matches the cache. Sync does not wait for fetches; fetches are
// bound to ctx. It returns the number of fetches dispatched.
func (s *Synchronizer) Sync(ctx context.Context, forest *filter.Forest) int {
	units := declaredUnits(forest)
	dispatched := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = forest
	s.collectLocked(forest, units)

	for _, u := range units {
		if g, ok := forest.Group(u.group); ok && g.HasLayer(u.layer) {
			if _, seen := s.warned[u]; !seen {
				s.warned[u] = struct{}{}
				s.logger.Warn("Spatial filter references a layer of its own group",
					"group", u.group,
					"layer", u.layer,
				)
			}
		}

		sig := cql.Compile(forest, u.layer)
		if t, ok := s.inflight[u]; ok {
			if t.signature == sig {
				continue
			}
			t.cancel()
			delete(s.inflight, u)
		}
		if cached, ok := s.cache[u]; ok && cached == sig {
			continue
		}
		s.dispatchLocked(ctx, u, sig)
		dispatched++
	}
	return dispatched
}

// Wait blocks until all dispatched fetches have completed.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// Run syncs every forest received from updates until ctx is done or updates
// is closed, then waits for in-flight fetches.
func (s *Synchronizer) Run(ctx context.Context, updates <-chan *filter.Forest) error {
	defer s.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case forest, ok := <-updates:
			if !ok {
				return nil
			}
			s.Sync(ctx, forest)
		}
	}
}

// declaredUnits lists the units of enabled spatial filters in forest order.
func declaredUnits(forest *filter.Forest) []unit {
	var units []unit
	seen := make(map[unit]struct{})
	for _, g := range forest.Groups() {
		for _, sf := range g.SpatialFilters() {
			if sf.Disabled || sf.ReferenceLayerID == "" {
				continue
			}
			u := unit{group: g.ID, layer: sf.ReferenceLayerID}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			units = append(units, u)
		}
	}
	return units
}

// collectLocked drops cache and in-flight entries of groups missing from
// forest and of units no longer declared.
func (s *Synchronizer) collectLocked(forest *filter.Forest, units []unit) {
	declared := make(map[unit]struct{}, len(units))
	for _, u := range units {
		declared[u] = struct{}{}
	}
	live := func(u unit) bool {
		if !forest.Has(u.group) {
			return false
		}
		_, ok := declared[u]
		return ok
	}

	evicted := 0
	for u := range s.cache {
		if !live(u) {
			delete(s.cache, u)
			evicted++
		}
	}
	for u, t := range s.inflight {
		if !live(u) {
			t.cancel()
			delete(s.inflight, u)
			evicted++
		}
	}
	for u := range s.warned {
		if !live(u) {
			delete(s.warned, u)
		}
	}

	if evicted > 0 {
		s.metrics.GCEvictionsTotal.Add(float64(evicted))
		s.logger.Debug("Evicted reference sync state", "entries", evicted)
	}
	s.metrics.CacheEntries.Set(float64(len(s.cache)))
}

func (s *Synchronizer) dispatchLocked(ctx context.Context, u unit, sig string) {
	s.token++
	fetchCtx, cancel := context.WithCancel(ctx)
	t := &task{signature: sig, token: s.token, cancel: cancel}
	s.inflight[u] = t

	s.logger.Debug("Dispatching reference fetch",
		"group", u.group,
		"layer", u.layer,
		"signature_len", len(sig),
	)

	s.wg.Add(1)
	go s.fetch(fetchCtx, u, t)
}

func (s *Synchronizer) fetch(ctx context.Context, u unit, t *task) {
	defer s.wg.Done()
	defer t.cancel()

	var features []feature.Feature
	err := s.sem.Acquire(ctx, 1)
	if err == nil {
		s.metrics.InflightFetches.Inc()
		features, err = s.fetchFeatures(ctx, u, t)
		s.metrics.InflightFetches.Dec()
		s.sem.Release(1)
	}

	if !s.current(u, t) {
		s.metrics.FetchesTotal.WithLabelValues(resultStale).Inc()
		s.logger.Debug("Discarded stale reference fetch", "group", u.group, "layer", u.layer)
		return
	}
	if err != nil {
		s.fail(u, t, "Reference fetch failed", err)
		return
	}

	group, ok := s.latestGroup(u.group)
	if !ok {
		s.drop(u, t)
		s.logger.Debug("Group removed during reference fetch", "group", u.group, "layer", u.layer)
		return
	}
	merged, ok := Merge(group, u.layer, toGeometries(u.layer, features))
	if !ok {
		s.drop(u, t)
		return
	}

	err = recovery.RecoverToError(s.logger, "Replace", func() error {
		return s.sink.Replace(ctx, merged)
	})
	if err != nil {
		s.fail(u, t, "Reference geometries not stored", err)
		return
	}

	s.mu.Lock()
	if s.inflight[u] == t {
		delete(s.inflight, u)
		s.cache[u] = t.signature
	}
	s.metrics.CacheEntries.Set(float64(len(s.cache)))
	s.mu.Unlock()

	s.metrics.FetchesTotal.WithLabelValues(resultSuccess).Inc()
	s.logger.Debug("Reference geometries updated",
		"group", u.group,
		"layer", u.layer,
		"features", len(features),
	)
}

func (s *Synchronizer) fetchFeatures(ctx context.Context, u unit, t *task) ([]feature.Feature, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	return recovery.RecoverToValue(s.logger, "FetchFilteredGeometries", func() ([]feature.Feature, error) {
		return s.fetcher.FetchFilteredGeometries(ctx, u.layer, t.signature)
	})
}

// current reports whether t is still the in-flight task of u.
func (s *Synchronizer) current(u unit, t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[u] == t
}

// drop clears t without caching its signature.
func (s *Synchronizer) drop(u unit, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[u] == t {
		delete(s.inflight, u)
	}
}

func (s *Synchronizer) fail(u unit, t *task, msg string, err error) {
	s.drop(u, t)
	s.metrics.FetchesTotal.WithLabelValues(resultError).Inc()
	s.logger.Warn(msg,
		"group", u.group,
		"layer", u.layer,
		"error", err,
	)
}

// latestGroup returns the newest known snapshot of a group.
func (s *Synchronizer) latestGroup(id string) (filter.Group, bool) {
	if snap, ok := s.sink.(Snapshotter); ok {
		return snap.Snapshot().Group(id)
	}
	s.mu.Lock()
	forest := s.latest
	s.mu.Unlock()
	return forest.Group(id)
}
