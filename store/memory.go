// Package store holds the current filter forest and publishes snapshots of it.
//
// Memory is the mutation sink the reference-layer synchronizer writes merged
// groups back into. Every mutation produces a new immutable forest snapshot
// that is delivered to subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hugr-lab/layerfilter/filter"
)

var (
	// ErrGroupNotFound indicates a replacement for a group that does not exist.
	ErrGroupNotFound = errors.New("group not found")
)

// Memory is an in-memory, goroutine-safe forest store.
type Memory struct {
	mu     sync.Mutex
	forest *filter.Forest
	subs   map[int]chan *filter.Forest
	nextID int
}

// NewMemory creates a store holding groups.
func NewMemory(groups ...filter.Group) *Memory {
	return &Memory{
		forest: filter.NewForest(groups),
		subs:   make(map[int]chan *filter.Forest),
	}
}

// Snapshot returns the current forest.
func (m *Memory) Snapshot() *filter.Forest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forest
}

// Load replaces the whole forest.
func (m *Memory) Load(f *filter.Forest) {
	if f == nil {
		f = filter.NewForest(nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forest = f
	m.publishLocked()
}

// Put inserts g or replaces the group with the same id.
func (m *Memory) Put(g filter.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forest = m.forest.With(g)
	m.publishLocked()
}

// Delete removes the group with the given id. Reports whether it existed.
func (m *Memory) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.forest.Has(id) {
		return false
	}
	m.forest = m.forest.Without(id)
	m.publishLocked()
	return true
}

// Replace swaps an existing group for g.
// Returns ErrGroupNotFound if no group with g.ID exists.
func (m *Memory) Replace(ctx context.Context, g filter.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.forest.Has(g.ID) {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, g.ID)
	}
	m.forest = m.forest.With(g)
	m.publishLocked()
	return nil
}

// Subscribe returns a channel receiving forest snapshots after every
// mutation, starting with the current one. Slow readers only see the latest
// snapshot. The channel is closed when ctx is done.
func (m *Memory) Subscribe(ctx context.Context) <-chan *filter.Forest {
	ch := make(chan *filter.Forest, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.forest
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()
	return ch
}

// publishLocked delivers the current forest to every subscriber, dropping an
// undelivered older snapshot. Must be called with mu held.
func (m *Memory) publishLocked() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m.forest
	}
}
