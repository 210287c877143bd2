// Package memory is a process-local storage backend implementing the
// repository interfaces. It backs local development (database.driver:
// memory) and the service tests. It has no transactions and no persistence.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection in maps guarded by one RWMutex each.
type Store struct {
	now func() time.Time

	users     *collection[userDoc]
	trainings *collection[trainingDoc]
	blocks    *collection[blockDoc]
	plans     *collection[planDoc]
	messages  *collection[messageDoc]
}

type Option func(*Store)

// WithClock replaces time.Now for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		users:     newCollection[userDoc](),
		trainings: newCollection[trainingDoc](),
		blocks:    newCollection[blockDoc](),
		plans:     newCollection[planDoc](),
		messages:  newCollection[messageDoc](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready is always true; there is no connection step.
func (s *Store) Ready() bool { return true }

// RunInTransaction runs fn directly. Writes made before a failure stay visible.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:     &userRepository{s: s},
		Trainings: &trainingRepository{s: s},
		Blocks:    &blockRepository{s: s},
		Plans:     &planRepository{s: s},
		Messages:  &messageRepository{s: s},
		Tx:        s,
		Health:    s,
	}
}

func (s *Store) timestamp() time.Time {
	// match the millisecond precision of BSON dates
	return s.now().UTC().Truncate(time.Millisecond)
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// collection is a keyed set of documents. Values are stored and returned by
// copy through the clone method of each document type.
type collection[T cloner[T]] struct {
	mu    sync.RWMutex
	items map[string]T
}

type cloner[T any] interface {
	clone() T
}

func newCollection[T cloner[T]]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.clone(), true
}

// filter returns copies of every matching document ordered by key.
func (c *collection[T]) filter(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for k, v := range c.items {
		if match == nil || match(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.items[k].clone())
	}
	return out
}

// update applies fn to the stored document under the write lock. fn reports
// whether it changed anything.
func (c *collection[T]) update(key string, fn func(existing T, found bool) (T, bool)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, found := c.items[key]
	next, write := fn(existing, found)
	if write {
		c.items[key] = next
	}
	return next.clone(), write
}

func (c *collection[T]) delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	return true
}
