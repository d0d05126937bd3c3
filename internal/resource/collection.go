package resource

import (
	"errors"
	"strings"
	"sync"
)

// ErrMissingID is returned when a mutation result carries no identifier. The
// collection is left untouched.
var ErrMissingID = errors.New("mutation result has no identifier")

// KeyFunc extracts the identifier of an entity. An empty string means the
// identifier is missing.
type KeyFunc[T any] func(T) string

// Collection is the client-side copy of one entity type: an ordered list plus
// an independent "current" slot for detail views. Entities are stored by
// value; readers always receive copies of the list.
type Collection[T any] struct {
	mu      sync.RWMutex
	key     KeyFunc[T]
	items   []T
	current *T
}

// NewCollection returns an empty collection keyed by key.
func NewCollection[T any](key KeyFunc[T]) *Collection[T] {
	return &Collection[T]{key: key}
}

// ReplaceAll discards the stored list and keeps exactly items, in order.
func (c *Collection[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = clone(items)
}

// UpsertOne replaces the entity with the same identifier in place, or appends
// it when no such entity exists.
func (c *Collection[T]) UpsertOne(item T) error {
	id := strings.TrimSpace(c.key(item))
	if id == "" {
		return ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.key(*c.current) == id {
		v := item
		c.current = &v
	}
	for i := range c.items {
		if c.key(c.items[i]) == id {
			c.items[i] = item
			return nil
		}
	}
	c.items = append(c.items, item)
	return nil
}

// RemoveOne removes the entity with id. It reports whether anything was
// removed; removing an absent id is a no-op.
func (c *Collection[T]) RemoveOne(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.key(*c.current) == id {
		c.current = nil
	}
	for i := range c.items {
		if c.key(c.items[i]) == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// SetCurrent stores the detail entity; nil clears it.
func (c *Collection[T]) SetCurrent(item *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item == nil {
		c.current = nil
		return
	}
	v := *item
	c.current = &v
}

// Current returns the detail entity, if any.
func (c *Collection[T]) Current() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		var zero T
		return zero, false
	}
	return *c.current, true
}

// Items returns a copy of the stored list.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.items)
}

// Get looks an entity up by identifier.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of stored entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Reset empties the list and the current slot.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.current = nil
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
