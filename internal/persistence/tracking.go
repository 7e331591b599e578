package persistence

import (
	"github.com/frahmantamala/timekeeper/internal/core/codec"
)

// Entity is anything a collection can hold and journal.
type Entity interface {
	comparable
	Index() int64
	Fields() codec.Fields
}

type Action int

const (
	Created Action = iota + 1
	Deleted
)

func (a Action) String() string {
	switch a {
	case Created:
		return "CREATE"
	case Deleted:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

type Change[T any] struct {
	Item   T
	Action Action
}

// ChangeTrackingSet records every successful mutation in an ordered log in
// the same critical section as the mutation itself. The log is drained by
// ChangedData.
type ChangeTrackingSet[T Entity] struct {
	set       *ConcurrentSet[T]
	changes   []Change[T]
	highWater int64
}

func NewChangeTrackingSet[T Entity]() *ChangeTrackingSet[T] {
	return &ChangeTrackingSet[T]{set: NewConcurrentSet[T]()}
}

func (c *ChangeTrackingSet[T]) Add(item T) bool {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	return c.addTrackedLocked(item)
}

func (c *ChangeTrackingSet[T]) AddAll(items []T) int {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	added := 0
	for _, item := range items {
		if c.addTrackedLocked(item) {
			added++
		}
	}
	return added
}

func (c *ChangeTrackingSet[T]) Remove(item T) bool {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	return c.removeTrackedLocked(item)
}

// Replace swaps old for updated as a delete followed by a create. Nothing
// changes when old is not present.
func (c *ChangeTrackingSet[T]) Replace(old, updated T) bool {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	if !c.removeTrackedLocked(old) {
		return false
	}
	c.addTrackedLocked(updated)
	return true
}

// AddWithoutTracking is for bulk loading from disk, where writing the item
// back out would be wasted work.
func (c *ChangeTrackingSet[T]) AddWithoutTracking(item T) bool {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	if !c.set.addLocked(item) {
		return false
	}
	c.raiseHighWater(item)
	return true
}

// ChangedData returns the pending log and empties it.
func (c *ChangeTrackingSet[T]) ChangedData() []Change[T] {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	out := c.changes
	c.changes = nil
	return out
}

func (c *ChangeTrackingSet[T]) ClearModifications() {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	c.changes = nil
}

// NextIndex is one past the highest index this set has ever held. Deleting
// the newest item does not free its index.
func (c *ChangeTrackingSet[T]) NextIndex() int64 {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	return c.highWater + 1
}

func (c *ChangeTrackingSet[T]) ToList() []T                       { return c.set.ToList() }
func (c *ChangeTrackingSet[T]) Find(pred func(T) bool) []T        { return c.set.Find(pred) }
func (c *ChangeTrackingSet[T]) First(pred func(T) bool) (T, bool) { return c.set.First(pred) }
func (c *ChangeTrackingSet[T]) Contains(item T) bool              { return c.set.Contains(item) }
func (c *ChangeTrackingSet[T]) Len() int                          { return c.set.Len() }

func (c *ChangeTrackingSet[T]) addTrackedLocked(item T) bool {
	if !c.set.addLocked(item) {
		return false
	}
	c.raiseHighWater(item)
	c.changes = append(c.changes, Change[T]{Item: item, Action: Created})
	return true
}

func (c *ChangeTrackingSet[T]) removeTrackedLocked(item T) bool {
	if !c.set.removeLocked(item) {
		return false
	}
	c.changes = append(c.changes, Change[T]{Item: item, Action: Deleted})
	return true
}

func (c *ChangeTrackingSet[T]) raiseHighWater(item T) {
	if idx := item.Index(); idx > c.highWater {
		c.highWater = idx
	}
}

func (c *ChangeTrackingSet[T]) highWaterMark() int64 {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	return c.highWater
}

// raiseHighWaterTo is for restoring a mark journaled separately from the
// items, after the item that set it was deleted.
func (c *ChangeTrackingSet[T]) raiseHighWaterTo(idx int64) {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	if idx > c.highWater {
		c.highWater = idx
	}
}

func (c *ChangeTrackingSet[T]) holdsIndex(idx int64) bool {
	_, ok := c.set.First(func(item T) bool { return item.Index() == idx })
	return ok
}

// snapshot copies items and the index high-water mark, dropping the log.
func (c *ChangeTrackingSet[T]) snapshot() *ChangeTrackingSet[T] {
	c.set.mu.Lock()
	defer c.set.mu.Unlock()
	out := NewChangeTrackingSet[T]()
	for item := range c.set.items {
		out.set.items[item] = struct{}{}
	}
	out.highWater = c.highWater
	return out
}
