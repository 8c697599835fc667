// Package flowcache implements the ordered associative flow store of
// spec.md §4.2: a key-ordered index for lookup/insert/delete and an
// age-ordered index for oldest-first eviction and export draining.
//
// Per spec.md §9's re-architecture note, the original's pointer-heavy tree
// nodes are replaced by a single ordered container (here, two
// github.com/google/btree indices sharing *flow.Record values) with no
// back-pointers; the age-ordered minimum is a btree.Min() call rather than
// a linear scan.
package flowcache

import (
	"github.com/google/btree"

	"github.com/davidch/flow/internal/flow"
)

const degree = 32

// Cache is a dual-indexed store of live flows. It enforces no capacity
// itself: the aggregator evicts the oldest flow before inserting when the
// cache is full. It is not safe for concurrent use; the pipeline driver is
// the sole owner (spec.md §5).
type Cache struct {
	byKey *btree.BTreeG[*flow.Record]
	byAge *btree.BTreeG[*flow.Record]
	size  int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		byKey: btree.NewG(degree, func(a, b *flow.Record) bool {
			return flow.CompareKey(a.Key, b.Key) < 0
		}),
		byAge: btree.NewG(degree, func(a, b *flow.Record) bool {
			return flow.CompareAge(a, b) < 0
		}),
	}
}

// Len reports the number of cached flows. Invariant 1 of spec.md §3: this
// always equals the number of entries actually stored.
func (c *Cache) Len() int { return c.size }

// Lookup returns the record for key, and whether it was found.
func (c *Cache) Lookup(key flow.Key) (*flow.Record, bool) {
	probe := &flow.Record{Key: key}
	rec, ok := c.byKey.Get(probe)
	return rec, ok
}

// Insert adds rec under its key. The caller must ensure the key is not
// already present (invariant 3 of spec.md §3): the aggregator mutates
// in place on a hit and only calls Insert on a miss.
func (c *Cache) Insert(rec *flow.Record) {
	c.byKey.ReplaceOrInsert(rec)
	c.byAge.ReplaceOrInsert(rec)
	c.size++
}

// Delete removes the entry for key, if present. It is a no-op if absent.
func (c *Cache) Delete(key flow.Key) {
	probe := &flow.Record{Key: key}
	rec, ok := c.byKey.Delete(probe)
	if !ok {
		return
	}
	c.byAge.Delete(rec)
	c.size--
}

// FindOldest returns the minimal record under age order, or nil if empty.
func (c *Cache) FindOldest() *flow.Record {
	rec, ok := c.byAge.Min()
	if !ok {
		return nil
	}
	return rec
}

// DrainOldestFirst repeatedly removes the oldest record and hands it to
// sink, until the cache is empty.
func (c *Cache) DrainOldestFirst(sink func(*flow.Record)) {
	for {
		rec := c.FindOldest()
		if rec == nil {
			return
		}
		c.Delete(rec.Key)
		sink(rec)
	}
}

// AscendAge calls fn for every record in age order (oldest first), stopping
// early if fn returns false. It must not mutate the cache; collect keys and
// call Delete after the scan completes.
func (c *Cache) AscendAge(fn func(*flow.Record) bool) {
	c.byAge.Ascend(func(rec *flow.Record) bool {
		return fn(rec)
	})
}
