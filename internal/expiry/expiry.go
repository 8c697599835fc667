// Package expiry implements the expiry sweep of spec.md §4.3: given the
// current cache and the last-packet timestamp, it moves every flow whose
// active/inactive/TCP-termination condition is met into a transient export
// slice, oldest-first.
package expiry

import (
	"time"

	"github.com/davidch/flow/internal/flow"
	"github.com/davidch/flow/internal/flowcache"
)

const (
	tcpFIN = 0x01
	tcpRST = 0x04
)

// Policy holds the active/inactive timeout thresholds as durations.
type Policy struct {
	Active   time.Duration
	Inactive time.Duration
}

// isExpired reports whether rec meets any expiry condition of spec.md §4.3
// as of now. Comparisons are strict (">"): a record whose age exactly
// equals the threshold is not yet expired.
func isExpired(rec *flow.Record, now time.Time, p Policy) bool {
	if now.Sub(rec.First) > p.Active {
		return true
	}
	if now.Sub(rec.Last) > p.Inactive {
		return true
	}
	return rec.TCPFlags&(tcpFIN|tcpRST) != 0
}

// Sweep scans cache for expired flows and removes them, returning the
// removed records in age order (oldest first, per spec.md §4.2's age
// order, preserved across the move into the export path per spec.md §4.3).
// now is the last-packet timestamp. Survivors are left untouched in cache.
func Sweep(cache *flowcache.Cache, now time.Time, p Policy) []*flow.Record {
	var matchedKeys []flow.Key
	var removed []*flow.Record

	cache.AscendAge(func(rec *flow.Record) bool {
		if isExpired(rec, now, p) {
			matchedKeys = append(matchedKeys, rec.Key)
			removed = append(removed, rec)
		}
		return true
	})

	for _, key := range matchedKeys {
		cache.Delete(key)
	}
	return removed
}
