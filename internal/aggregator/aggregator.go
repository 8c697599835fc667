// Package aggregator implements the per-packet ingestion/dispatch pipeline
// of spec.md §4.4: parse, key, update-or-create, evict-on-full, and the
// expiry sweep that runs ahead of every packet.
package aggregator

import (
	"time"

	"github.com/davidch/flow/internal/expiry"
	"github.com/davidch/flow/internal/flow"
	"github.com/davidch/flow/internal/flowcache"
)

// Sink is what the aggregator hands expired or evicted flows to. The
// concrete implementation is the exporter (spec.md §4.5); a fatal send
// failure propagates back up through Ingest/Flush unchanged.
type Sink interface {
	Export(records []*flow.Record) error
}

// Config holds the policy knobs of spec.md §6 (-a, -i, -m).
type Config struct {
	CacheSize int
	Policy    expiry.Policy
}

// Aggregator owns the flow cache and the Recording State of spec.md §3. It
// is not safe for concurrent use (spec.md §5: single-threaded pipeline).
type Aggregator struct {
	cache *flowcache.Cache
	cfg   Config
	sink  Sink

	firstPacketSet bool
	firstPacket    time.Time
	lastPacket     time.Time
	nextCacheID    uint64
}

// New returns an Aggregator bound to a fresh empty cache.
func New(cfg Config, sink Sink) *Aggregator {
	return &Aggregator{
		cache: flowcache.New(),
		cfg:   cfg,
		sink:  sink,
	}
}

// FirstPacket returns the immutable first-packet timestamp, zero until the
// first call to Ingest.
func (a *Aggregator) FirstPacket() time.Time { return a.firstPacket }

// LastPacket returns the most recently observed packet timestamp.
func (a *Aggregator) LastPacket() time.Time { return a.lastPacket }

// CachedFlows reports the number of flows currently held in the cache.
func (a *Aggregator) CachedFlows() int { return a.cache.Len() }

// Ingest processes one Ethernet frame, per spec.md §4.4. Non-IPv4 frames
// and non-TCP/UDP/ICMPv4 IPv4 packets are silently skipped after the
// expiry sweep still runs and the Recording State timestamps still update.
func (a *Aggregator) Ingest(ts time.Time, frame []byte) error {
	if !a.firstPacketSet {
		a.firstPacket = ts
		a.firstPacketSet = true
	}
	a.lastPacket = ts

	if expired := expiry.Sweep(a.cache, a.lastPacket, a.cfg.Policy); len(expired) > 0 {
		if err := a.sink.Export(expired); err != nil {
			return err
		}
	}

	parsed, ok := parseIPv4Packet(frame)
	if !ok {
		return nil
	}

	if rec, hit := a.cache.Lookup(parsed.key); hit {
		rec.Packets++
		rec.Octets += parsed.octets
		rec.TCPFlags |= parsed.tcpFlags
		rec.Last = ts
		return nil
	}

	if a.cache.Len() >= a.cfg.CacheSize {
		oldest := a.cache.FindOldest()
		a.cache.Delete(oldest.Key)
		if err := a.sink.Export([]*flow.Record{oldest}); err != nil {
			return err
		}
	}

	cacheID := a.nextCacheID
	a.nextCacheID = flow.NextCacheID(a.nextCacheID)

	a.cache.Insert(&flow.Record{
		Key:      parsed.key,
		Packets:  1,
		Octets:   parsed.octets,
		TCPFlags: parsed.tcpFlags,
		First:    ts,
		Last:     ts,
		CacheID:  cacheID,
	})
	return nil
}

// Flush drains every remaining cached flow, oldest first, through the
// sink, ignoring the active timer (spec.md §4.6 — the only place the
// active timer is ignored).
func (a *Aggregator) Flush() error {
	var remaining []*flow.Record
	a.cache.DrainOldestFirst(func(rec *flow.Record) {
		remaining = append(remaining, rec)
	})
	if len(remaining) == 0 {
		return nil
	}
	return a.sink.Export(remaining)
}
