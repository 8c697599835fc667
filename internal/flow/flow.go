// Package flow defines the identity and value types of a unidirectional
// transport-layer flow and the orderings used to keep them in a flowcache.
package flow

import (
	"bytes"
	"time"
)

// Key identifies a flow. Ingress interface is always 0 (spec.md §3): the
// core never learns a real interface index from a pcap file.
type Key struct {
	Input    uint16
	SrcAddr  [4]byte
	DstAddr  [4]byte
	Protocol uint8
	SrcPort  uint16 // host byte order
	DstPort  uint16 // host byte order
	ToS      uint8
}

// Record is the mutable value held for a cached flow.
type Record struct {
	Key

	Packets  uint32
	Octets   uint32
	TCPFlags uint8

	First time.Time
	Last  time.Time

	CacheID uint64 // lives on a circle of size 2^63, see Older.
}

// maxCacheID is 2^63; cache ids wrap modulo this value.
const maxCacheID = uint64(1) << 63

// NextCacheID advances a cache-id counter, wrapping modulo 2^63.
func NextCacheID(current uint64) uint64 {
	return (current + 1) % maxCacheID
}

// CompareKey implements the key order of spec.md §4.2: lexicographic over
// (input, src_addr, dst_addr, prot, src_port, dst_port, tos), addresses
// compared as raw 4-octet sequences and ports in host byte order.
func CompareKey(a, b Key) int {
	if a.Input != b.Input {
		return cmpUint16(a.Input, b.Input)
	}
	if c := bytes.Compare(a.SrcAddr[:], b.SrcAddr[:]); c != 0 {
		return c
	}
	if c := bytes.Compare(a.DstAddr[:], b.DstAddr[:]); c != 0 {
		return c
	}
	if a.Protocol != b.Protocol {
		return cmpUint8(a.Protocol, b.Protocol)
	}
	if a.SrcPort != b.SrcPort {
		return cmpUint16(a.SrcPort, b.SrcPort)
	}
	if a.DstPort != b.DstPort {
		return cmpUint16(a.DstPort, b.DstPort)
	}
	return cmpUint8(a.ToS, b.ToS)
}

// Older reports whether cache id a is older than cache id b under the
// wrap-aware relation of spec.md §4.2: ids live on a circle of size 2^63;
// a is older than b iff (a - b) mod 2^63 > 2^62.
func Older(a, b uint64) bool {
	diff := (a - b) % maxCacheID
	return diff > maxCacheID/2
}

// CompareAge implements the age order of spec.md §4.2: ascending by First
// (seconds then nanoseconds), ties broken by the wrap-aware cache-id
// relation.
func CompareAge(a, b *Record) int {
	if a.First.Before(b.First) {
		return -1
	}
	if a.First.After(b.First) {
		return 1
	}
	if a.CacheID == b.CacheID {
		return 0
	}
	if Older(a.CacheID, b.CacheID) {
		return -1
	}
	return 1
}

func cmpUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
