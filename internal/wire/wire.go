// Package wire encodes NetFlow v5 datagrams: a 24-octet header followed by
// up to MaxFlowsPerDatagram 48-octet flow records, all multibyte fields
// big-endian, per spec.md §4.1.
package wire

import (
	"encoding/binary"
	"time"

	"github.com/davidch/flow/internal/flow"
	"github.com/davidch/flow/internal/flowerr"
)

const (
	headerSize = 24
	recordSize = 48

	// MaxFlowsPerDatagram is the hard cap on records per datagram
	// (MAX_FLOWS_NUMBER in spec.md §4.1).
	MaxFlowsPerDatagram = 30
)

// Header carries the fields of spec.md §4.1 that are derived once per
// datagram from Recording/Sequence State, not per record.
type Header struct {
	Count        uint16
	SysUptimeMs  uint32
	UnixSecs     uint32
	UnixNsecs    uint32
	FlowSequence uint32
}

// EncodeDatagram renders header + records as a single contiguous byte
// slice. It fails only if records is empty or longer than
// MaxFlowsPerDatagram, per spec.md §4.1.
func EncodeDatagram(hdr Header, records []*flow.Record, firstPacket time.Time) ([]byte, error) {
	n := len(records)
	if n == 0 {
		return nil, &flowerr.WireEncodeError{Reason: "zero records"}
	}
	if n > MaxFlowsPerDatagram {
		return nil, &flowerr.WireEncodeError{Reason: "more than 30 records"}
	}

	buf := make([]byte, headerSize+n*recordSize)
	encodeHeader(buf[:headerSize], hdr, uint16(n))
	for i, rec := range records {
		encodeRecord(buf[headerSize+i*recordSize:headerSize+(i+1)*recordSize], rec, firstPacket)
	}
	return buf, nil
}

func encodeHeader(b []byte, hdr Header, count uint16) {
	binary.BigEndian.PutUint16(b[0:2], 5) // version
	binary.BigEndian.PutUint16(b[2:4], count)
	binary.BigEndian.PutUint32(b[4:8], hdr.SysUptimeMs)
	binary.BigEndian.PutUint32(b[8:12], hdr.UnixSecs)
	binary.BigEndian.PutUint32(b[12:16], hdr.UnixNsecs)
	binary.BigEndian.PutUint32(b[16:20], hdr.FlowSequence)
	b[20] = 0 // engine_type
	b[21] = 0 // engine_id
	binary.BigEndian.PutUint16(b[22:24], 0) // sampling_interval
}

func encodeRecord(b []byte, rec *flow.Record, firstPacket time.Time) {
	copy(b[0:4], rec.SrcAddr[:])
	copy(b[4:8], rec.DstAddr[:])
	binary.BigEndian.PutUint32(b[8:12], 0) // nexthop
	binary.BigEndian.PutUint16(b[12:14], rec.Input)
	binary.BigEndian.PutUint16(b[14:16], 0) // output
	binary.BigEndian.PutUint32(b[16:20], rec.Packets)
	binary.BigEndian.PutUint32(b[20:24], rec.Octets)
	binary.BigEndian.PutUint32(b[24:28], msOffset(firstPacket, rec.First))
	binary.BigEndian.PutUint32(b[28:32], msOffset(firstPacket, rec.Last))
	binary.BigEndian.PutUint16(b[32:34], rec.SrcPort)
	binary.BigEndian.PutUint16(b[34:36], rec.DstPort)
	b[36] = 0 // pad1
	b[37] = rec.TCPFlags
	b[38] = rec.Protocol
	b[39] = rec.ToS
	binary.BigEndian.PutUint16(b[40:42], 0) // src_as
	binary.BigEndian.PutUint16(b[42:44], 0) // dst_as
	b[44] = 0                               // src_mask
	b[45] = 0                               // dst_mask
	binary.BigEndian.PutUint16(b[46:48], 0) // pad2
}

// msOffset returns the millisecond offset of t from origin, clamped to
// non-negative (a record's first/last timestamp is never before the
// run's first-packet timestamp, invariant 2 of spec.md §3).
func msOffset(origin, t time.Time) uint32 {
	d := t.Sub(origin)
	if d < 0 {
		d = 0
	}
	return uint32(d.Milliseconds())
}

// SysUptimeMs returns the millisecond duration between first and last, the
// datagram header's sysuptime_ms field of spec.md §4.1.
func SysUptimeMs(first, last time.Time) uint32 {
	return msOffset(first, last)
}
