// Package exporter batches flow records into NetFlow v5 datagrams and
// hands the encoded bytes to a Sink, per spec.md §4.5.
package exporter

import (
	"time"

	"github.com/davidch/flow/internal/flow"
	"github.com/davidch/flow/internal/flowerr"
	"github.com/davidch/flow/internal/logger"
	"github.com/davidch/flow/internal/wire"
)

// Sink is the UDP transport boundary (spec.md §4.5 step 3/5): a single
// datagram's worth of bytes in, an error out. The concrete implementation
// lives in internal/udpsink.
type Sink interface {
	Send(datagram []byte) error
}

// Clock reports the Recording State timestamps the exporter derives each
// datagram header from (spec.md §4.5 step 1).
type Clock interface {
	FirstPacket() time.Time
	LastPacket() time.Time
}

// Exporter owns the Sequence State of spec.md §3 and the export counters
// of the Recording State. It is not safe for concurrent use.
type Exporter struct {
	sink  Sink
	clock Clock
	log   *logger.Logger

	flowSequence  uint32
	exportedFlows uint64
	datagramsSent uint64
}

// New returns an Exporter writing to sink, deriving sysuptime/unix
// timestamps from clock.
func New(sink Sink, clock Clock, log *logger.Logger) *Exporter {
	return &Exporter{sink: sink, clock: clock, log: log}
}

// SetClock binds the clock the exporter reads datagram timestamps from.
// Constructing the exporter and the aggregator that supplies Clock forms a
// cycle (the aggregator needs the exporter as its Sink); callers break it
// by calling New with a nil clock and SetClock once the aggregator exists.
func (e *Exporter) SetClock(clock Clock) { e.clock = clock }

// ExportedFlows returns the running total of exported flow records.
func (e *Exporter) ExportedFlows() uint64 { return e.exportedFlows }

// DatagramsSent returns the running total of datagrams successfully sent.
func (e *Exporter) DatagramsSent() uint64 { return e.datagramsSent }

// Export emits records oldest-first in batches of up to
// wire.MaxFlowsPerDatagram, per spec.md §4.5. On the first send failure it
// returns a *flowerr.PacketSendError and stops; the caller treats this as
// fatal for the current batch (spec.md §4.5 step 5, §7).
func (e *Exporter) Export(records []*flow.Record) error {
	for start := 0; start < len(records); start += wire.MaxFlowsPerDatagram {
		end := start + wire.MaxFlowsPerDatagram
		if end > len(records) {
			end = len(records)
		}
		if err := e.sendBatch(records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) sendBatch(batch []*flow.Record) error {
	first := e.clock.FirstPacket()
	last := e.clock.LastPacket()

	hdr := wire.Header{
		SysUptimeMs:  wire.SysUptimeMs(first, last),
		UnixSecs:     uint32(last.Unix()),
		UnixNsecs:    uint32(last.Nanosecond() / 1000) * 1000,
		FlowSequence: e.flowSequence,
	}

	datagram, err := wire.EncodeDatagram(hdr, batch, first)
	if err != nil {
		return err
	}

	if err := e.sink.Send(datagram); err != nil {
		return &flowerr.PacketSendError{Cause: err}
	}

	e.flowSequence += uint32(len(batch))
	e.exportedFlows += uint64(len(batch))
	e.datagramsSent++

	if e.log != nil {
		e.log.Debug("datagram sent",
			"records", len(batch),
			"flow_sequence", hdr.FlowSequence,
		)
	}
	return nil
}
