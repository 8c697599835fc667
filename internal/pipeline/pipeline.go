// Package pipeline implements the Pipeline Driver of spec.md §4.6: pull
// frames from a capture source, run the aggregator on each, and flush the
// cache at end-of-stream.
package pipeline

import (
	"io"
	"time"

	"github.com/davidch/flow/internal/flowerr"
)

// FrameSource yields timestamped Ethernet frames, one per call, in capture
// order. It returns io.EOF when the capture is exhausted. This is the
// capture-reader collaborator spec.md §1 specifies only through this
// interface; internal/capture supplies the concrete pcap implementation.
type FrameSource interface {
	ReadFrame() (ts time.Time, data []byte, err error)
}

// Aggregator is the subset of *aggregator.Aggregator the driver needs.
type Aggregator interface {
	Ingest(ts time.Time, frame []byte) error
	Flush() error
}

// Result reports how many frames Run read. The operator-facing totals
// ("Exported K flows in M packets": flows = exported-flow-total, packets =
// datagrams-sent) are not part of it; the caller reads them from the
// exporter counters.
type Result struct {
	FramesRead int
}

// Run reads frames from src until EOF or a fatal error, dispatching each
// to agg, then performs the terminal flush (spec.md §4.6: "this is the
// only place the active-timer is ignored").
func Run(src FrameSource, agg Aggregator) (Result, error) {
	var result Result

	for {
		ts, data, err := src.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, &flowerr.PcapError{Cause: err}
		}
		result.FramesRead++

		if err := agg.Ingest(ts, data); err != nil {
			return result, err
		}
	}

	if err := agg.Flush(); err != nil {
		return result, err
	}
	return result, nil
}
