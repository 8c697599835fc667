package aggregator

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidch/flow/internal/expiry"
	"github.com/davidch/flow/internal/flow"
)

func udpFrame(src, dst [4]byte, srcPort, dstPort uint16, totalIPLen int) []byte {
	frame := make([]byte, 14+totalIPLen)
	binary.BigEndian.PutUint16(frame[12:14], 0x0800)
	ip := frame[14:]
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(totalIPLen))
	ip[9] = 17
	copy(ip[12:16], src[:])
	copy(ip[16:20], dst[:])
	udp := ip[20:]
	binary.BigEndian.PutUint16(udp[0:2], srcPort)
	binary.BigEndian.PutUint16(udp[2:4], dstPort)
	return frame
}

type recordingSink struct {
	batches [][]*flow.Record
	failing bool
}

func (s *recordingSink) Export(records []*flow.Record) error {
	if s.failing {
		return errors.New("sink failure")
	}
	s.batches = append(s.batches, records)
	return nil
}

func policy() expiry.Policy {
	return expiry.Policy{Active: 60 * time.Second, Inactive: 10 * time.Second}
}

func TestIngest_MissCreatesFlow(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1024, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	err := agg.Ingest(t0, udpFrame([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1000, 53, 60))
	require.NoError(t, err)

	assert.Equal(t, 1, agg.CachedFlows())
	assert.Equal(t, t0, agg.FirstPacket())
	assert.Equal(t, t0, agg.LastPacket())
}

func TestIngest_HitAccumulatesCounters(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1024, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	frame := udpFrame([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1000, 53, 60)
	require.NoError(t, agg.Ingest(t0, frame))
	require.NoError(t, agg.Ingest(t0.Add(time.Second), frame))

	assert.Equal(t, 1, agg.CachedFlows())
	require.NoError(t, agg.Flush())
	require.Len(t, sink.batches, 1)
	assert.Equal(t, uint32(2), sink.batches[0][0].Packets)
	assert.Equal(t, uint32(120), sink.batches[0][0].Octets)
}

func TestIngest_NonIPv4FrameIsSkippedButTimestampsAdvance(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1024, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	frame := make([]byte, 14)
	binary.BigEndian.PutUint16(frame[12:14], 0x86DD) // IPv6, unsupported

	require.NoError(t, agg.Ingest(t0, frame))
	assert.Equal(t, 0, agg.CachedFlows())
	assert.Equal(t, t0, agg.LastPacket())
}

func TestIngest_EvictsOldestWhenFull(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	require.NoError(t, agg.Ingest(t0, udpFrame([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 53, 60)))
	require.NoError(t, agg.Ingest(t0.Add(time.Second), udpFrame([4]byte{10, 0, 0, 3}, [4]byte{10, 0, 0, 4}, 2, 53, 60)))

	require.Len(t, sink.batches, 1)
	assert.Equal(t, 1, agg.CachedFlows())
}

func TestIngest_SweepExportsExpiredBeforeParsing(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1024, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	require.NoError(t, agg.Ingest(t0, udpFrame([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 53, 60)))
	require.NoError(t, agg.Ingest(t0.Add(61*time.Second), udpFrame([4]byte{10, 0, 0, 5}, [4]byte{10, 0, 0, 6}, 3, 53, 60)))

	require.Len(t, sink.batches, 1)
	assert.Equal(t, 1, agg.CachedFlows())
}

func TestIngest_SinkFailurePropagates(t *testing.T) {
	sink := &recordingSink{failing: true}
	agg := New(Config{CacheSize: 1, Policy: policy()}, sink)

	t0 := time.Unix(1000, 0)
	require.NoError(t, agg.Ingest(t0, udpFrame([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 53, 60)))
	err := agg.Ingest(t0.Add(time.Second), udpFrame([4]byte{10, 0, 0, 3}, [4]byte{10, 0, 0, 4}, 2, 53, 60))
	require.Error(t, err)
}

func TestFlush_EmptyCacheIsNoop(t *testing.T) {
	sink := &recordingSink{}
	agg := New(Config{CacheSize: 1024, Policy: policy()}, sink)
	require.NoError(t, agg.Flush())
	assert.Empty(t, sink.batches)
}
