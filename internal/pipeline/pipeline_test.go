package pipeline

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	frames [][]byte
	pos    int
}

func (s *fakeSource) ReadFrame() (time.Time, []byte, error) {
	if s.pos >= len(s.frames) {
		return time.Time{}, nil, io.EOF
	}
	frame := s.frames[s.pos]
	s.pos++
	return time.Unix(int64(s.pos), 0), frame, nil
}

type recordingAggregator struct {
	ingested  int
	flushed   bool
	ingestErr error
	flushErr  error
}

func (a *recordingAggregator) Ingest(ts time.Time, frame []byte) error {
	a.ingested++
	return a.ingestErr
}

func (a *recordingAggregator) Flush() error {
	a.flushed = true
	return a.flushErr
}

func TestRun_ReadsUntilEOFThenFlushes(t *testing.T) {
	src := &fakeSource{frames: [][]byte{{1}, {2}, {3}}}
	agg := &recordingAggregator{}

	result, err := Run(src, agg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.FramesRead)
	assert.Equal(t, 3, agg.ingested)
	assert.True(t, agg.flushed)
}

func TestRun_StopsOnIngestError(t *testing.T) {
	src := &fakeSource{frames: [][]byte{{1}, {2}}}
	agg := &recordingAggregator{ingestErr: errors.New("boom")}

	_, err := Run(src, agg)
	require.Error(t, err)
	assert.Equal(t, 1, agg.ingested)
	assert.False(t, agg.flushed)
}

func TestRun_PropagatesFlushError(t *testing.T) {
	src := &fakeSource{frames: [][]byte{{1}}}
	agg := &recordingAggregator{flushErr: errors.New("flush boom")}

	_, err := Run(src, agg)
	require.Error(t, err)
	assert.True(t, agg.flushed)
}

func TestRun_EmptyCaptureStillFlushes(t *testing.T) {
	src := &fakeSource{}
	agg := &recordingAggregator{}

	result, err := Run(src, agg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FramesRead)
	assert.True(t, agg.flushed)
}
