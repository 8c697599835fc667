package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidch/flow/internal/flowerr"
)

func TestParse_Defaults(t *testing.T) {
	opts, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "-", opts.CaptureFile)
	assert.Equal(t, "127.0.0.1:2055", opts.Collector)
	assert.Equal(t, 60, opts.Active)
	assert.Equal(t, 10, opts.Inactive)
	assert.Equal(t, 1024, opts.CacheSize)
	assert.False(t, opts.Help)
}

func TestParse_AllFlags(t *testing.T) {
	opts, err := Parse([]string{"-f", "capture.pcap", "-c", "10.0.0.1:9996", "-a", "120", "-i", "30", "-m", "2048"})
	require.NoError(t, err)
	assert.Equal(t, "capture.pcap", opts.CaptureFile)
	assert.Equal(t, "10.0.0.1:9996", opts.Collector)
	assert.Equal(t, 120, opts.Active)
	assert.Equal(t, 30, opts.Inactive)
	assert.Equal(t, 2048, opts.CacheSize)
}

func TestParse_HelpWinsOnlyWhenScanCompletesWithoutError(t *testing.T) {
	opts, err := Parse([]string{"-h", "-a", "120"})
	require.NoError(t, err)
	assert.True(t, opts.Help)
	assert.Equal(t, 120, opts.Active)
}

func TestParse_MalformedFlagBeatsHelpRegardlessOfOrder(t *testing.T) {
	_, err := Parse([]string{"-a", "notanumber", "-h"})
	require.Error(t, err)
	var invalidErr *flowerr.InvalidOptionError
	require.ErrorAs(t, err, &invalidErr)

	_, err = Parse([]string{"-h", "-a", "notanumber"})
	require.Error(t, err)
	require.ErrorAs(t, err, &invalidErr)
}

func TestParse_DuplicateFlagIsFatal(t *testing.T) {
	_, err := Parse([]string{"-a", "100", "-a", "200"})
	require.Error(t, err)
	var multiErr *flowerr.MultipleOptionError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, "a", multiErr.Flag)
}

func TestParse_UnknownFlagIsFatal(t *testing.T) {
	_, err := Parse([]string{"-z", "1"})
	require.Error(t, err)
	var invalidErr *flowerr.InvalidOptionError
	require.ErrorAs(t, err, &invalidErr)
}

func TestParse_ActiveOutOfRange(t *testing.T) {
	_, err := Parse([]string{"-a", "59"})
	require.Error(t, err)
	var rangeErr *flowerr.ActiveRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestParse_InactiveOutOfRange(t *testing.T) {
	_, err := Parse([]string{"-i", "601"})
	require.Error(t, err)
	var rangeErr *flowerr.InactiveRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestParse_CacheSizeOutOfRange(t *testing.T) {
	_, err := Parse([]string{"-m", "1023"})
	require.Error(t, err)
	var rangeErr *flowerr.EntriesNumberRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestParse_MissingArgument(t *testing.T) {
	_, err := Parse([]string{"-a"})
	require.Error(t, err)
	var invalidErr *flowerr.InvalidOptionError
	require.ErrorAs(t, err, &invalidErr)
}
