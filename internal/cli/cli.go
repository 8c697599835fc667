// Package cli parses and validates the command line described in
// spec.md §6. The standard flag package silently lets a flag be repeated
// (last write wins), so argument scanning is done by hand here to raise
// MultipleOptionError on a repeated flag.
package cli

import (
	"fmt"
	"strconv"

	"github.com/davidch/flow/internal/flowerr"
)

const (
	defaultCollector = "127.0.0.1:2055"
	defaultActive    = 60
	defaultInactive  = 10
	defaultCacheSize = 1024

	minActive, maxActive       = 60, 3600
	minInactive, maxInactive   = 10, 600
	minCacheSize, maxCacheSize = 1024, 524288
)

// Options holds the parsed and validated command line.
type Options struct {
	CaptureFile string
	Collector   string
	Active      int
	Inactive    int
	CacheSize   int
	Help        bool
}

// Usage is the text printed for -h and on InvalidOptionError,
// MultipleOptionError, ActiveRangeError and InactiveRangeError, matching
// spec.md §7's "fatal; print help" recovery.
const Usage = `Usage: flow [-f <file>] [-c <collector>[:<port>]] [-a <active>] [-i <inactive>] [-m <size>] [-h]

  -f  path to the capture (pcap) file; - = stdin (default stdin)
  -c  collector host[:port] (default 127.0.0.1:2055)
  -a  active timeout seconds, 60-3600 (default 60)
  -i  inactive timeout seconds, 10-600 (default 10)
  -m  flow-cache capacity, 1024-524288 (default 1024)
  -h  print this message and exit
`

// flagSpec describes a single recognized flag: whether it takes a value
// and how that value lands in Options.
type flagSpec struct {
	name     string
	hasValue bool
}

var knownFlags = []flagSpec{
	{"f", true},
	{"c", true},
	{"a", true},
	{"i", true},
	{"m", true},
	{"h", false},
}

func lookupFlag(name string) (flagSpec, bool) {
	for _, f := range knownFlags {
		if f.name == name {
			return f, true
		}
	}
	return flagSpec{}, false
}

// Parse validates args (as in os.Args[1:]) against spec.md §6's table.
// Each flag is validated the instant it's encountered in a single
// left-to-right scan: the first malformed flag anywhere in argv returns
// its error immediately, whether it comes before or after -h. -h itself
// only records that help was requested and lets the scan continue, so it
// wins only as the outcome of a scan that completed without error.
func Parse(args []string) (Options, error) {
	opts := Options{
		CaptureFile: "-",
		Collector:   defaultCollector,
		Active:      defaultActive,
		Inactive:    defaultInactive,
		CacheSize:   defaultCacheSize,
	}

	seen := make(map[string]bool)

	i := 0
	for i < len(args) {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			return opts, &flowerr.InvalidOptionError{Cause: fmt.Errorf("unexpected argument: %s", arg)}
		}
		name := arg[1:]

		spec, ok := lookupFlag(name)
		if !ok {
			return opts, &flowerr.InvalidOptionError{Cause: fmt.Errorf("unknown flag: -%s", name)}
		}
		if seen[name] {
			return opts, &flowerr.MultipleOptionError{Flag: name}
		}
		seen[name] = true

		if name == "h" {
			opts.Help = true
			i++
			continue
		}

		if !spec.hasValue {
			i++
			continue
		}
		if i+1 >= len(args) {
			return opts, &flowerr.InvalidOptionError{Cause: fmt.Errorf("flag -%s requires an argument", name)}
		}
		value := args[i+1]
		i += 2

		var err error
		switch name {
		case "f":
			opts.CaptureFile = value
		case "c":
			opts.Collector = value
		case "a":
			opts.Active, err = parseActive(value)
		case "i":
			opts.Inactive, err = parseInactive(value)
		case "m":
			opts.CacheSize, err = parseCacheSize(value)
		}
		if err != nil {
			return opts, err
		}
	}

	return opts, nil
}

func parseActive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &flowerr.InvalidOptionError{Cause: fmt.Errorf("-a requires a number, got %q", v)}
	}
	if n < minActive || n > maxActive {
		return 0, &flowerr.ActiveRangeError{Value: n}
	}
	return n, nil
}

func parseInactive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &flowerr.InvalidOptionError{Cause: fmt.Errorf("-i requires a number, got %q", v)}
	}
	if n < minInactive || n > maxInactive {
		return 0, &flowerr.InactiveRangeError{Value: n}
	}
	return n, nil
}

func parseCacheSize(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &flowerr.InvalidOptionError{Cause: fmt.Errorf("-m requires a number, got %q", v)}
	}
	if n < minCacheSize || n > maxCacheSize {
		return 0, &flowerr.EntriesNumberRangeError{Value: n}
	}
	return n, nil
}
