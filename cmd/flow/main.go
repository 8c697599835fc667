// Command flow reads an Ethernet pcap capture, aggregates it into NetFlow
// v5 flow records, and exports them to a collector over UDP.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/davidch/flow/internal/aggregator"
	"github.com/davidch/flow/internal/capture"
	"github.com/davidch/flow/internal/cli"
	"github.com/davidch/flow/internal/expiry"
	"github.com/davidch/flow/internal/exporter"
	"github.com/davidch/flow/internal/flowerr"
	"github.com/davidch/flow/internal/logger"
	"github.com/davidch/flow/internal/pipeline"
	"github.com/davidch/flow/internal/resolver"
	"github.com/davidch/flow/internal/udpsink"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

// run wires cli -> resolver -> udpsink -> capture -> aggregator/exporter ->
// pipeline and returns the process exit code. It returns (rather than
// calling os.Exit directly) so every deferred Close runs on every exit
// path, including a fatal error partway through setup, per spec.md §5's
// "closed exactly once at teardown, regardless of which exit path is
// taken" requirement.
func run() int {
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		return reportFatal(err)
	}
	if opts.Help {
		fmt.Print(cli.Usage)
		return 0
	}

	collectorAddr, err := resolver.Resolve(opts.Collector)
	if err != nil {
		return reportFatal(err)
	}

	log, err := logger.NewLogger(&logger.Config{Level: "info", Format: "text"})
	if err != nil {
		return reportFatal(err)
	}

	fmt.Printf("flow %s\n", version)
	fmt.Printf("active_timer: %ds\n", opts.Active)
	fmt.Printf("inactive_timer: %ds\n", opts.Inactive)
	fmt.Printf("cache_size: %d\n", opts.CacheSize)
	fmt.Printf("netflow_collector:port: %s\n", collectorAddr.String())

	sink, err := udpsink.Dial(collectorAddr)
	if err != nil {
		return reportFatal(err)
	}
	defer sink.Close()

	reader, err := capture.Open(opts.CaptureFile)
	if err != nil {
		return reportFatal(err)
	}
	defer reader.Close()

	exp := exporter.New(sink, nil, log)
	agg := aggregator.New(aggregator.Config{
		CacheSize: opts.CacheSize,
		Policy: expiry.Policy{
			Active:   time.Duration(opts.Active) * time.Second,
			Inactive: time.Duration(opts.Inactive) * time.Second,
		},
	}, exp)
	exp.SetClock(agg)

	if _, err := pipeline.Run(reader, agg); err != nil {
		return reportFatal(err)
	}

	fmt.Printf("Exported %d flows in %d packets\n", exp.ExportedFlows(), exp.DatagramsSent())
	return 0
}

// reportFatal prints err to stderr per spec.md §6's "Error: " convention
// and returns the process exit code. Usage is also printed for the error
// kinds spec.md §7 marks "fatal; print help": InvalidOption, MultipleOption,
// ActiveRange, InactiveRange.
func reportFatal(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if printsUsage(err) {
		fmt.Fprint(os.Stderr, cli.Usage)
	}
	return 1
}

func printsUsage(err error) bool {
	var invalidOption *flowerr.InvalidOptionError
	var multipleOption *flowerr.MultipleOptionError
	var activeRange *flowerr.ActiveRangeError
	var inactiveRange *flowerr.InactiveRangeError
	switch {
	case errors.As(err, &invalidOption):
		return true
	case errors.As(err, &multipleOption):
		return true
	case errors.As(err, &activeRange):
		return true
	case errors.As(err, &inactiveRange):
		return true
	default:
		return false
	}
}
