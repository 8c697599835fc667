// Package flowerr holds the typed error taxonomy of spec.md §7. Each kind
// is a distinct type so callers can tell them apart with errors.As while
// still exposing the underlying cause through Unwrap.
package flowerr

import "fmt"

// InvalidOptionError is raised by CLI parsing or endpoint resolution when a
// flag or the collector address is malformed.
type InvalidOptionError struct{ Cause error }

func (e *InvalidOptionError) Error() string { return fmt.Sprintf("invalid option: %v", e.Cause) }
func (e *InvalidOptionError) Unwrap() error { return e.Cause }

// InvalidInputFileError is raised when the capture file cannot be opened or
// its link type is not Ethernet.
type InvalidInputFileError struct{ Cause error }

func (e *InvalidInputFileError) Error() string { return fmt.Sprintf("invalid input file: %v", e.Cause) }
func (e *InvalidInputFileError) Unwrap() error { return e.Cause }

// MultipleOptionError is raised when a flag appears twice on the command line.
type MultipleOptionError struct{ Flag string }

func (e *MultipleOptionError) Error() string {
	return fmt.Sprintf("option -%s specified more than once", e.Flag)
}

// ActiveRangeError is raised when -a falls outside [60, 3600].
type ActiveRangeError struct{ Value int }

func (e *ActiveRangeError) Error() string {
	return fmt.Sprintf("active timeout %d out of range [60, 3600]", e.Value)
}

// InactiveRangeError is raised when -i falls outside [10, 600].
type InactiveRangeError struct{ Value int }

func (e *InactiveRangeError) Error() string {
	return fmt.Sprintf("inactive timeout %d out of range [10, 600]", e.Value)
}

// EntriesNumberRangeError is raised when -m falls outside [1024, 524288].
type EntriesNumberRangeError struct{ Value int }

func (e *EntriesNumberRangeError) Error() string {
	return fmt.Sprintf("cache size %d out of range [1024, 524288]", e.Value)
}

// MemoryHandlingError is raised when a required allocation cannot be satisfied.
type MemoryHandlingError struct{ Cause error }

func (e *MemoryHandlingError) Error() string { return fmt.Sprintf("memory handling error: %v", e.Cause) }
func (e *MemoryHandlingError) Unwrap() error { return e.Cause }

// SocketError is raised by endpoint resolution or UDP connect failures.
type SocketError struct{ Cause error }

func (e *SocketError) Error() string { return fmt.Sprintf("socket error: %v", e.Cause) }
func (e *SocketError) Unwrap() error { return e.Cause }

// PcapError is raised by capture read failures.
type PcapError struct{ Cause error }

func (e *PcapError) Error() string { return fmt.Sprintf("pcap error: %v", e.Cause) }
func (e *PcapError) Unwrap() error { return e.Cause }

// PacketSendError is raised by a failed UDP send to the collector. Per
// spec.md §4.5/§7 this is fatal: the caller aborts the current export batch
// and disposes remaining state without retrying.
type PacketSendError struct{ Cause error }

func (e *PacketSendError) Error() string { return fmt.Sprintf("packet send error: %v", e.Cause) }
func (e *PacketSendError) Unwrap() error { return e.Cause }

// WireEncodeError is raised by the wire codec when asked to encode zero or
// more than MaxFlowsPerDatagram records in a single datagram.
type WireEncodeError struct{ Reason string }

func (e *WireEncodeError) Error() string { return fmt.Sprintf("wire encode error: %s", e.Reason) }
