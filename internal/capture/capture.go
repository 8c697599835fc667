// Package capture implements the pipeline.FrameSource backed by a pcap
// capture file, wrapping gopacket/pcapgo's reader.
package capture

import (
	"io"
	"os"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/davidch/flow/internal/flowerr"
)

// Reader yields frames from a pcap file in capture order. Only Ethernet
// link-layer captures are accepted (spec.md §1, §4.4): anything else is
// rejected at Open time rather than surfacing as silent per-frame drops.
type Reader struct {
	file   *os.File
	reader *pcapgo.Reader
}

// Open opens filename for reading. Passing "-" reads the capture from
// stdin, matching the -f flag's convention in spec.md §6.
func Open(filename string) (*Reader, error) {
	var f *os.File
	var err error
	if filename == "-" {
		f = os.Stdin
	} else {
		f, err = os.Open(filename)
		if err != nil {
			return nil, &flowerr.InvalidInputFileError{Cause: err}
		}
	}

	r, err := pcapgo.NewReader(f)
	if err != nil {
		if f != os.Stdin {
			f.Close()
		}
		return nil, &flowerr.InvalidInputFileError{Cause: err}
	}
	if r.LinkType() != layers.LinkTypeEthernet {
		if f != os.Stdin {
			f.Close()
		}
		return nil, &flowerr.InvalidInputFileError{Cause: errUnsupportedLinkType{r.LinkType()}}
	}

	return &Reader{file: f, reader: r}, nil
}

// ReadFrame implements pipeline.FrameSource. It returns io.EOF once the
// capture is exhausted.
func (r *Reader) ReadFrame() (time.Time, []byte, error) {
	data, ci, err := r.reader.ReadPacketData()
	if err == io.EOF {
		return time.Time{}, nil, io.EOF
	}
	if err != nil {
		return time.Time{}, nil, &flowerr.PcapError{Cause: err}
	}
	return ci.Timestamp, data, nil
}

// Close closes the underlying file, unless it is stdin.
func (r *Reader) Close() error {
	if r.file == os.Stdin {
		return nil
	}
	return r.file.Close()
}

type errUnsupportedLinkType struct{ linkType layers.LinkType }

func (e errUnsupportedLinkType) Error() string {
	return "unsupported link type (only Ethernet captures are supported): " + e.linkType.String()
}
