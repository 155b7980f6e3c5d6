package comm

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// Stats are cumulative counters of a Parser.
type Stats struct {
	// Bytes received.
	Bytes uint64 `json:"bytes"`
	// Frames accepted.
	Frames uint64 `json:"frames"`
	// Skipped bytes while hunting for the sync marker.
	Skipped uint64 `json:"skipped"`
	// ChecksumErrors counts frames discarded for checksum mismatch.
	ChecksumErrors uint64 `json:"checksum_errors"`
	// Unsupported counts frames with unknown message type.
	Unsupported uint64 `json:"unsupported"`
	// SizeMismatches counts frames whose type expects another size.
	SizeMismatches uint64 `json:"size_mismatches"`
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Bytes:          s.Bytes + o.Bytes,
		Frames:         s.Frames + o.Frames,
		Skipped:        s.Skipped + o.Skipped,
		ChecksumErrors: s.ChecksumErrors + o.ChecksumErrors,
		Unsupported:    s.Unsupported + o.Unsupported,
		SizeMismatches: s.SizeMismatches + o.SizeMismatches,
	}
}

// Rejected is the number of candidate frames discarded.
func (s Stats) Rejected() uint64 {
	return s.ChecksumErrors + s.Unsupported + s.SizeMismatches
}

// Parser synchronizes on a byte stream and decodes frames.
// Parse must be called from a single goroutine, Stats can be
// called from anywhere.
type Parser struct {
	// Clock supplies capture time, time.Now if nil.
	Clock func() time.Time

	buf      []byte
	lastTime time.Time
	stats    Stats
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{buf: make([]byte, 0, FrameSize*4)}
}

// Stats returns a snapshot of the counters.
func (p *Parser) Stats() Stats {
	return Stats{
		Bytes:          atomic.LoadUint64(&p.stats.Bytes),
		Frames:         atomic.LoadUint64(&p.stats.Frames),
		Skipped:        atomic.LoadUint64(&p.stats.Skipped),
		ChecksumErrors: atomic.LoadUint64(&p.stats.ChecksumErrors),
		Unsupported:    atomic.LoadUint64(&p.stats.Unsupported),
		SizeMismatches: atomic.LoadUint64(&p.stats.SizeMismatches),
	}
}

// Buffered returns the number of bytes waiting for more input.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// Reset drops buffered bytes. Counters are kept.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
}

// Parse consumes data and returns samples decoded from complete frames,
// in arrival order.
func (p *Parser) Parse(data []byte) (samples []msgs.NavData) {
	atomic.AddUint64(&p.stats.Bytes, uint64(len(data)))
	p.buf = append(p.buf, data...)
	off, skipped := 0, uint64(0)
	for len(p.buf)-off >= FrameSize {
		window := p.buf[off : off+FrameSize]
		if window[0] != SyncMarker0 || window[1] != SyncMarker1 {
			off++
			skipped++
			continue
		}
		if skipped > 0 {
			atomic.AddUint64(&p.stats.Skipped, skipped)
			glog.V(3).Infof("resync: skipped %d bytes", skipped)
			skipped = 0
		}
		// one window is consumed whatever the outcome.
		off += FrameSize
		sample, err := DecodeFrame(window, p.now)
		if err != nil {
			p.reject(err)
			continue
		}
		atomic.AddUint64(&p.stats.Frames, 1)
		samples = append(samples, sample)
	}
	if skipped > 0 {
		atomic.AddUint64(&p.stats.Skipped, skipped)
		glog.V(3).Infof("resync: skipped %d bytes", skipped)
	}
	p.buf = p.buf[:copy(p.buf, p.buf[off:])]
	return
}

func (p *Parser) reject(err error) {
	var unsupported *UnsupportedTypeError
	var sizeErr *FrameSizeError
	switch {
	case errors.Is(err, ErrChecksum):
		atomic.AddUint64(&p.stats.ChecksumErrors, 1)
	case errors.As(err, &unsupported):
		atomic.AddUint64(&p.stats.Unsupported, 1)
	case errors.As(err, &sizeErr):
		atomic.AddUint64(&p.stats.SizeMismatches, 1)
	}
	glog.V(3).Infof("frame discarded: %v", err)
}

func (p *Parser) now() time.Time {
	var t time.Time
	if clock := p.Clock; clock != nil {
		t = clock()
	} else {
		t = time.Now()
	}
	if t.Before(p.lastTime) {
		t = p.lastTime
	}
	p.lastTime = t
	return t
}
