package comm

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// SampleHandler is called when a sample is decoded.
type SampleHandler interface {
	HandleSample(context.Context, msgs.NavData)
}

// HandleSampleFunc is func type of SampleHandler.
type HandleSampleFunc func(context.Context, msgs.NavData)

// HandleSample implements SampleHandler.
func (f HandleSampleFunc) HandleSample(ctx context.Context, s msgs.NavData) {
	f(ctx, s)
}

// Defaults for Reader.
const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultReadSize     = 512
)

// Reader reads the byte stream and feeds the Parser.
// It's the producer side of a session and owns the Parser while running.
type Reader struct {
	Source  io.Reader
	Parser  *Parser
	Handler SampleHandler
	// PollInterval is the delay after a read returns no data.
	PollInterval time.Duration
	ReadSize     int
}

// NewReader creates a Reader.
func NewReader(src io.Reader, handler SampleHandler) *Reader {
	return &Reader{
		Source:       src,
		Parser:       NewParser(),
		Handler:      handler,
		PollInterval: DefaultPollInterval,
		ReadSize:     DefaultReadSize,
	}
}

// Run processes the stream until ctx is cancelled or the source fails.
// Source failures are returned as *TransportError.
func (r *Reader) Run(ctx context.Context) error {
	size := r.ReadSize
	if size <= 0 {
		size = DefaultReadSize
	}
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	buf := make([]byte, size)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := r.Source.Read(buf)
		if n > 0 {
			for _, sample := range r.Parser.Parse(buf[:n]) {
				if h := r.Handler; h != nil {
					h.HandleSample(ctx, sample)
				}
			}
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				// the source is closed on cancel.
				return ctx.Err()
			}
			glog.V(2).Infof("reader stopped: %v", err)
			return &TransportError{Err: err}
		}
		if n == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
}
