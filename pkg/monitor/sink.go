package monitor

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// LogSink logs a summary line per batch, and every sample at V(2).
type LogSink struct{}

// HandleSamples implements Sink.
func (LogSink) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	if len(samples) == 0 {
		return nil
	}
	last := samples[len(samples)-1]
	glog.Infof("%d samples seq %d-%d, latest: %s", len(samples), samples[0].Seq, last.Seq, last)
	if glog.V(2) {
		for _, s := range samples {
			glog.Info(s)
		}
	}
	return nil
}
