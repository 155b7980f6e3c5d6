// Package monitor is the consumer side of a session: it drains the queue
// at a fixed interval and hands batches to sinks.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/queue"
)

// Sink consumes batches of samples in arrival order.
// The batch is owned by the sink once passed.
type Sink interface {
	HandleSamples(ctx context.Context, samples []msgs.NavData) error
}

// SinkFunc is func form of Sink.
type SinkFunc func(context.Context, []msgs.NavData) error

// HandleSamples implements Sink.
func (f SinkFunc) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	return f(ctx, samples)
}

// Stats are the counters of a Monitor.
type Stats struct {
	SeqStats
	Batches  uint64 `json:"batches"`
	Retained int    `json:"retained"`
}

// Monitor drains Queue on every loop iteration.
type Monitor struct {
	Queue  *queue.Queue
	Window *Window
	Sinks  []Sink

	lock    sync.Mutex
	seq     SeqTracker
	batches uint64
}

// New creates a Monitor retaining samples for retention.
func New(q *queue.Queue, retention time.Duration) *Monitor {
	return &Monitor{Queue: q, Window: NewWindow(retention)}
}

// AddSink appends sinks.
func (m *Monitor) AddSink(sinks ...Sink) *Monitor {
	m.Sinks = append(m.Sinks, sinks...)
	return m
}

// AddToLoop implements framework.LoopAdder.
func (m *Monitor) AddToLoop(loop *fx.Loop) {
	loop.AddController(m)
}

// Control implements framework.Controller.
func (m *Monitor) Control(cc fx.ControlContext) error {
	samples := m.Queue.DrainAll()
	defer m.Window.Trim(cc.Time())
	if len(samples) == 0 {
		return nil
	}

	m.lock.Lock()
	for n := range samples {
		if missing := m.seq.Track(samples[n].Seq); missing > 0 {
			glog.V(1).Infof("%d samples missing before seq %d", missing, samples[n].Seq)
		}
	}
	m.batches++
	m.lock.Unlock()

	m.Window.Add(samples...)
	for _, sink := range m.Sinks {
		if err := sink.HandleSamples(cc.Context(), samples); err != nil {
			glog.Errorf("sink error: %v", err)
		}
	}
	return nil
}

// Run implements framework.Runnable. It schedules an early iteration when
// the queue is half full so bursts don't overflow it.
func (m *Monitor) Run(ctx context.Context) error {
	ctl := fx.LoopCtlFrom(ctx)
	if ctl == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.Queue.Notify():
			if m.Queue.Len()*2 >= m.Queue.Cap() {
				ctl.TriggerNext()
			}
		}
	}
}

// ResetSeq forgets the last sequence number, e.g. when a new session starts.
func (m *Monitor) ResetSeq() {
	m.lock.Lock()
	m.seq.Reset()
	m.lock.Unlock()
}

// Stats returns the counters.
func (m *Monitor) Stats() Stats {
	m.lock.Lock()
	st := Stats{SeqStats: m.seq.Stats(), Batches: m.batches}
	m.lock.Unlock()
	st.Retained = m.Window.Len()
	return st
}
