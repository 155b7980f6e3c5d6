// Package metrics exports link counters to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/monitor"
	"github.com/robotalks/bahrs.go/pkg/session"
)

const namespace = "bahrs"

// StatusSource provides the session snapshot.
type StatusSource interface {
	Status() session.Status
}

// StatsSource provides the consumer counters.
type StatsSource interface {
	Stats() monitor.Stats
}

// Collector implements prometheus.Collector over the session and monitor
// counters. It's also a monitor.Sink recording the latest value of every
// field.
type Collector struct {
	Session StatusSource
	Monitor StatsSource

	bytes, frames, skipped  *prometheus.Desc
	rejected                *prometheus.Desc
	queued, capacity, drops *prometheus.Desc
	running                 *prometheus.Desc
	received, missing       *prometheus.Desc
	values                  *prometheus.GaugeVec
}

// NewCollector creates a Collector. mon may be nil.
func NewCollector(s StatusSource, mon StatsSource) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		Session:  s,
		Monitor:  mon,
		bytes:    desc("received_bytes_total", "Bytes read from the link."),
		frames:   desc("frames_total", "Frames accepted."),
		skipped:  desc("skipped_bytes_total", "Bytes skipped while hunting for the sync marker."),
		rejected: desc("rejected_frames_total", "Candidate frames discarded.", "reason"),
		queued:   desc("queue_length", "Samples waiting in the delivery queue."),
		capacity: desc("queue_capacity", "Capacity of the delivery queue."),
		drops:    desc("queue_dropped_total", "Samples evicted from a full queue."),
		running:  desc("session_running", "1 when the link is being read."),
		received: desc("samples_received_total", "Samples drained by the consumer."),
		missing:  desc("samples_missing_total", "Sequence numbers skipped."),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "navdata_value",
			Help:      "Latest present value of a NavData field.",
		}, []string{"field"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.bytes, c.frames, c.skipped, c.rejected,
		c.queued, c.capacity, c.drops, c.running,
		c.received, c.missing,
	} {
		ch <- d
	}
	c.values.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.Session.Status()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter(c.bytes, st.Stats.Bytes)
	counter(c.frames, st.Stats.Frames)
	counter(c.skipped, st.Stats.Skipped)
	counter(c.rejected, st.Stats.ChecksumErrors, "checksum")
	counter(c.rejected, st.Stats.Unsupported, "unsupported")
	counter(c.rejected, st.Stats.SizeMismatches, "size")
	gauge(c.queued, float64(st.Queued))
	gauge(c.capacity, float64(st.Capacity))
	counter(c.drops, st.Dropped)
	if st.Running {
		gauge(c.running, 1)
	} else {
		gauge(c.running, 0)
	}
	if c.Monitor != nil {
		ms := c.Monitor.Stats()
		counter(c.received, ms.Received)
		counter(c.missing, ms.Missing)
	}
	c.values.Collect(ch)
}

// HandleSamples implements monitor.Sink.
func (c *Collector) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	for n := range samples {
		for _, f := range msgs.Fields {
			if v, ok := samples[n].Get(f).Get(); ok {
				c.values.WithLabelValues(f.String()).Set(v)
			}
		}
	}
	return nil
}

// NewRegistry creates a registry with the Collector and the Go runtime
// collectors.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}
