package monitor

import (
	"sync"
	"time"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// Point is a present value of a field at a time.
type Point struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
}

// Window retains samples captured within Span of the latest trim time.
type Window struct {
	Span time.Duration

	lock    sync.RWMutex
	samples []msgs.NavData
}

// NewWindow creates a Window.
func NewWindow(span time.Duration) *Window {
	return &Window{Span: span}
}

// Add appends samples in arrival order.
func (w *Window) Add(samples ...msgs.NavData) {
	w.lock.Lock()
	w.samples = append(w.samples, samples...)
	w.lock.Unlock()
}

// Trim drops samples captured before now-Span.
func (w *Window) Trim(now time.Time) {
	cutoff := now.Add(-w.Span)
	w.lock.Lock()
	defer w.lock.Unlock()
	n := 0
	for n < len(w.samples) && w.samples[n].Time.Before(cutoff) {
		n++
	}
	if n == 0 {
		return
	}
	// capture times are non-decreasing so the expired ones are a prefix.
	w.samples = append(w.samples[:0], w.samples[n:]...)
}

// Len returns the number of retained samples.
func (w *Window) Len() int {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return len(w.samples)
}

// Samples returns a copy of the retained samples, oldest first.
func (w *Window) Samples() []msgs.NavData {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return append([]msgs.NavData(nil), w.samples...)
}

// Tail returns a copy of the latest n samples.
func (w *Window) Tail(n int) []msgs.NavData {
	w.lock.RLock()
	defer w.lock.RUnlock()
	if n > len(w.samples) {
		n = len(w.samples)
	}
	if n <= 0 {
		return nil
	}
	return append([]msgs.NavData(nil), w.samples[len(w.samples)-n:]...)
}

// Latest returns the most recent sample.
func (w *Window) Latest() (msgs.NavData, bool) {
	w.lock.RLock()
	defer w.lock.RUnlock()
	if len(w.samples) == 0 {
		return msgs.NavData{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Points returns the series of a field. Samples where the field is
// absent are skipped, never reported as zero.
func (w *Window) Points(f msgs.Field) []Point {
	w.lock.RLock()
	defer w.lock.RUnlock()
	var points []Point
	for n := range w.samples {
		if v, ok := w.samples[n].Get(f).Get(); ok {
			points = append(points, Point{Time: w.samples[n].Time, Value: v})
		}
	}
	return points
}
