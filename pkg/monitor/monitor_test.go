package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/queue"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testControl struct {
	now time.Time
}

func (c *testControl) Time() time.Time          { return c.now }
func (c *testControl) Context() context.Context { return context.Background() }
func (c *testControl) TriggerNext()             {}

func sampleAt(seq uint8, offset time.Duration) msgs.NavData {
	return msgs.RawNavData{
		Seq:      seq,
		Height:   6000,
		Roll:     int16(seq),
		Validity: msgs.ValidHeight | msgs.ValidRoll,
	}.Scale(epoch.Add(offset))
}

func TestWindowTrim(t *testing.T) {
	w := NewWindow(time.Second)
	w.Add(sampleAt(1, 0), sampleAt(2, 500*time.Millisecond), sampleAt(3, 1500*time.Millisecond))
	require.Equal(t, 3, w.Len())

	w.Trim(epoch.Add(time.Second))
	require.Equal(t, 3, w.Len())

	w.Trim(epoch.Add(1600 * time.Millisecond))
	samples := w.Samples()
	require.Len(t, samples, 1)
	require.Equal(t, uint8(3), samples[0].Seq)

	latest, ok := w.Latest()
	require.True(t, ok)
	require.Equal(t, uint8(3), latest.Seq)

	w.Trim(epoch.Add(time.Hour))
	require.Zero(t, w.Len())
	_, ok = w.Latest()
	require.False(t, ok)
}

func TestWindowPointsSkipAbsent(t *testing.T) {
	w := NewWindow(time.Minute)
	absent := sampleAt(2, time.Millisecond)
	absent.Roll = msgs.None
	w.Add(sampleAt(1, 0), absent, sampleAt(3, 2*time.Millisecond))

	points := w.Points(msgs.FieldRoll)
	require.Len(t, points, 2)
	require.InDelta(t, msgs.AngleScale, points[0].Value, 1e-12)
	require.InDelta(t, 3*msgs.AngleScale, points[1].Value, 1e-12)
	require.Len(t, w.Points(msgs.FieldHeight), 3)
	require.Empty(t, w.Points(msgs.FieldYaw))
}

func TestWindowTail(t *testing.T) {
	w := NewWindow(time.Minute)
	require.Nil(t, w.Tail(3))
	w.Add(sampleAt(1, 0), sampleAt(2, 0), sampleAt(3, 0))
	tail := w.Tail(2)
	require.Len(t, tail, 2)
	require.Equal(t, uint8(2), tail[0].Seq)
	require.Len(t, w.Tail(10), 3)
}

func TestSeqTracker(t *testing.T) {
	var tr SeqTracker
	require.Equal(t, 0, tr.Track(254))
	require.Equal(t, 0, tr.Track(255))
	require.Equal(t, 0, tr.Track(0))
	require.Equal(t, 2, tr.Track(3))
	require.Equal(t, 0, tr.Track(3))
	require.Equal(t, SeqStats{Received: 5, Missing: 2, Duplicates: 1}, tr.Stats())

	tr.Reset()
	require.Equal(t, 0, tr.Track(100))
	require.EqualValues(t, 2, tr.Stats().Missing)
}

func TestMonitorControl(t *testing.T) {
	q := queue.New(10)
	m := New(q, time.Second)
	var batches [][]msgs.NavData
	m.AddSink(
		SinkFunc(func(ctx context.Context, samples []msgs.NavData) error {
			batches = append(batches, samples)
			return nil
		}),
		SinkFunc(func(context.Context, []msgs.NavData) error {
			return errors.New("ignored")
		}),
		LogSink{},
	)

	cc := &testControl{now: epoch}
	require.NoError(t, m.Control(cc))
	require.Empty(t, batches)

	q.Push(sampleAt(1, 0))
	q.Push(sampleAt(3, 10*time.Millisecond))
	require.NoError(t, m.Control(cc))
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	require.Zero(t, q.Len())

	st := m.Stats()
	require.EqualValues(t, 1, st.Batches)
	require.EqualValues(t, 2, st.Received)
	require.EqualValues(t, 1, st.Missing)
	require.Equal(t, 2, st.Retained)

	cc.now = epoch.Add(2 * time.Second)
	require.NoError(t, m.Control(cc))
	require.Zero(t, m.Stats().Retained)
}

func TestMonitorOnLoop(t *testing.T) {
	q := queue.New(4)
	m := New(q, time.Minute)
	received := make(chan int, 16)
	m.AddSink(SinkFunc(func(ctx context.Context, samples []msgs.NavData) error {
		received <- len(samples)
		return nil
	}))

	loop := fx.NewLoop()
	loop.Interval = time.Hour
	loop.Add(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// filling half of the queue schedules an iteration before the interval.
	q.Push(sampleAt(1, 0))
	q.Push(sampleAt(2, 0))
	select {
	case n := <-received:
		require.True(t, n >= 2)
	case <-time.After(time.Second):
		t.Fatal("queue not drained")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
