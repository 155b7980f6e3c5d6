package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

func sample(seq int) msgs.NavData {
	return msgs.NavData{Seq: uint8(seq)}
}

func seqs(samples []msgs.NavData) []uint8 {
	out := make([]uint8, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Seq)
	}
	return out
}

func TestCapacityFor(t *testing.T) {
	require.Equal(t, 3000, CapacityFor(100, 30*time.Second))
	require.Equal(t, 50, CapacityFor(100, 500*time.Millisecond))
	require.Equal(t, 1, CapacityFor(0, time.Second))
}

func TestQueueFIFO(t *testing.T) {
	q := New(4)
	require.Nil(t, q.DrainAll())
	for i := 1; i <= 3; i++ {
		require.False(t, q.Push(sample(i)))
	}
	require.Equal(t, 3, q.Len())
	require.Equal(t, []uint8{1, 2, 3}, seqs(q.DrainAll()))
	require.Equal(t, 0, q.Len())
	require.Nil(t, q.DrainAll())
}

func TestQueueDropOldest(t *testing.T) {
	q := New(3)
	for i := 1; i <= 3; i++ {
		require.False(t, q.Push(sample(i)))
	}
	require.True(t, q.Push(sample(4)))
	require.True(t, q.Push(sample(5)))
	require.Equal(t, 3, q.Len())
	require.Equal(t, uint64(2), q.Dropped())
	require.Equal(t, uint64(5), q.Pushed())
	require.Equal(t, []uint8{3, 4, 5}, seqs(q.DrainAll()))
}

func TestQueueWrapAround(t *testing.T) {
	q := New(4)
	for i := 1; i <= 3; i++ {
		q.Push(sample(i))
	}
	q.DrainAll()
	for i := 4; i <= 7; i++ {
		q.Push(sample(i))
	}
	dst := []msgs.NavData{sample(0)}
	require.Equal(t, []uint8{0, 4, 5, 6, 7}, seqs(q.DrainInto(dst)))
	require.Equal(t, 4, q.Cap())
}

func TestQueueNotify(t *testing.T) {
	q := New(2)
	q.Push(sample(1))
	q.Push(sample(2))
	select {
	case <-q.Notify():
	default:
		t.Fatal("expect notification")
	}
	select {
	case <-q.Notify():
		t.Fatal("notifications should collapse")
	default:
	}
}

func TestQueueConcurrent(t *testing.T) {
	const total = 10000
	q := New(64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Push(sample(i))
		}
	}()
	var received int
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	drain := func() {
		received += len(q.DrainAll())
	}
	for {
		select {
		case <-done:
			drain()
			require.Equal(t, uint64(total), uint64(received)+q.Dropped())
			require.LessOrEqual(t, q.Len(), q.Cap())
			return
		default:
			drain()
		}
	}
}

func TestNewPanics(t *testing.T) {
	require.Panics(t, func() { New(0) })
}
