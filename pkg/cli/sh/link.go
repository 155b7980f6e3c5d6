package sh

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/monitor"
	"github.com/robotalks/bahrs.go/pkg/session"
)

// Link is a session with a consumer loop retaining its samples.
type Link struct {
	Session *session.Session
	Monitor *monitor.Monitor
	// OnStopped is called when the session stops by itself.
	OnStopped func(port string, err error)

	lock   sync.Mutex
	cancel func()
	gen    int
}

// NewLink creates a Link.
func NewLink(conf *session.Config, opener session.Opener) *Link {
	s := session.New(conf, opener)
	return &Link{
		Session: s,
		Monitor: monitor.New(s.Queue, conf.Retention),
	}
}

// Connect starts the session on port and the consumer loop.
func (l *Link) Connect(port string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.cancel != nil {
		return session.ErrRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Session.Start(ctx, port); err != nil {
		cancel()
		return err
	}
	l.Monitor.ResetSeq()
	loop := fx.NewLoop()
	loop.Interval = l.Session.Config.DisplayInterval
	loop.Add(l.Monitor)
	l.cancel = cancel
	l.gen++
	go loop.Run(ctx)
	go l.watch(ctx, l.gen, l.Session.Status().Port, l.Session.Done())
	return nil
}

func (l *Link) watch(ctx context.Context, gen int, port string, doneCh <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-doneCh:
	}
	l.lock.Lock()
	stopped := l.gen == gen && l.cancel != nil
	if stopped {
		l.cancel()
		l.cancel = nil
	}
	l.lock.Unlock()
	if fn := l.OnStopped; stopped && fn != nil {
		fn(port, l.Session.Err())
	}
}

// Disconnect stops the session and the loop.
func (l *Link) Disconnect() error {
	l.lock.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.lock.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	return l.Session.Stop()
}

// Connected reports whether the session is running.
func (l *Link) Connected() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.cancel != nil
}

// Tail returns the latest n retained samples.
func (l *Link) Tail(n int) []msgs.NavData {
	return l.Monitor.Window.Tail(n)
}

// LinkStatus combines the session and consumer counters.
type LinkStatus struct {
	Session session.Status `json:"session"`
	Monitor monitor.Stats  `json:"monitor"`
}

// Status returns a snapshot.
func (l *Link) Status() LinkStatus {
	return LinkStatus{Session: l.Session.Status(), Monitor: l.Monitor.Stats()}
}

// FormatStatus prints LinkStatus into friendly string for display.
func FormatStatus(st LinkStatus) string {
	var w bytes.Buffer
	state := "stopped"
	if st.Session.Running {
		state = "running"
	}
	port := st.Session.Port
	if port == "" {
		port = "-"
	}
	fmt.Fprintf(&w, "port %s: %s", port, state)
	if st.Session.Error != "" {
		fmt.Fprintf(&w, " (%s)", st.Session.Error)
	}
	ps := st.Session.Stats
	fmt.Fprintf(&w, "\nframes %d, bytes %d, skipped %d, checksum errors %d, unsupported %d",
		ps.Frames, ps.Bytes, ps.Skipped, ps.ChecksumErrors, ps.Unsupported)
	fmt.Fprintf(&w, "\nqueue %d/%d, dropped %d", st.Session.Queued, st.Session.Capacity, st.Session.Dropped)
	fmt.Fprintf(&w, "\nreceived %d, missing %d, retained %d",
		st.Monitor.Received, st.Monitor.Missing, st.Monitor.Retained)
	return w.String()
}
