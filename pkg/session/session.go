// Package session owns the lifecycle of a telemetry link: the transport,
// the stream parser running on it and the queue handed to consumers.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/comm"
	"github.com/robotalks/bahrs.go/pkg/queue"
)

// Errors of session operations.
var (
	ErrRunning = errors.New("session already running")
	ErrNoPort  = errors.New("port not specified")
)

// Opener opens the transport of a port.
type Opener interface {
	Open(port string) (io.ReadCloser, error)
}

// OpenFunc is func form of Opener.
type OpenFunc func(port string) (io.ReadCloser, error)

// Open implements Opener.
func (f OpenFunc) Open(port string) (io.ReadCloser, error) {
	return f(port)
}

// Status is a snapshot of a Session.
type Status struct {
	Port      string     `json:"port"`
	Running   bool       `json:"running"`
	StartedAt time.Time  `json:"started_at,omitempty"`
	Error     string     `json:"error,omitempty"`
	Stats     comm.Stats `json:"stats"` // cumulative over restarts
	Queued    int        `json:"queued"`
	Capacity  int        `json:"capacity"`
	Dropped   uint64     `json:"dropped"`
}

// Session runs the producer side of a link. Samples are pushed to Queue,
// which outlives individual Start/Stop cycles.
type Session struct {
	Config *Config
	Opener Opener
	Queue  *queue.Queue

	lock      sync.Mutex
	port      string
	parser    *comm.Parser
	base      comm.Stats
	cancel    func()
	doneCh    chan struct{}
	err       error
	startedAt time.Time
}

// New creates a Session.
func New(conf *Config, opener Opener) *Session {
	doneCh := make(chan struct{})
	close(doneCh)
	return &Session{
		Config: conf,
		Opener: opener,
		Queue:  queue.New(conf.QueueCapacity()),
		parser: comm.NewParser(),
		doneCh: doneCh,
	}
}

// Name implements framework.Named.
func (s *Session) Name() string {
	return "session"
}

// Start opens port and starts reading. Config.Port is used when port is
// empty. The reader stops when ctx is done, Stop is called, or the
// transport fails.
func (s *Session) Start(ctx context.Context, port string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.cancel != nil {
		return ErrRunning
	}
	if port == "" {
		port = s.Config.Port
	}
	if port == "" {
		return ErrNoPort
	}
	transport, err := s.Opener.Open(port)
	if err != nil {
		return &comm.TransportError{Err: err}
	}

	reader := comm.NewReader(transport, s.Queue)
	if s.Config.PollInterval > 0 {
		reader.PollInterval = s.Config.PollInterval
	}
	runCtx, cancel := context.WithCancel(ctx)
	doneCh := make(chan struct{})
	s.base = s.base.Add(s.parser.Stats())
	s.port, s.parser = port, reader.Parser
	s.cancel, s.doneCh = cancel, doneCh
	s.err, s.startedAt = nil, time.Now()
	glog.Infof("session started on %s", port)

	go func() {
		err := fx.RunWithContextCloser(runCtx, transport, func() error {
			return reader.Run(runCtx)
		})
		s.lock.Lock()
		if !errors.Is(err, context.Canceled) {
			s.err = err
		}
		s.cancel = nil
		s.lock.Unlock()
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			glog.Errorf("session on %s stopped: %v", port, err)
		} else {
			glog.Infof("session on %s stopped", port)
		}
		close(doneCh)
	}()
	return nil
}

// Stop signals the reader to stop and waits until the transport is closed.
// It returns the error which terminated the session, if any.
func (s *Session) Stop() error {
	s.lock.Lock()
	cancel, doneCh := s.cancel, s.doneCh
	s.lock.Unlock()
	if cancel != nil {
		cancel()
	}
	<-doneCh
	return s.Err()
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.doneCh
}

// Err returns the transport error which stopped the session.
func (s *Session) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

// Running reports whether the reader is active.
func (s *Session) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cancel != nil
}

// Stats returns the parser counters accumulated over all runs.
func (s *Session) Stats() comm.Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stats()
}

func (s *Session) stats() comm.Stats {
	return s.base.Add(s.parser.Stats())
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.lock.Lock()
	st := Status{
		Port:      s.port,
		Running:   s.cancel != nil,
		StartedAt: s.startedAt,
		Stats:     s.stats(),
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	s.lock.Unlock()
	st.Queued = s.Queue.Len()
	st.Capacity = s.Queue.Cap()
	st.Dropped = s.Queue.Dropped()
	return st
}

// Run implements framework.Runnable. It starts on Config.Port and returns
// when ctx is done or the transport fails.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx, ""); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	case <-s.Done():
		return s.Err()
	}
}
