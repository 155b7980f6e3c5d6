// Package web serves the live sample feed, the session status and the
// metrics over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/monitor"
	"github.com/robotalks/bahrs.go/pkg/session"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// StatusSource provides the session snapshot.
type StatusSource interface {
	Status() session.Status
}

// Status is the response of GET /status.
type Status struct {
	Session session.Status `json:"session"`
	Monitor *monitor.Stats `json:"monitor,omitempty"`
	Clients int            `json:"clients"`
}

// Server exposes:
//
//	GET /samples          websocket, JSON array of samples per batch
//	GET /status           session and consumer counters
//	GET /window/{field}   retained points of a field
//	GET /metrics          Prometheus metrics
type Server struct {
	Addr     string
	Session  StatusSource
	Monitor  *monitor.Monitor
	Registry prometheus.Gatherer
	Hub      *Hub
}

// NewServer creates a Server. mon and reg may be nil.
func NewServer(addr string, s StatusSource, mon *monitor.Monitor, reg prometheus.Gatherer) *Server {
	return &Server{
		Addr:     addr,
		Session:  s,
		Monitor:  mon,
		Registry: reg,
		Hub:      NewHub(),
	}
}

// Router creates the routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/samples", s.Hub.Handler()).Methods("GET")
	r.HandleFunc("/status", s.handleStatus).Methods("GET")
	if s.Monitor != nil {
		r.HandleFunc("/window/{field}", s.handleWindow).Methods("GET")
	}
	if s.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}
	return r
}

// Handler wraps the router with CORS and access logs.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET"}),
	)
	return cors(handlers.LoggingHandler(accessLog{}, s.Router()))
}

// AddToLoop implements framework.LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("feed listening on %s", s.Addr)
	err := fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.Hub.Close()
		srv.Shutdown(shutdownCtx)
	}, srv.ListenAndServe)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// HandleSamples implements monitor.Sink.
func (s *Server) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	return s.Hub.HandleSamples(ctx, samples)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{Session: s.Session.Status(), Clients: s.Hub.Clients()}
	if s.Monitor != nil {
		ms := s.Monitor.Stats()
		st.Monitor = &ms
	}
	writeJSON(w, &st)
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	field, err := msgs.ParseField(mux.Vars(r)["field"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	points := s.Monitor.Window.Points(field)
	if val := r.URL.Query().Get("last"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			http.Error(w, "invalid last "+val, http.StatusBadRequest)
			return
		}
		if n < len(points) {
			points = points[len(points)-n:]
		}
	}
	if points == nil {
		points = []monitor.Point{}
	}
	writeJSON(w, points)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Errorf("write response: %v", err)
	}
}

type accessLog struct{}

func (accessLog) Write(p []byte) (int, error) {
	glog.V(1).Info(strings.TrimSpace(string(p)))
	return len(p), nil
}
