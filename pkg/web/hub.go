package web

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// ClientBacklog is the number of batches buffered per websocket client.
const ClientBacklog = 32

// Hub broadcasts sample batches to websocket clients as JSON arrays.
// A client which can't keep up loses batches instead of stalling others.
type Hub struct {
	lock    sync.RWMutex
	clients map[*client]struct{}
	dropped uint64
}

type client struct {
	conn   *websocket.Conn
	sendCh chan []byte
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of batches dropped for slow clients.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

// HandleSamples implements monitor.Sink.
func (h *Hub) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	if h.Clients() == 0 {
		return nil
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return err
	}
	h.lock.RLock()
	for c := range h.clients {
		select {
		case c.sendCh <- data:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
	h.lock.RUnlock()
	return nil
}

// Close disconnects all clients.
func (h *Hub) Close() error {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
	return nil
}

// Handler serves websocket connections.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, sendCh: make(chan []byte, ClientBacklog)}
	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	glog.V(1).Infof("feed client %s connected", conn.Request().RemoteAddr)

	closeCh := make(chan struct{})
	go func() {
		// incoming messages are ignored, reading only detects close.
		var msg []byte
		for websocket.Message.Receive(conn, &msg) == nil {
		}
		close(closeCh)
	}()

	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("feed client %s disconnected", conn.Request().RemoteAddr)
	}()
	for {
		select {
		case <-closeCh:
			return
		case data := <-c.sendCh:
			if err := websocket.Message.Send(conn, string(data)); err != nil {
				return
			}
		}
	}
}
