package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/bahrs.go/pkg/l0/comm"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/monitor"
	"github.com/robotalks/bahrs.go/pkg/queue"
	"github.com/robotalks/bahrs.go/pkg/session"
)

type fakeStatus struct{}

func (fakeStatus) Status() session.Status {
	return session.Status{
		Port:     "/dev/ttyTEST",
		Running:  true,
		Stats:    comm.Stats{Frames: 42},
		Capacity: 3000,
	}
}

func testSample(seq uint8) msgs.NavData {
	return msgs.RawNavData{
		Seq:      seq,
		Height:   1000,
		Pitch:    50,
		Validity: msgs.ValidHeight | msgs.ValidPitch,
	}.Scale(time.Now())
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	mon := monitor.New(queue.New(10), time.Minute)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"}))
	s := NewServer("", fakeStatus{}, mon, reg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub.Close()
		ts.Close()
	})
	return s, ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t)
	var st Status
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/status", &st))
	require.Equal(t, "/dev/ttyTEST", st.Session.Port)
	require.True(t, st.Session.Running)
	require.EqualValues(t, 42, st.Session.Stats.Frames)
	require.NotNil(t, st.Monitor)
	require.Zero(t, st.Clients)
}

func TestWindow(t *testing.T) {
	s, ts := newTestServer(t)
	s.Monitor.Window.Add(testSample(1), testSample(2), testSample(3))

	var points []monitor.Point
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/window/pitch", &points))
	require.Len(t, points, 3)
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/window/pitch?last=2", &points))
	require.Len(t, points, 2)
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/window/roll", &points))
	require.Empty(t, points)
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/window/speed", &points))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/window/pitch?last=x", &points))
}

func TestMetrics(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "test_total 0"))
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t)
	req, err := http.NewRequest("GET", ts.URL+"/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://plot.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSamplesFeed(t *testing.T) {
	s, ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/samples"
	conn, err := websocket.Dial(wsURL, "", ts.URL)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return s.Hub.Clients() == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.HandleSamples(context.Background(), []msgs.NavData{testSample(1), testSample(2)}))

	var msg string
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, websocket.Message.Receive(conn, &msg))
	var samples []msgs.NavData
	require.NoError(t, json.Unmarshal([]byte(msg), &samples))
	require.Len(t, samples, 2)
	require.Equal(t, uint8(2), samples[1].Seq)
	require.True(t, samples[0].Height.Valid())
	require.False(t, samples[0].Roll.Valid())

	conn.Close()
	require.Eventually(t, func() bool {
		return s.Hub.Clients() == 0
	}, time.Second, time.Millisecond)
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := NewHub()
	c := &client{sendCh: make(chan []byte, 1)}
	h.clients[c] = struct{}{}
	batch := []msgs.NavData{testSample(1)}
	require.NoError(t, h.HandleSamples(context.Background(), batch))
	require.NoError(t, h.HandleSamples(context.Background(), batch))
	require.EqualValues(t, 1, h.Dropped())
	require.Len(t, c.sendCh, 1)
}
