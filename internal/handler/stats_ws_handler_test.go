package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/model"
	ws "github.com/stemsi/typequiz-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	total atomic.Int64
}

func (f *fakeCounter) TestsTaken(context.Context) (*model.PublicStats, error) {
	return &model.PublicStats{TestsTaken: f.total.Load()}, nil
}

func dialStats(t *testing.T, counter CounterReader, origins []string, header map[string]string) (*websocket.Conn, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewStatsWSHandler(counter, zerolog.Nop(), origins)
	h.pollInterval = 10 * time.Millisecond

	r := gin.New()
	r.GET("/ws/v1/stats/stream", h.StatsStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/stats/stream"
	hdr := make(map[string][]string)
	for k, v := range header {
		hdr[k] = []string{v}
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, err
}

func readEvent(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

func TestStatsStreamPushesCounterChanges(t *testing.T) {
	counter := &fakeCounter{}
	counter.total.Store(7)

	conn, err := dialStats(t, counter, nil, nil)
	require.NoError(t, err)

	var ev ws.CounterEvent
	readEvent(t, conn, &ev)
	assert.Equal(t, ws.EventCounter, ev.Event)
	assert.Equal(t, int64(7), ev.TestsTaken)

	counter.total.Store(8)
	readEvent(t, conn, &ev)
	assert.Equal(t, int64(8), ev.TestsTaken)
}

func TestStatsStreamAnswersPing(t *testing.T) {
	conn, err := dialStats(t, &fakeCounter{}, nil, nil)
	require.NoError(t, err)

	var first ws.CounterEvent
	readEvent(t, conn, &first)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	readEvent(t, conn, &pong)
	assert.Equal(t, ws.EventPong, pong.Event)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: "dance"}))
	var bad ws.ErrorResponse
	readEvent(t, conn, &bad)
	assert.Equal(t, ws.EventError, bad.Event)
	assert.Contains(t, bad.Error, "dance")
}

func TestStatsStreamChecksOrigin(t *testing.T) {
	origins := []string{"https://quiz.example"}

	_, err := dialStats(t, &fakeCounter{}, origins, map[string]string{"Origin": "https://evil.example"})
	assert.Error(t, err)

	conn, err := dialStats(t, &fakeCounter{}, origins, map[string]string{"Origin": "https://QUIZ.example"})
	require.NoError(t, err)
	var ev ws.CounterEvent
	readEvent(t, conn, &ev)
	assert.Equal(t, ws.EventCounter, ev.Event)
}
