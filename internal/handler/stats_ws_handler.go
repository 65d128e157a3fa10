package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/model"
	ws "github.com/stemsi/typequiz-backend/internal/websocket"
)

// DefaultCounterPollInterval is how often the stream rereads the counter.
const DefaultCounterPollInterval = 2 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// CounterReader reads the public tests-taken counter.
type CounterReader interface {
	TestsTaken(ctx context.Context) (*model.PublicStats, error)
}

// StatsWSHandler streams the tests-taken counter over WebSocket.
type StatsWSHandler struct {
	counter      CounterReader
	log          zerolog.Logger
	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

// NewStatsWSHandler creates a new StatsWSHandler.
func NewStatsWSHandler(counter CounterReader, log zerolog.Logger, allowedOrigins []string) *StatsWSHandler {
	return &StatsWSHandler{
		counter:      counter,
		log:          log.With().Str("component", "stats_ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
		pollInterval: DefaultCounterPollInterval,
	}
}

// StatsStream godoc
// WS /ws/v1/stats/stream
// Sends the counter on connect and whenever it changes. Answers
// {"action":"ping"} with {"event":"pong"}.
func (h *StatsWSHandler) StatsStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Debug().Msg("Client connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The read loop never writes; replies go through outbox so the
	// connection has a single writer.
	outbox := make(chan interface{}, 8)
	go h.readLoop(ctx, cancel, conn, outbox, wsLog)

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	last := int64(-1)
	push := func() bool {
		stats, err := h.counter.TestsTaken(ctx)
		if err != nil {
			wsLog.Warn().Err(err).Msg("Failed to read counter")
			return true
		}
		if stats.TestsTaken == last {
			return true
		}
		last = stats.TestsTaken
		return ws.WriteCounter(conn, last) == nil
	}

	if !push() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbox:
			if err := ws.WriteTyped(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if !push() {
				return
			}
		}
	}
}

func (h *StatsWSHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outbox chan<- interface{}, wsLog zerolog.Logger) {
	defer cancel()
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		select {
		case outbox <- reply:
		case <-ctx.Done():
			return
		}
	}
}
