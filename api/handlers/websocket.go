package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/domain"
	"github.com/yourusername/ytmp3-go/pkg/logger"
)

const (
	pingInterval    = 30 * time.Second
	eventBufferSize = 64
	initialLogLines = 50
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventMessage is one pipeline event as pushed to websocket clients
type EventMessage struct {
	domain.Event
	Status string `json:"status"`
}

// EventWebSocketHandler streams pipeline events to websocket clients
type EventWebSocketHandler struct {
	queueMgr *app.QueueManager
	logger   *zap.Logger
}

// NewEventWebSocketHandler creates a new event stream handler
func NewEventWebSocketHandler(queueMgr *app.QueueManager, log *zap.Logger) *EventWebSocketHandler {
	return &EventWebSocketHandler{queueMgr: queueMgr, logger: log}
}

// HandleWebSocket handles GET /api/v1/events. The latest event is sent
// first so a client joining mid-job sees the current state.
func (h *EventWebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.queueMgr.Subscribe(eventBufferSize)
	defer unsubscribe()

	h.logger.Debug("Event stream client connected", zap.String("remote_addr", c.Request.RemoteAddr))

	if e, ok := h.queueMgr.Progress(); ok {
		if err := writeJSON(conn, EventMessage{Event: e, Status: e.StatusText()}); err != nil {
			return
		}
	}

	done := readUntilClosed(conn)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeJSON(conn, EventMessage{Event: e, Status: e.StatusText()}); err != nil {
				h.logger.Debug("Failed to send event", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// LogWebSocketHandler streams a log category to websocket clients
type LogWebSocketHandler struct {
	logReader *logger.LogReader
	logger    *zap.Logger
}

// NewLogWebSocketHandler creates a new WebSocket handler
func NewLogWebSocketHandler(logsDir string, log *zap.Logger) *LogWebSocketHandler {
	return &LogWebSocketHandler{
		logReader: logger.NewLogReader(logsDir),
		logger:    log,
	}
}

// HandleWebSocket handles GET /api/v1/logs/stream?category=...
func (h *LogWebSocketHandler) HandleWebSocket(c *gin.Context) {
	cat := logger.LogCategory(c.DefaultQuery("category", string(logger.CategoryPipeline)))
	if !logger.ValidCategory(cat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("Log stream client connected",
		zap.String("category", string(cat)),
		zap.String("remote_addr", c.Request.RemoteAddr))

	entries, err := h.logReader.ReadTodayLogs(cat, initialLogLines)
	if err == nil {
		for _, entry := range entries {
			if err := writeJSON(conn, entry); err != nil {
				return
			}
		}
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	tailed := make(chan logger.LogEntry, 100)
	go func() {
		if err := h.logReader.TailLogs(ctx, cat, tailed); err != nil && ctx.Err() == nil {
			h.logger.Error("Log tailing error", zap.Error(err))
		}
	}()

	done := readUntilClosed(conn)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-tailed:
			if err := writeJSON(conn, entry); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readUntilClosed drains client frames so pongs and close frames are
// handled. The returned channel closes when the client goes away.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}
