package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"aria/internal/logging"
	"aria/internal/server/app"
	"aria/internal/session"
)

// WSHandler streams consolidated run views over a websocket, for clients
// that prefer a socket to SSE.
type WSHandler struct {
	runs        *session.Manager
	broadcaster *app.ViewBroadcaster
	upgrader    websocket.Upgrader
	logger      logging.Logger
}

// NewWSHandler creates a websocket handler.
func NewWSHandler(runs *session.Manager, broadcaster *app.ViewBroadcaster) *WSHandler {
	return &WSHandler{
		runs:        runs,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin policy belongs to the deployment's proxy layer.
				return true
			},
		},
		logger: logging.NewComponentLogger("WSHandler"),
	}
}

// HandleStream upgrades the connection and pushes view snapshots until the
// client goes away.
func (h *WSHandler) HandleStream(c *gin.Context) {
	runID := c.Param("id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed for run %s: %v", runID, err)
		return
	}
	defer conn.Close()

	ch := h.broadcaster.Register(runID)
	defer h.broadcaster.Unregister(runID, ch)

	h.logger.Info("websocket client connected for run %s", runID)

	// Reader goroutine: we never expect client frames, but reading is how
	// close frames and connection failures surface.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if view, ok := h.runs.View(runID); ok {
		if err := conn.WriteJSON(view); err != nil {
			return
		}
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case view := <-ch:
			if err := conn.WriteJSON(view); err != nil {
				h.logger.Warn("websocket write failed for run %s: %v", runID, err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}

		case <-done:
			h.logger.Info("websocket client disconnected for run %s", runID)
			return

		case <-c.Request.Context().Done():
			return
		}
	}
}
